package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"maischedule/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const calendarScope = "https://www.googleapis.com/auth/calendar"

// GoogleClient talks to the Google Calendar v3 REST API. OAuth consent
// happens out of band: the client only reads the credentials/token
// files it is pointed at, refreshing the access token as needed.
type GoogleClient struct {
	http       *resty.Client
	tokens     oauth2.TokenSource
	calendarId string
}

type GoogleOptions struct {
	CredentialsFile string
	TokenFile       string
	// CalendarId defaults to "primary".
	CalendarId string
}

func NewGoogleClient(ctx context.Context, opts GoogleOptions) (*GoogleClient, error) {
	credentials, err := os.ReadFile(opts.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	oauthConfig, err := google.ConfigFromJSON(credentials, calendarScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}

	tokenFile, err := os.ReadFile(opts.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}
	var token oauth2.Token
	err = json.Unmarshal(tokenFile, &token)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	calendarId := opts.CalendarId
	if calendarId == "" {
		calendarId = "primary"
	}

	client := resty.New()
	client.SetBaseURL("https://www.googleapis.com/calendar/v3")
	client.SetTimeout(time.Second * 30)
	telemetry.InstrumentResty(client, "calendar/google")

	return &GoogleClient{
		http:       client,
		tokens:     oauthConfig.TokenSource(ctx, &token),
		calendarId: calendarId,
	}, nil
}

func (c *GoogleClient) request(ctx context.Context) (*resty.Request, error) {
	token, err := c.tokens.Token()
	if err != nil {
		return nil, fmt.Errorf("refresh access token: %w", err)
	}
	return c.http.R().
		SetContext(ctx).
		SetAuthToken(token.AccessToken), nil
}

type eventDateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone,omitempty"`
}

type reminderOverride struct {
	Method  string `json:"method"`
	Minutes int    `json:"minutes"`
}

type eventReminders struct {
	UseDefault bool               `json:"useDefault"`
	Overrides  []reminderOverride `json:"overrides,omitempty"`
}

type eventBody struct {
	Summary     string          `json:"summary"`
	Start       eventDateTime   `json:"start"`
	End         eventDateTime   `json:"end"`
	Description string          `json:"description,omitempty"`
	Location    string          `json:"location,omitempty"`
	Reminders   *eventReminders `json:"reminders,omitempty"`
}

type eventResource struct {
	Id      string `json:"id"`
	Summary string `json:"summary"`
}

func (c *GoogleClient) CreateEvent(ctx context.Context, input CreateEventInput) (Event, error) {
	body := eventBody{
		Summary:     input.Summary,
		Start:       eventDateTime{DateTime: input.StartIso, TimeZone: input.TimeZone},
		End:         eventDateTime{DateTime: input.EndIso, TimeZone: input.TimeZone},
		Description: input.Description,
		Location:    input.Location,
	}
	if input.ReminderMinutesBeforePopup > 0 {
		body.Reminders = &eventReminders{
			UseDefault: false,
			Overrides: []reminderOverride{
				{Method: "popup", Minutes: input.ReminderMinutesBeforePopup},
			},
		}
	}

	req, err := c.request(ctx)
	if err != nil {
		return Event{}, err
	}

	var created eventResource
	res, err := req.
		SetQueryParam("sendNotifications", "true").
		SetBody(body).
		SetResult(&created).
		Post(fmt.Sprintf("/calendars/%s/events", c.calendarId))
	if err != nil {
		return Event{}, err
	}
	if res.IsError() {
		return Event{}, fmt.Errorf("create event: status %d: %s", res.StatusCode(), res.String())
	}

	return Event{Id: created.Id, Summary: created.Summary}, nil
}

func (c *GoogleClient) ListEvents(ctx context.Context, sinceIso string) ([]Event, error) {
	var events []Event
	pageToken := ""

	for {
		req, err := c.request(ctx)
		if err != nil {
			return nil, err
		}
		req.SetQueryParams(map[string]string{
			"timeMin":      sinceIso,
			"singleEvents": "true",
			"orderBy":      "startTime",
			"maxResults":   "250",
		})
		if pageToken != "" {
			req.SetQueryParam("pageToken", pageToken)
		}

		var page struct {
			Items         []eventResource `json:"items"`
			NextPageToken string          `json:"nextPageToken"`
		}
		res, err := req.
			SetResult(&page).
			Get(fmt.Sprintf("/calendars/%s/events", c.calendarId))
		if err != nil {
			return nil, err
		}
		if res.IsError() {
			return nil, fmt.Errorf("list events: status %d: %s", res.StatusCode(), res.String())
		}

		for _, item := range page.Items {
			events = append(events, Event{Id: item.Id, Summary: item.Summary})
		}
		if page.NextPageToken == "" {
			return events, nil
		}
		pageToken = page.NextPageToken
	}
}

func (c *GoogleClient) DeleteEvent(ctx context.Context, id string) error {
	req, err := c.request(ctx)
	if err != nil {
		return err
	}
	res, err := req.Delete(fmt.Sprintf("/calendars/%s/events/%s", c.calendarId, id))
	if err != nil {
		return err
	}
	if res.IsError() {
		return fmt.Errorf("delete event: status %d: %s", res.StatusCode(), res.String())
	}
	return nil
}
