package mai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"maischedule/lib/browser"

	"go.opentelemetry.io/otel/codes"
)

// ErrFetchFailed marks a navigation failure that left no usable markup.
// Callers treat it as "no schedule available", not as a crash.
var ErrFetchFailed = fmt.Errorf("schedule page could not be reached")

// FetchRequest carries everything the navigation machine needs to reach
// one group's week page.
type FetchRequest struct {
	Group         string
	Week          int
	InstituteName string
	CourseYear    string
	EducationType string
}

// step is one state transition of the navigation machine: issue the
// action, block until its postcondition or the timeout. non-critical
// steps degrade and continue, a failed critical step aborts the fetch
// because no later state's precondition can be met.
type step struct {
	name     string
	timeout  time.Duration
	critical bool
	run      func(ctx context.Context, b browser.Browser, req FetchRequest, timeout time.Duration) error
}

var navigationSteps = []step{
	{
		// the consent banner only shows on a fresh profile, absence is
		// not an error
		name:    "cookieDismissed",
		timeout: 5 * time.Second,
		run: func(ctx context.Context, b browser.Browser, req FetchRequest, timeout time.Duration) error {
			err := b.WaitVisible(ctx, browser.Css("#cookie_message"), timeout)
			if err != nil {
				return err
			}
			return b.Click(ctx, browser.XPath(
				`//div[@id='cookie_message']//button[contains(text(), 'Принять')]`,
			), timeout)
		},
	},
	{
		name:    "departmentSelected",
		timeout: 10 * time.Second,
		run: func(ctx context.Context, b browser.Browser, req FetchRequest, timeout time.Duration) error {
			err := b.WaitClickable(ctx, browser.Css("#department"), timeout)
			if err != nil {
				return err
			}
			err = b.Click(ctx, browser.Css("#department"), timeout)
			if err != nil {
				return err
			}
			return b.Click(ctx, browser.XPath(fmt.Sprintf(
				`//select[@id='department']/option[contains(text(), '%s')]`,
				req.InstituteName,
			)), timeout)
		},
	},
	{
		name:    "courseSelected",
		timeout: 10 * time.Second,
		run: func(ctx context.Context, b browser.Browser, req FetchRequest, timeout time.Duration) error {
			err := b.WaitClickable(ctx, browser.Css("#course"), timeout)
			if err != nil {
				return err
			}
			err = b.Click(ctx, browser.Css("#course"), timeout)
			if err != nil {
				return err
			}
			return b.Click(ctx, browser.XPath(fmt.Sprintf(
				`//select[@id='course']/option[@value='%s']`,
				req.CourseYear,
			)), timeout)
		},
	},
	{
		name:     "resultsShown",
		timeout:  10 * time.Second,
		critical: true,
		run: func(ctx context.Context, b browser.Browser, req FetchRequest, timeout time.Duration) error {
			showButton := browser.XPath(`//button[contains(text(), 'Отобразить')]`)
			err := b.WaitClickable(ctx, showButton, timeout)
			if err != nil {
				return err
			}
			err = b.Click(ctx, showButton, timeout)
			if err != nil {
				return err
			}
			return b.WaitVisible(ctx, browser.Css(".nav-segment"), timeout)
		},
	},
	{
		name:     "educationTypeSelected",
		timeout:  10 * time.Second,
		critical: true,
		run: func(ctx context.Context, b browser.Browser, req FetchRequest, timeout time.Duration) error {
			return b.Click(ctx, browser.XPath(fmt.Sprintf(
				`//a[contains(text(), '%s')]`,
				req.EducationType,
			)), timeout)
		},
	},
	{
		name:     "groupSelected",
		timeout:  10 * time.Second,
		critical: true,
		run: func(ctx context.Context, b browser.Browser, req FetchRequest, timeout time.Duration) error {
			groupAnchor := browser.XPath(fmt.Sprintf(
				`//a[contains(@href, 'group=%s')]`, req.Group,
			))
			err := b.WaitClickable(ctx, groupAnchor, timeout)
			if err != nil {
				return err
			}
			return b.Click(ctx, groupAnchor, timeout)
		},
	},
	{
		// this particular button is flaky, hence the longer wait before
		// asserting the week menu actually expanded
		name:     "weekMenuOpened",
		timeout:  20 * time.Second,
		critical: true,
		run: func(ctx context.Context, b browser.Browser, req FetchRequest, timeout time.Duration) error {
			menuButton := browser.XPath(
				`//a[contains(@class, 'btn-outline-primary') and contains(., 'Выбрать учебную неделю')]`,
			)
			err := b.WaitClickable(ctx, menuButton, timeout)
			if err != nil {
				return err
			}
			err = b.Click(ctx, menuButton, timeout)
			if err != nil {
				return err
			}
			return b.WaitVisible(ctx, browser.Css("#collapseWeeks"), 10*time.Second)
		},
	},
	{
		name:     "weekSelected",
		timeout:  10 * time.Second,
		critical: true,
		run: func(ctx context.Context, b browser.Browser, req FetchRequest, timeout time.Duration) error {
			weekAnchor := browser.XPath(fmt.Sprintf(
				`//div[@id='collapseWeeks']//a[contains(@href, 'week=%d')]`, req.Week,
			))
			err := b.WaitClickable(ctx, weekAnchor, timeout)
			if err != nil {
				return err
			}
			return b.Click(ctx, weekAnchor, timeout)
		},
	},
}

// FetchWeekPage walks the navigation state table and returns the markup
// of the terminal page. A failed critical step (or unreadable terminal
// markup) returns an error wrapping ErrFetchFailed.
func FetchWeekPage(ctx context.Context, b browser.Browser, req FetchRequest) (string, error) {
	ctx, span := tracer.Start(ctx, "FetchWeekPage")
	defer span.End()

	err := b.Navigate(ctx, ScheduleUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to open schedule page")
		return "", fmt.Errorf("%w: navigate: %s", ErrFetchFailed, err)
	}

	for _, st := range navigationSteps {
		err := st.run(ctx, b, req, st.timeout)
		if err == nil {
			span.AddEvent(st.name)
			continue
		}
		if st.critical {
			span.RecordError(err)
			span.SetStatus(codes.Error, fmt.Sprintf("failed at %s", st.name))
			return "", fmt.Errorf("%w: %s: %s", ErrFetchFailed, st.name, err)
		}
		slog.WarnContext(ctx, "continuing past failed navigation step",
			"step", st.name, "group", req.Group, "err", err)
	}

	markup, err := b.Markup(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read page markup")
		return "", fmt.Errorf("%w: markup: %s", ErrFetchFailed, err)
	}
	return markup, nil
}
