package mai

import (
	"context"

	"maischedule/lib/browser"
	"maischedule/lib/groupcode"
	"maischedule/lib/schedule"
)

// Fetcher bundles the full live acquisition path: decode the group
// code into navigation inputs, walk the week page, extract the
// schedule. It exists so the resolution service can depend on one
// small surface instead of the browser plumbing.
type Fetcher struct {
	browser browser.Browser
}

func NewFetcher(b browser.Browser) Fetcher {
	return Fetcher{browser: b}
}

// Fetch acquires one group's week live from the site. The education
// type tab is chosen from the decoded group code. ErrMalformedCode
// surfaces before any network activity; ErrFetchFailed means the page
// could not be reached through the navigation machine.
func (f Fetcher) Fetch(ctx context.Context, group string, week int) (schedule.Envelope, []schedule.Diagnostic, error) {
	ctx, span := tracer.Start(ctx, "Fetch")
	defer span.End()

	identity, err := groupcode.Decode(group)
	if err != nil {
		return schedule.Envelope{}, nil, err
	}
	educationType := string(identity.Level)

	markup, err := FetchWeekPage(ctx, f.browser, FetchRequest{
		Group:         group,
		Week:          week,
		InstituteName: identity.InstituteName(),
		CourseYear:    identity.CourseYear,
		EducationType: educationType,
	})
	if err != nil {
		return schedule.Envelope{}, nil, err
	}

	days, diagnostics, err := Extract(markup)
	if err != nil {
		return schedule.Envelope{}, nil, err
	}
	return schedule.Envelope{
		EducationType: educationType,
		Schedule:      days,
	}, diagnostics, nil
}
