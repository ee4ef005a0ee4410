package mai

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"maischedule/lib/browser"

	"github.com/stretchr/testify/require"
)

// fakeBrowser scripts failures by selector/url substring so each
// navigation state can be broken in isolation.
type fakeBrowser struct {
	failOn     string
	failMarkup bool
	markup     string

	clicked []string
}

func (f *fakeBrowser) fail(query string) error {
	if f.failOn != "" && strings.Contains(query, f.failOn) {
		return fmt.Errorf("timed out waiting for %q", query)
	}
	return nil
}

func (f *fakeBrowser) Navigate(ctx context.Context, url string) error {
	return f.fail(url)
}

func (f *fakeBrowser) WaitVisible(ctx context.Context, sel browser.Selector, timeout time.Duration) error {
	return f.fail(sel.Query)
}

func (f *fakeBrowser) WaitClickable(ctx context.Context, sel browser.Selector, timeout time.Duration) error {
	return f.fail(sel.Query)
}

func (f *fakeBrowser) Click(ctx context.Context, sel browser.Selector, timeout time.Duration) error {
	err := f.fail(sel.Query)
	if err != nil {
		return err
	}
	f.clicked = append(f.clicked, sel.Query)
	return nil
}

func (f *fakeBrowser) Markup(ctx context.Context) (string, error) {
	if f.failMarkup {
		return "", fmt.Errorf("session lost")
	}
	return f.markup, nil
}

func testRequest() FetchRequest {
	return FetchRequest{
		Group:         "М8О-104БВ-24",
		Week:          5,
		InstituteName: "Институт №8",
		CourseYear:    "1",
		EducationType: "Базовое высшее образование",
	}
}

func clickedContaining(f *fakeBrowser, substr string) bool {
	for _, q := range f.clicked {
		if strings.Contains(q, substr) {
			return true
		}
	}
	return false
}

func TestFetchWeekPage(t *testing.T) {
	b := &fakeBrowser{markup: fixtureWeekPage}

	markup, err := FetchWeekPage(context.Background(), b, testRequest())
	require.NoError(t, err)
	require.Equal(t, fixtureWeekPage, markup)

	require.True(t, clickedContaining(b, "Институт №8"))
	require.True(t, clickedContaining(b, "option[@value='1']"))
	require.True(t, clickedContaining(b, "Базовое высшее образование"))
	require.True(t, clickedContaining(b, "group=М8О-104БВ-24"))
	require.True(t, clickedContaining(b, "week=5"))
}

func TestFetchWeekPageContinuesWithoutCookieBanner(t *testing.T) {
	b := &fakeBrowser{failOn: "cookie_message", markup: fixtureWeekPage}

	markup, err := FetchWeekPage(context.Background(), b, testRequest())
	require.NoError(t, err)
	require.Equal(t, fixtureWeekPage, markup)
	require.True(t, clickedContaining(b, "week=5"))
}

func TestFetchWeekPageContinuesPastMissingDepartment(t *testing.T) {
	b := &fakeBrowser{failOn: "#department", markup: fixtureWeekPage}

	markup, err := FetchWeekPage(context.Background(), b, testRequest())
	require.NoError(t, err)
	require.Equal(t, fixtureWeekPage, markup)
}

func TestFetchWeekPageFailsAtResults(t *testing.T) {
	b := &fakeBrowser{failOn: "Отобразить"}

	markup, err := FetchWeekPage(context.Background(), b, testRequest())
	require.ErrorIs(t, err, ErrFetchFailed)
	require.Empty(t, markup)
}

func TestFetchWeekPageFailsAtWeekMenu(t *testing.T) {
	b := &fakeBrowser{failOn: "Выбрать учебную неделю"}

	markup, err := FetchWeekPage(context.Background(), b, testRequest())
	require.ErrorIs(t, err, ErrFetchFailed)
	require.Empty(t, markup)
}

func TestFetchWeekPageFailsWithoutMarkup(t *testing.T) {
	b := &fakeBrowser{failMarkup: true}

	markup, err := FetchWeekPage(context.Background(), b, testRequest())
	require.ErrorIs(t, err, ErrFetchFailed)
	require.Empty(t, markup)
}

func TestFetchWeekPageFailsWhenSiteDown(t *testing.T) {
	b := &fakeBrowser{failOn: "mai.ru"}

	markup, err := FetchWeekPage(context.Background(), b, testRequest())
	require.ErrorIs(t, err, ErrFetchFailed)
	require.Empty(t, markup)
}
