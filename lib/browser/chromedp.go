package browser

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
)

// Session is a chromedp-backed Browser. It owns one headless chrome
// instance for the whole process lifetime; Close must run on every exit
// path, including after a failed navigation.
type Session struct {
	ctx         context.Context
	cancelCtx   context.CancelFunc
	cancelAlloc context.CancelFunc
}

type SessionOptions struct {
	// Headful disables headless mode, useful when debugging selector
	// changes on the live site.
	Headful bool
}

func NewSession(opts SessionOptions) (*Session, error) {
	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", !opts.Headful),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-notifications", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.NoSandbox,
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	ctx, cancelCtx := chromedp.NewContext(allocCtx)

	// spawn the browser eagerly so a missing chrome binary surfaces
	// here rather than in the middle of a navigation
	err := chromedp.Run(ctx)
	if err != nil {
		cancelCtx()
		cancelAlloc()
		return nil, err
	}

	return &Session{
		ctx:         ctx,
		cancelCtx:   cancelCtx,
		cancelAlloc: cancelAlloc,
	}, nil
}

func (s *Session) Close() {
	s.cancelCtx()
	s.cancelAlloc()
}

// run executes actions on the session context bounded by `timeout`,
// while still honoring cancellation of the caller's context.
func (s *Session) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	var runCtx context.Context
	var cancel context.CancelFunc
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(s.ctx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(s.ctx)
	}
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func queryOption(sel Selector) chromedp.QueryOption {
	if sel.IsXPath {
		return chromedp.BySearch
	}
	return chromedp.ByQuery
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	return s.run(ctx, 30*time.Second, chromedp.Navigate(url))
}

func (s *Session) WaitVisible(ctx context.Context, sel Selector, timeout time.Duration) error {
	return s.run(ctx, timeout, chromedp.WaitVisible(sel.Query, queryOption(sel)))
}

func (s *Session) WaitClickable(ctx context.Context, sel Selector, timeout time.Duration) error {
	return s.run(ctx, timeout,
		chromedp.WaitVisible(sel.Query, queryOption(sel)),
		chromedp.WaitEnabled(sel.Query, queryOption(sel)),
	)
}

func (s *Session) Click(ctx context.Context, sel Selector, timeout time.Duration) error {
	return s.run(ctx, timeout,
		chromedp.ScrollIntoView(sel.Query, queryOption(sel)),
		chromedp.Click(sel.Query, queryOption(sel)),
	)
}

func (s *Session) Markup(ctx context.Context) (string, error) {
	var markup string
	err := s.run(ctx, 10*time.Second, chromedp.OuterHTML("html", &markup, chromedp.ByQuery))
	if err != nil {
		return "", err
	}
	return markup, nil
}
