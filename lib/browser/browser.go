// Package browser abstracts the headless-browser capability the
// navigation state machine drives. The schedule site builds its page
// through dependent UI selections, so plain HTTP fetching is not enough.
package browser

import (
	"context"
	"time"
)

// Selector addresses an element either by CSS query or by XPath. XPath
// is needed for the text-content matches the schedule site requires.
type Selector struct {
	Query   string
	IsXPath bool
}

func Css(query string) Selector {
	return Selector{Query: query}
}

func XPath(query string) Selector {
	return Selector{Query: query, IsXPath: true}
}

// Browser is the minimal capability surface the navigation machine
// needs. Implementations block until the postcondition is observable or
// the timeout elapses.
type Browser interface {
	Navigate(ctx context.Context, url string) error
	WaitVisible(ctx context.Context, sel Selector, timeout time.Duration) error
	WaitClickable(ctx context.Context, sel Selector, timeout time.Duration) error
	Click(ctx context.Context, sel Selector, timeout time.Duration) error
	// Markup returns the current page markup.
	Markup(ctx context.Context) (string, error)
}
