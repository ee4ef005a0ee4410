// Package calendar defines the external calendar capability the
// synchronizer depends on, plus a Google Calendar implementation.
package calendar

import "context"

// Event is the slice of an external event the synchronizer cares
// about: enough to recognize and delete its own entries.
type Event struct {
	Id      string
	Summary string
}

type CreateEventInput struct {
	Summary  string
	StartIso string
	EndIso   string
	TimeZone string

	Description string
	Location    string

	// ReminderMinutesBeforePopup <= 0 leaves the calendar's default
	// reminders in place.
	ReminderMinutesBeforePopup int
}

// API is the capability surface of the external calendar provider.
// Implementations are handles with their own scoped lifecycle,
// constructed at startup and injected into the synchronizer.
type API interface {
	CreateEvent(ctx context.Context, input CreateEventInput) (Event, error)
	// ListEvents returns events starting at or after sinceIso.
	ListEvents(ctx context.Context, sinceIso string) ([]Event, error)
	DeleteEvent(ctx context.Context, id string) error
}
