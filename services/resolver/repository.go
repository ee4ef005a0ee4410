package resolver

import (
	"context"

	"maischedule/lib/schedule"
)

// Repository is one tier of the read-resolution priority order. The
// file cache and the relational store both satisfy it; the orchestrator
// composes them as an explicit priority list instead of nesting
// conditionals.
type Repository interface {
	// Name labels the tier in results and logs.
	Name() string
	Get(ctx context.Context, group string, week int) (schedule.Envelope, bool, error)
	Put(ctx context.Context, group string, week int, env schedule.Envelope) error
}
