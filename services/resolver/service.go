// Package resolver answers "what is group X's schedule for week N" by
// consulting storage tiers in priority order and falling back to a live
// site fetch, writing fetched results back through every tier.
package resolver

import (
	"context"
	"errors"
	"log/slog"

	"maischedule/lib/groupcode"
	"maischedule/lib/schedule"
	"maischedule/lib/scrapers/mai"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("services/resolver")

// Fetcher is the live acquisition tier. mai.Fetcher satisfies it; tests
// substitute a fake.
type Fetcher interface {
	Fetch(ctx context.Context, group string, week int) (schedule.Envelope, []schedule.Diagnostic, error)
}

type Service struct {
	tiers   []Repository
	fetcher Fetcher
}

// NewService builds a resolver over the given storage tiers, consulted
// in the order given. Write-through on a live fetch also follows that
// order.
func NewService(fetcher Fetcher, tiers ...Repository) Service {
	return Service{
		tiers:   tiers,
		fetcher: fetcher,
	}
}

type Request struct {
	Group string
	Week  int
	// Refresh skips the storage tiers and forces a live fetch. The
	// fetched result still writes through every tier.
	Refresh bool
}

type Result struct {
	Found bool
	// Source names the tier that produced the envelope: a repository's
	// Name(), or "site" for a live fetch.
	Source      string
	Envelope    schedule.Envelope
	Diagnostics []schedule.Diagnostic
}

// Resolve answers one schedule request. A malformed group code fails
// before any tier or network activity. An unreachable site or an empty
// week page resolves to Found=false with a nil error, so callers can
// tell "no schedule" apart from infrastructure failures.
func (s Service) Resolve(ctx context.Context, req Request) (Result, error) {
	ctx, span := tracer.Start(ctx, "Resolve", trace.WithAttributes(
		attribute.String("group", req.Group),
		attribute.Int("week", req.Week),
		attribute.Bool("refresh", req.Refresh),
	))
	defer span.End()

	_, err := groupcode.Decode(req.Group)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "malformed group code")
		return Result{}, err
	}

	if !req.Refresh {
		for _, tier := range s.tiers {
			env, found, err := tier.Get(ctx, req.Group, req.Week)
			if err != nil {
				slog.WarnContext(ctx, "skipping unreadable storage tier",
					"tier", tier.Name(), "group", req.Group, "week", req.Week, "err", err)
				continue
			}
			if found {
				span.AddEvent("resolved from " + tier.Name())
				return Result{
					Found:    true,
					Source:   tier.Name(),
					Envelope: env,
				}, nil
			}
		}
	}

	env, diags, err := s.fetcher.Fetch(ctx, req.Group, req.Week)
	if errors.Is(err, mai.ErrFetchFailed) {
		slog.WarnContext(ctx, "schedule unavailable from site",
			"group", req.Group, "week", req.Week, "err", err)
		span.AddEvent("site fetch failed")
		return Result{Found: false, Source: "site"}, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "live fetch failed")
		return Result{}, err
	}
	if len(env.Schedule) == 0 {
		span.AddEvent("site returned no schedule")
		return Result{Found: false, Source: "site"}, nil
	}

	for _, tier := range s.tiers {
		err := tier.Put(ctx, req.Group, req.Week, env)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "write-through failed")
			return Result{}, err
		}
	}

	return Result{
		Found:       true,
		Source:      "site",
		Envelope:    env,
		Diagnostics: diags,
	}, nil
}
