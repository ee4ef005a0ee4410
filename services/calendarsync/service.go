// Package calendarsync pushes a resolved week of lessons into an
// external calendar, replacing the events it created on previous runs.
package calendarsync

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"maischedule/lib/calendar"
	"maischedule/lib/chrono"
	"maischedule/lib/schedule"
	"maischedule/lib/timezone"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("services/calendarsync")

// EventMarker tags every event the synchronizer creates. Pruning
// deletes only events whose summary contains it, so a user's own
// calendar entries are never touched.
const EventMarker = "расписание МАИ"

const (
	// prune looks this far back for previously synced events
	retentionWindow = 14 * 24 * time.Hour
	reminderMinutes = 10
)

type Service struct {
	api calendar.API
}

func NewService(api calendar.API) Service {
	return Service{api: api}
}

type SyncResult struct {
	Created int
	Pruned  int
	// Skipped counts lessons that could not be turned into an event.
	// Each one is logged; a single bad lesson never aborts the sync.
	Skipped int
}

// Sync replaces the group's synced events with the given week: first
// prune every previously created event inside the retention window,
// then create one event per lesson. Failures local to one event are
// logged and counted, not propagated.
func (s Service) Sync(ctx context.Context, group string, week schedule.Week) (SyncResult, error) {
	ctx, span := tracer.Start(ctx, "Sync", trace.WithAttributes(
		attribute.String("group", group),
	))
	defer span.End()

	var result SyncResult

	pruned, err := s.prune(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to prune synced events")
		return result, err
	}
	result.Pruned = pruned

	now := timezone.Now()
	for _, day := range week {
		date, ok := chrono.ParseDate(day.Date, now)
		if !ok {
			slog.WarnContext(ctx, "skipping day with unparsable date",
				"group", group, "date", day.Date)
			result.Skipped += len(day.Lessons)
			continue
		}
		for _, lesson := range day.Lessons {
			err := s.createLessonEvent(ctx, group, date, lesson)
			if err != nil {
				slog.WarnContext(ctx, "skipping lesson that failed to sync",
					"group", group, "date", date, "subject", lesson.Subject, "err", err)
				result.Skipped++
				continue
			}
			result.Created++
		}
	}

	span.SetAttributes(
		attribute.Int("created", result.Created),
		attribute.Int("pruned", result.Pruned),
		attribute.Int("skipped", result.Skipped),
	)
	return result, nil
}

// prune deletes events created by earlier syncs, recognized by the
// marker in their summary. Events without the marker are left alone.
func (s Service) prune(ctx context.Context) (int, error) {
	since := timezone.Now().Add(-retentionWindow).Format(time.RFC3339)
	events, err := s.api.ListEvents(ctx, since)
	if err != nil {
		return 0, fmt.Errorf("list events: %w", err)
	}

	pruned := 0
	for _, event := range events {
		if !strings.Contains(event.Summary, EventMarker) {
			continue
		}
		err := s.api.DeleteEvent(ctx, event.Id)
		if err != nil {
			slog.WarnContext(ctx, "failed to delete synced event",
				"id", event.Id, "summary", event.Summary, "err", err)
			continue
		}
		pruned++
	}
	return pruned, nil
}

func (s Service) createLessonEvent(ctx context.Context, group, date string, lesson schedule.LessonRecord) error {
	start, end, ok := chrono.ParseTimeRange(lesson.Time)
	if !ok {
		slog.WarnContext(ctx, "defaulted unparsable lesson time",
			"group", group, "date", date, "time", lesson.Time)
	}

	_, err := s.api.CreateEvent(ctx, calendar.CreateEventInput{
		Summary:                    fmt.Sprintf("%s (%s) | %s", lesson.Subject, lesson.Type, EventMarker),
		StartIso:                   fmt.Sprintf("%sT%s+03:00", date, start),
		EndIso:                     fmt.Sprintf("%sT%s+03:00", date, end),
		TimeZone:                   timezone.Name,
		Description:                fmt.Sprintf("Группа: %s\nПреподаватель: %s", group, lesson.Teacher),
		Location:                   fmt.Sprintf("Аудитория: %s", lesson.Classroom),
		ReminderMinutesBeforePopup: reminderMinutes,
	})
	return err
}
