package calendarsync

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"maischedule/lib/calendar"
	"maischedule/lib/schedule"
	"maischedule/lib/testutil"
	"maischedule/lib/timezone"

	"github.com/stretchr/testify/require"
)

type fakeCalendar struct {
	nextId  int
	events  map[string]calendar.Event
	created []calendar.CreateEventInput
	deleted []string

	failCreateContaining string
}

func newFakeCalendar() *fakeCalendar {
	return &fakeCalendar{events: map[string]calendar.Event{}}
}

func (f *fakeCalendar) seed(summary string) string {
	f.nextId++
	id := fmt.Sprintf("seed-%d", f.nextId)
	f.events[id] = calendar.Event{Id: id, Summary: summary}
	return id
}

func (f *fakeCalendar) CreateEvent(ctx context.Context, input calendar.CreateEventInput) (calendar.Event, error) {
	if f.failCreateContaining != "" && strings.Contains(input.Summary, f.failCreateContaining) {
		return calendar.Event{}, fmt.Errorf("quota exceeded")
	}
	f.nextId++
	id := fmt.Sprintf("ev-%d", f.nextId)
	event := calendar.Event{Id: id, Summary: input.Summary}
	f.events[id] = event
	f.created = append(f.created, input)
	return event, nil
}

func (f *fakeCalendar) ListEvents(ctx context.Context, sinceIso string) ([]calendar.Event, error) {
	var out []calendar.Event
	for _, event := range f.events {
		out = append(out, event)
	}
	return out, nil
}

func (f *fakeCalendar) DeleteEvent(ctx context.Context, id string) error {
	delete(f.events, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func testWeek() schedule.Week {
	return schedule.Week{
		{
			Date: "понедельник, 2 сентября",
			Lessons: []schedule.LessonRecord{
				{
					Time:      "09:00 – 10:30",
					Subject:   "Математический анализ",
					Teacher:   "Иванов Иван Иванович",
					Type:      "ЛК",
					Classroom: "ГУК Б-420",
				},
				{
					Time:      "10:45 – 12:15",
					Subject:   "Линейная алгебра",
					Teacher:   "Петров Пётр Петрович",
					Type:      "ПЗ",
					Classroom: "3-414",
				},
			},
		},
	}
}

func TestSyncCreatesLessonEvents(t *testing.T) {
	_, cleanup := testutil.SetupService(t, testutil.ServiceParams{Name: "calendarsync"})
	t.Cleanup(cleanup)

	api := newFakeCalendar()
	svc := NewService(api)

	result, err := svc.Sync(context.Background(), "М8О-104БВ-24", testWeek())
	require.NoError(t, err)
	require.Equal(t, 2, result.Created)
	require.Equal(t, 0, result.Skipped)
	require.Len(t, api.created, 2)

	first := api.created[0]
	require.Equal(t, "Математический анализ (ЛК) | "+EventMarker, first.Summary)
	require.Equal(t, "Группа: М8О-104БВ-24\nПреподаватель: Иванов Иван Иванович", first.Description)
	require.Equal(t, "Аудитория: ГУК Б-420", first.Location)
	require.Equal(t, timezone.Name, first.TimeZone)
	require.Equal(t, 10, first.ReminderMinutesBeforePopup)

	year := timezone.Now().Year()
	require.Equal(t, fmt.Sprintf("%d-09-02T09:00:00+03:00", year), first.StartIso)
	require.Equal(t, fmt.Sprintf("%d-09-02T10:30:00+03:00", year), first.EndIso)
}

// schedules read back from the database carry iso dates and canonical
// HH:MM-HH:MM ranges instead of the source-locale strings; sync must
// handle that shape the same as a fresh extraction
func TestSyncStoredScheduleShape(t *testing.T) {
	_, cleanup := testutil.SetupService(t, testutil.ServiceParams{Name: "calendarsync"})
	t.Cleanup(cleanup)

	api := newFakeCalendar()
	svc := NewService(api)

	week := schedule.Week{
		{
			Date: "2025-09-02",
			Lessons: []schedule.LessonRecord{
				{
					Time:      "09:00-10:30",
					Subject:   "Математический анализ",
					Teacher:   "Иванов Иван Иванович",
					Type:      "ЛК",
					Classroom: "ГУК Б-420",
				},
			},
		},
	}
	result, err := svc.Sync(context.Background(), "М8О-104БВ-24", week)
	require.NoError(t, err)
	require.Equal(t, 1, result.Created)
	require.Equal(t, 0, result.Skipped)

	require.Equal(t, "2025-09-02T09:00:00+03:00", api.created[0].StartIso)
	require.Equal(t, "2025-09-02T10:30:00+03:00", api.created[0].EndIso)
}

func TestSyncPrunesOnlyMarkedEvents(t *testing.T) {
	_, cleanup := testutil.SetupService(t, testutil.ServiceParams{Name: "calendarsync"})
	t.Cleanup(cleanup)

	api := newFakeCalendar()
	staleId := api.seed("Физика (ЛР) | " + EventMarker)
	personalId := api.seed("Встреча с научным руководителем")

	svc := NewService(api)
	result, err := svc.Sync(context.Background(), "М8О-104БВ-24", testWeek())
	require.NoError(t, err)
	require.Equal(t, 1, result.Pruned)
	require.Contains(t, api.deleted, staleId)
	require.NotContains(t, api.deleted, personalId)
	require.Contains(t, api.events, personalId)
}

func TestSyncResyncReplacesOwnEvents(t *testing.T) {
	_, cleanup := testutil.SetupService(t, testutil.ServiceParams{Name: "calendarsync"})
	t.Cleanup(cleanup)

	api := newFakeCalendar()
	svc := NewService(api)
	ctx := context.Background()

	_, err := svc.Sync(ctx, "М8О-104БВ-24", testWeek())
	require.NoError(t, err)

	result, err := svc.Sync(ctx, "М8О-104БВ-24", testWeek())
	require.NoError(t, err)
	require.Equal(t, 2, result.Pruned)
	require.Equal(t, 2, result.Created)
	require.Len(t, api.events, 2)
}

func TestSyncSkipsFailedLesson(t *testing.T) {
	_, cleanup := testutil.SetupService(t, testutil.ServiceParams{Name: "calendarsync"})
	t.Cleanup(cleanup)

	api := newFakeCalendar()
	api.failCreateContaining = "Линейная алгебра"

	svc := NewService(api)
	result, err := svc.Sync(context.Background(), "М8О-104БВ-24", testWeek())
	require.NoError(t, err)
	require.Equal(t, 1, result.Created)
	require.Equal(t, 1, result.Skipped)
}

func TestSyncDefaultsUnparsableTime(t *testing.T) {
	_, cleanup := testutil.SetupService(t, testutil.ServiceParams{Name: "calendarsync"})
	t.Cleanup(cleanup)

	api := newFakeCalendar()
	svc := NewService(api)

	week := schedule.Week{
		{
			Date: "понедельник, 2 сентября",
			Lessons: []schedule.LessonRecord{
				{Time: "Время не указано", Subject: "Физика", Type: "ЛК"},
			},
		},
	}
	result, err := svc.Sync(context.Background(), "М8О-104БВ-24", week)
	require.NoError(t, err)
	require.Equal(t, 1, result.Created)

	year := timezone.Now().Year()
	require.Equal(t, fmt.Sprintf("%d-09-02T09:00:00+03:00", year), api.created[0].StartIso)
	require.Equal(t, fmt.Sprintf("%d-09-02T10:30:00+03:00", year), api.created[0].EndIso)
}
