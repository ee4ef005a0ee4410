package resolver

import (
	"context"
	"fmt"
	"testing"

	"maischedule/lib/schedule"
	"maischedule/lib/testutil"
	"maischedule/lib/timezone"
	"maischedule/services/resolver/db"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) Store {
	result, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "resolver",
		DbSchema: db.Schema,
	})
	t.Cleanup(cleanup)
	return NewStore(result.DB)
}

func TestStoreRoundTrip(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "М8О-104БВ-24", 5, testEnvelope()))

	got, found, err := store.Get(ctx, "М8О-104БВ-24", 5)
	require.NoError(t, err)
	require.True(t, found)

	// the store canonicalizes: iso dates, HH:MM-HH:MM time ranges,
	// days and lessons sorted by that key
	year := timezone.Now().Year()
	want := schedule.Envelope{
		EducationType: "Базовое высшее образование",
		Schedule: schedule.Week{
			{
				Date: fmt.Sprintf("%d-09-02", year),
				Lessons: []schedule.LessonRecord{
					{
						Time:      "09:00-10:30",
						Subject:   "Математический анализ",
						Teacher:   "Иванов Иван Иванович",
						Type:      "ЛК",
						Classroom: "ГУК Б-420",
					},
					{
						Time:      "10:45-12:15",
						Subject:   "Линейная алгебра",
						Teacher:   "Петров Пётр Петрович",
						Type:      "ПЗ",
						Classroom: "3-414",
					},
				},
			},
			{
				Date: fmt.Sprintf("%d-09-04", year),
				Lessons: []schedule.LessonRecord{
					{
						Time:      "13:00-14:30",
						Subject:   "Физика",
						Teacher:   "Сидорова Анна Борисовна",
						Type:      "ЛР",
						Classroom: "24-220",
					},
				},
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("stored schedule mismatch (-want +got):\n%s", diff)
	}
}

func TestStorePutIsIdempotent(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "М8О-104БВ-24", 5, testEnvelope()))
	groupId, err := store.qry.GetGroupId(ctx, "М8О-104БВ-24")
	require.NoError(t, err)
	before, err := store.qry.CountOccurrences(ctx, groupId, 5)
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "М8О-104БВ-24", 5, testEnvelope()))
	after, err := store.qry.CountOccurrences(ctx, groupId, 5)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestStoreUnknownGroup(t *testing.T) {
	store := setupStore(t)

	_, found, err := store.Get(context.Background(), "М8О-104БВ-24", 5)
	require.NoError(t, err)
	require.False(t, found)
}

func TestStoreQueryAllWeeks(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	env := testEnvelope()
	require.NoError(t, store.Put(ctx, "М8О-104БВ-24", 5, env))

	other := schedule.Envelope{
		EducationType: env.EducationType,
		Schedule: schedule.Week{
			{
				Date: "понедельник, 9 сентября",
				Lessons: []schedule.LessonRecord{
					{Time: "09:00 – 10:30", Subject: "Физика", Teacher: "Сидорова Анна Борисовна", Type: "ЛК", Classroom: "24-220"},
				},
			},
		},
	}
	require.NoError(t, store.Put(ctx, "М8О-104БВ-24", 6, other))

	week, found, err := store.Query(ctx, "М8О-104БВ-24", 0)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, week, 3)

	week, found, err = store.Query(ctx, "М8О-104БВ-24", 6)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, week, 1)
	require.Equal(t, "Физика", week[0].Lessons[0].Subject)
}

func TestStorePutMalformedGroup(t *testing.T) {
	store := setupStore(t)

	err := store.Put(context.Background(), "оченьплохо", 5, testEnvelope())
	require.Error(t, err)
}
