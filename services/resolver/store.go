package resolver

import (
	"context"
	"database/sql"
	"log/slog"

	"maischedule/lib/chrono"
	"maischedule/lib/groupcode"
	"maischedule/lib/schedule"
	"maischedule/lib/timezone"
	"maischedule/services/resolver/db"
)

// Store is the relational tier. Unlike the file cache it persists
// occurrences under their natural key (group, week, date, time), so
// repeated writes replace rather than duplicate, and historical weeks
// stay queryable.
type Store struct {
	db  *sql.DB
	qry *db.Queries
}

func NewStore(database *sql.DB) Store {
	return Store{
		db:  database,
		qry: db.New(database),
	}
}

func (s Store) Name() string {
	return "database"
}

func (s Store) Get(ctx context.Context, group string, week int) (schedule.Envelope, bool, error) {
	educationType, err := s.qry.GetGroupEducationType(ctx, group)
	if err == sql.ErrNoRows {
		return schedule.Envelope{}, false, nil
	}
	if err != nil {
		return schedule.Envelope{}, false, err
	}

	days, found, err := s.Query(ctx, group, week)
	if err != nil || !found {
		return schedule.Envelope{}, false, err
	}
	return schedule.Envelope{
		EducationType: educationType,
		Schedule:      days,
	}, true, nil
}

// Query returns the stored schedule for a group, regrouped into day
// blocks. Week <= 0 selects all stored weeks at once. Rows arrive
// sorted by (date, time); a new day block starts whenever the date
// changes from the previous row, which reconstructs the day/lesson
// nesting losslessly under that sort order.
func (s Store) Query(ctx context.Context, group string, week int) (schedule.Week, bool, error) {
	groupId, err := s.qry.GetGroupId(ctx, group)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	rows, err := s.qry.GetOccurrences(ctx, groupId, week)
	if err != nil {
		return nil, false, err
	}
	if len(rows) == 0 {
		return nil, false, nil
	}

	var out schedule.Week
	currentDate := ""
	for _, row := range rows {
		if row.Date != currentDate {
			out = append(out, schedule.DayEntry{
				Date:    row.Date,
				Lessons: []schedule.LessonRecord{},
			})
			currentDate = row.Date
		}
		day := &out[len(out)-1]
		day.Lessons = append(day.Lessons, schedule.LessonRecord{
			Time:      row.Time,
			Subject:   row.Subject,
			Teacher:   row.Teacher,
			Type:      row.LessonType,
			Classroom: row.Classroom,
		})
	}
	return out, true, nil
}

// Put persists a schedule transactionally: the group row via
// insert-if-absent, then every lesson occurrence via insert-or-replace
// on the natural key. Dates and time ranges are canonicalized here so
// the (date, time) sort on read is meaningful.
func (s Store) Put(ctx context.Context, group string, week int, env schedule.Envelope) error {
	identity, err := groupcode.Decode(group)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	err = txqry.CreateGroup(ctx, db.CreateGroupParams{
		Name:          group,
		Institute:     identity.InstituteName(),
		Course:        identity.CourseYear,
		EducationType: env.EducationType,
	})
	if err != nil {
		return err
	}
	groupId, err := txqry.GetGroupId(ctx, group)
	if err != nil {
		return err
	}

	now := timezone.Now()
	for _, day := range env.Schedule {
		date, ok := chrono.ParseDate(day.Date, now)
		if !ok {
			slog.WarnContext(ctx, "defaulted unparsable day date",
				"group", group, "week", week, "date", day.Date)
		}
		for _, lesson := range day.Lessons {
			err := txqry.ReplaceOccurrence(ctx, db.ReplaceOccurrenceParams{
				GroupID:    groupId,
				WeekNumber: week,
				Date:       date,
				Time:       chrono.CanonicalTimeRange(lesson.Time),
				Subject:    lesson.Subject,
				Teacher:    lesson.Teacher,
				Classroom:  lesson.Classroom,
				LessonType: lesson.Type,
			})
			if err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}
