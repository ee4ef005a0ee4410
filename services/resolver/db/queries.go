package db

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so queries can run
// inside or outside a transaction.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const createGroup = `
INSERT OR IGNORE INTO groups (name, institute, course, education_type)
VALUES (?, ?, ?, ?)
`

type CreateGroupParams struct {
	Name          string
	Institute     string
	Course        string
	EducationType string
}

// CreateGroup inserts a group row if the name is unseen. An existing
// row is never updated, even when the decoded attributes differ.
func (q *Queries) CreateGroup(ctx context.Context, arg CreateGroupParams) error {
	_, err := q.db.ExecContext(ctx, createGroup,
		arg.Name, arg.Institute, arg.Course, arg.EducationType)
	return err
}

const getGroupId = `
SELECT id FROM groups WHERE name = ?
`

func (q *Queries) GetGroupId(ctx context.Context, name string) (int64, error) {
	row := q.db.QueryRowContext(ctx, getGroupId, name)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const getGroupEducationType = `
SELECT education_type FROM groups WHERE name = ?
`

func (q *Queries) GetGroupEducationType(ctx context.Context, name string) (string, error) {
	row := q.db.QueryRowContext(ctx, getGroupEducationType, name)
	var educationType sql.NullString
	err := row.Scan(&educationType)
	return educationType.String, err
}

const replaceOccurrence = `
INSERT OR REPLACE INTO schedule (
    group_id, week_number, date, time,
    subject, teacher, classroom, lesson_type
)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

type ReplaceOccurrenceParams struct {
	GroupID    int64
	WeekNumber int
	Date       string
	Time       string
	Subject    string
	Teacher    string
	Classroom  string
	LessonType string
}

// ReplaceOccurrence writes one lesson occurrence, replacing any prior
// row with the same (group, week, date, time) natural key.
func (q *Queries) ReplaceOccurrence(ctx context.Context, arg ReplaceOccurrenceParams) error {
	_, err := q.db.ExecContext(ctx, replaceOccurrence,
		arg.GroupID, arg.WeekNumber, arg.Date, arg.Time,
		arg.Subject, arg.Teacher, arg.Classroom, arg.LessonType)
	return err
}

const getOccurrences = `
SELECT date, time, subject, teacher, classroom, lesson_type
FROM schedule
WHERE group_id = ?
ORDER BY date, time
`

const getOccurrencesForWeek = `
SELECT date, time, subject, teacher, classroom, lesson_type
FROM schedule
WHERE group_id = ? AND week_number = ?
ORDER BY date, time
`

type OccurrenceRow struct {
	Date       string
	Time       string
	Subject    string
	Teacher    string
	Classroom  string
	LessonType string
}

// GetOccurrences returns a group's occurrences sorted by (date, time).
// Week <= 0 selects every stored week.
func (q *Queries) GetOccurrences(ctx context.Context, groupId int64, week int) ([]OccurrenceRow, error) {
	var rows *sql.Rows
	var err error
	if week > 0 {
		rows, err = q.db.QueryContext(ctx, getOccurrencesForWeek, groupId, week)
	} else {
		rows, err = q.db.QueryContext(ctx, getOccurrences, groupId)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OccurrenceRow
	for rows.Next() {
		var r OccurrenceRow
		var subject, teacher, classroom, lessonType sql.NullString
		err := rows.Scan(&r.Date, &r.Time, &subject, &teacher, &classroom, &lessonType)
		if err != nil {
			return nil, err
		}
		r.Subject = subject.String
		r.Teacher = teacher.String
		r.Classroom = classroom.String
		r.LessonType = lessonType.String
		out = append(out, r)
	}
	return out, rows.Err()
}

const countOccurrences = `
SELECT COUNT(*) FROM schedule WHERE group_id = ? AND week_number = ?
`

func (q *Queries) CountOccurrences(ctx context.Context, groupId int64, week int) (int64, error) {
	row := q.db.QueryRowContext(ctx, countOccurrences, groupId, week)
	var count int64
	err := row.Scan(&count)
	return count, err
}
