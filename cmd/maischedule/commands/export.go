package commands

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"maischedule/lib/chrono"
	"maischedule/lib/schedule"
	"maischedule/lib/timezone"

	ics "github.com/arran4/golang-ical"
	"github.com/spf13/cobra"
)

var (
	exportGroup *string
	exportWeek  *int
	exportOut   *string
)

func init() {
	exportGroup = exportCmd.Flags().String("group", "", "The group code, e.g. М8О-104БВ-24.")
	exportWeek = exportCmd.Flags().Int("week", 1, "The academic week number.")
	exportOut = exportCmd.Flags().String("out", "schedule.ics", "The iCalendar file to write.")
	exportCmd.MarkFlagRequired("group")
	rootCmd.AddCommand(exportCmd)
}

func buildIcs(group string, week schedule.Week) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)

	now := timezone.Now()
	for dayIdx, day := range week {
		date, ok := chrono.ParseDate(day.Date, now)
		if !ok {
			slog.Warn("skipping day with unparsable date", "date", day.Date)
			continue
		}
		for lessonIdx, lesson := range day.Lessons {
			start, end, _ := chrono.ParseTimeRange(lesson.Time)
			startAt, err := time.ParseInLocation(time.DateTime, date+" "+start, timezone.Location)
			if err != nil {
				slog.Warn("skipping lesson with unparsable time",
					"date", date, "time", lesson.Time, "err", err)
				continue
			}
			endAt, err := time.ParseInLocation(time.DateTime, date+" "+end, timezone.Location)
			if err != nil {
				endAt = startAt.Add(90 * time.Minute)
			}

			event := cal.AddEvent(fmt.Sprintf("%s-%d-%d@maischedule", group, dayIdx, lessonIdx))
			event.SetCreatedTime(now)
			event.SetStartAt(startAt)
			event.SetEndAt(endAt)
			event.SetSummary(fmt.Sprintf("%s (%s)", lesson.Subject, lesson.Type))
			event.SetDescription(fmt.Sprintf("Группа: %s\nПреподаватель: %s", group, lesson.Teacher))
			event.SetLocation(fmt.Sprintf("Аудитория: %s", lesson.Classroom))
		}
	}
	return cal
}

var exportCmd = &cobra.Command{
	Use:   "export --group <code> --week <n> [--out <file.ics>]",
	Short: "Writes a stored schedule as an iCalendar file.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := readConfig()
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		cache, store, database, err := openTiers(ctx, cfg)
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		defer database.Close()

		env, found, err := readStored(ctx, cache, store, *exportGroup, *exportWeek)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("no stored schedule for %s week %d, run fetch first", *exportGroup, *exportWeek)
		}

		cal := buildIcs(*exportGroup, env.Schedule)
		err = os.WriteFile(*exportOut, []byte(cal.Serialize()), 0o644)
		if err != nil {
			return err
		}
		slog.Info("wrote icalendar file", "path", *exportOut)
		return nil
	},
}
