package commands

import (
	"context"
	"fmt"
	"log/slog"

	"maischedule/lib/calendar"
	"maischedule/lib/schedule"
	"maischedule/services/calendarsync"

	"github.com/spf13/cobra"
)

var (
	syncGroup *string
	syncWeek  *int
)

func init() {
	syncGroup = syncCmd.Flags().String("group", "", "The group code, e.g. М8О-104БВ-24.")
	syncWeek = syncCmd.Flags().Int("week", 1, "The academic week number.")
	syncCmd.MarkFlagRequired("group")
	rootCmd.AddCommand(syncCmd)
}

func syncToCalendar(ctx context.Context, cfg Config, group string, week schedule.Week) error {
	if cfg.Calendar.CredentialsFile == "" {
		return fmt.Errorf("no calendar credentials configured")
	}

	client, err := calendar.NewGoogleClient(ctx, calendar.GoogleOptions{
		CredentialsFile: cfg.Calendar.CredentialsFile,
		TokenFile:       cfg.Calendar.TokenFile,
		CalendarId:      cfg.Calendar.CalendarId,
	})
	if err != nil {
		return fmt.Errorf("open calendar client: %w", err)
	}

	result, err := calendarsync.NewService(client).Sync(ctx, group, week)
	if err != nil {
		return err
	}
	slog.Info("calendar sync finished",
		"created", result.Created, "pruned", result.Pruned, "skipped", result.Skipped)
	return nil
}

var syncCmd = &cobra.Command{
	Use:   "sync --group <code> --week <n>",
	Short: "Pushes an already stored schedule to the configured calendar.",
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

		env, found, err := readStored(ctx, cache, store, *syncGroup, *syncWeek)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("no stored schedule for %s week %d, run fetch first", *syncGroup, *syncWeek)
		}
		return syncToCalendar(ctx, cfg, *syncGroup, env.Schedule)
	},
}
