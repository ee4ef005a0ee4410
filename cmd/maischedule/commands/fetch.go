package commands

import (
	"context"
	"fmt"
	"log/slog"

	"maischedule/lib/browser"
	"maischedule/lib/schedule"
	"maischedule/lib/scrapers/mai"
	"maischedule/services/resolver"

	"github.com/spf13/cobra"
)

var (
	fetchGroup   *string
	fetchWeek    *int
	fetchRefresh *bool
	fetchSync    *bool
)

func init() {
	fetchGroup = fetchCmd.Flags().String("group", "", "The group code, e.g. М8О-104БВ-24.")
	fetchWeek = fetchCmd.Flags().Int("week", 1, "The academic week number.")
	fetchRefresh = fetchCmd.Flags().Bool("refresh", false, "Skip stored results and fetch from the site.")
	fetchSync = fetchCmd.Flags().Bool("sync", false, "Push the fetched schedule to the configured calendar.")
	fetchCmd.MarkFlagRequired("group")
	rootCmd.AddCommand(fetchCmd)
}

// browserFetcher defers the expensive parts, the reachability probe and
// the browser session, until the resolver actually needs a live fetch.
type browserFetcher struct {
	headful bool
}

func (f browserFetcher) Fetch(ctx context.Context, group string, week int) (schedule.Envelope, []schedule.Diagnostic, error) {
	err := mai.Probe(ctx)
	if err != nil {
		return schedule.Envelope{}, nil, fmt.Errorf("%w: %s", mai.ErrFetchFailed, err)
	}

	session, err := browser.NewSession(browser.SessionOptions{Headful: f.headful})
	if err != nil {
		return schedule.Envelope{}, nil, err
	}
	defer session.Close()

	return mai.NewFetcher(session).Fetch(ctx, group, week)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch --group <code> --week <n> [--refresh] [--sync]",
	Short: "Resolves a group's weekly schedule, fetching from the site on a miss.",
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

		svc := resolver.NewService(browserFetcher{headful: cfg.Headful}, cache, store)
		result, err := svc.Resolve(ctx, resolver.Request{
			Group:   *fetchGroup,
			Week:    *fetchWeek,
			Refresh: *fetchRefresh,
		})
		if err != nil {
			return err
		}
		if !result.Found {
			fmt.Printf("Расписание для группы %s (неделя %d) не найдено.\n", *fetchGroup, *fetchWeek)
			return nil
		}

		slog.Info("resolved schedule",
			"group", *fetchGroup, "week", *fetchWeek, "source", result.Source)
		for _, d := range result.Diagnostics {
			slog.Warn("incomplete source data",
				"day", d.Day, "lesson", d.Lesson, "field", d.Field, "reason", d.Reason)
		}
		renderWeek(result.Envelope.Schedule)

		if *fetchSync {
			return syncToCalendar(ctx, cfg, *fetchGroup, result.Envelope.Schedule)
		}
		return nil
	},
}
