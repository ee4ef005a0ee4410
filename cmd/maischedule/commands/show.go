package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	showGroup *string
	showWeek  *int
)

func init() {
	showGroup = showCmd.Flags().String("group", "", "The group code, e.g. М8О-104БВ-24.")
	showWeek = showCmd.Flags().Int("week", 0, "The academic week number, 0 shows every stored week.")
	showCmd.MarkFlagRequired("group")
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show --group <code> [--week <n>]",
	Short: "Prints schedules already in the database without touching the site.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := readConfig()
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		_, store, database, err := openTiers(ctx, cfg)
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		defer database.Close()

		week, found, err := store.Query(ctx, *showGroup, *showWeek)
		if err != nil {
			return err
		}
		if !found {
			fmt.Printf("В базе нет расписания для группы %s.\n", *showGroup)
			return nil
		}
		renderWeek(week)
		return nil
	},
}
