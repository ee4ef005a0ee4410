package commands

import (
	"context"
	"database/sql"
	"os"

	"maischedule/lib/configutil"
	"maischedule/lib/configutil/sqlitecfg"
	"maischedule/lib/schedule"
	"maischedule/services/resolver"
	"maischedule/services/resolver/db"

	"github.com/jedib0t/go-pretty/v6/table"
)

type CalendarConfig struct {
	CredentialsFile string `json:"credentials_file"`
	TokenFile       string `json:"token_file"`
	CalendarId      string `json:"calendar_id"`
}

type Config struct {
	Database sqlitecfg.Struct `json:"database"`
	CacheDir string           `json:"cache_dir"`
	Headful  bool             `json:"headful"`
	Calendar CalendarConfig   `json:"calendar"`
}

func readConfig() (Config, error) {
	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		return Config{}, err
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = "cache"
	}
	if cfg.Database.File == "" && cfg.Database.Url == "" {
		cfg.Database.File = "schedule.db"
	}
	return cfg, nil
}

// openTiers builds the two storage tiers off the config. The caller
// owns closing the returned handle.
func openTiers(ctx context.Context, cfg Config) (resolver.FileCache, resolver.Store, *sql.DB, error) {
	cache, err := resolver.NewFileCache(cfg.CacheDir)
	if err != nil {
		return resolver.FileCache{}, resolver.Store{}, nil, err
	}

	database, err := cfg.Database.OpenDB()
	if err != nil {
		return resolver.FileCache{}, resolver.Store{}, nil, err
	}
	_, err = database.ExecContext(ctx, db.Schema)
	if err != nil {
		database.Close()
		return resolver.FileCache{}, resolver.Store{}, nil, err
	}

	return cache, resolver.NewStore(database), database, nil
}

// readStored consults the storage tiers without touching the network.
func readStored(ctx context.Context, cache resolver.FileCache, store resolver.Store, group string, week int) (schedule.Envelope, bool, error) {
	env, found, err := cache.Get(ctx, group, week)
	if err != nil || found {
		return env, found, err
	}
	return store.Get(ctx, group, week)
}

func renderWeek(week schedule.Week) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Дата", "Время", "Предмет", "Тип", "Преподаватель", "Аудитория"})
	for _, day := range week {
		for _, lesson := range day.Lessons {
			t.AppendRow(table.Row{
				day.Date, lesson.Time, lesson.Subject,
				lesson.Type, lesson.Teacher, lesson.Classroom,
			})
		}
		t.AppendSeparator()
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}
