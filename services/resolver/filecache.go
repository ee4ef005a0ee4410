package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"maischedule/lib/schedule"
)

// FileCache stores one pretty-printed JSON envelope per (group, week)
// key. There is no TTL: entries only change when a live fetch for the
// same key overwrites them.
type FileCache struct {
	dir string
}

func NewFileCache(dir string) (FileCache, error) {
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return FileCache{}, fmt.Errorf("create cache dir: %w", err)
	}
	return FileCache{dir: dir}, nil
}

func (c FileCache) Name() string {
	return "cache"
}

func (c FileCache) path(group string, week int) string {
	return filepath.Join(c.dir, fmt.Sprintf("%s_week%d.json", group, week))
}

func (c FileCache) Get(ctx context.Context, group string, week int) (schedule.Envelope, bool, error) {
	contents, err := os.ReadFile(c.path(group, week))
	if os.IsNotExist(err) {
		return schedule.Envelope{}, false, nil
	}
	if err != nil {
		return schedule.Envelope{}, false, err
	}

	var env schedule.Envelope
	err = json.Unmarshal(contents, &env)
	if err != nil {
		return schedule.Envelope{}, false, fmt.Errorf("corrupt cache entry %q: %w", c.path(group, week), err)
	}
	return env, true, nil
}

func (c FileCache) Put(ctx context.Context, group string, week int, env schedule.Envelope) error {
	serialized, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.path(group, week), serialized, 0o644)
}
