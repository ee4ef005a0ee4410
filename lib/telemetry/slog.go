package telemetry

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// InitSlog installs the default process logger. verbose keeps the
// stdlib handler at debug level, otherwise a compact colorized handler
// at info level.
func InitSlog(verbose bool) {
	if verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
		return
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)
}
