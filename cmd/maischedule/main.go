package main

import (
	"context"
	"log/slog"

	"maischedule/cmd/maischedule/commands"
	"maischedule/lib/serviceutil"
	"maischedule/lib/telemetry"
)

func main() {
	ctx := serviceutil.SignalContext()
	telemetry.InitSlog(false)

	t, err := telemetry.SetupFromEnv(ctx, "maischedule")
	if err != nil {
		// running without an exporter is fine, spans just go nowhere
		slog.Debug("telemetry not configured", "err", err)
	} else {
		defer t.Shutdown(context.Background())
		telemetry.InstrumentPerfStats(ctx)
	}

	commands.ExecuteContext(ctx)
}
