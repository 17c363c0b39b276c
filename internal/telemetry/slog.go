package telemetry

import (
	"log/slog"
	"os"
	"strings"
)

// SetupLogger installs the process-wide slog default from the logging section
// of the configuration. Handlers and levels are chosen here once so the rest
// of the code can call slog.Info and friends without carrying a logger around.
//
// format "json" selects the JSON handler; any other value falls back to the
// text handler. level accepts debug, info, warn/warning, and error in any
// case; unrecognised values mean info. Debug level also turns on source
// locations, which are too noisy for the other levels.
func SetupLogger(format, level string) {
	lvl := parseLevel(level)
	opts := &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, opts)
	default:
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
	slog.Info("logging configured", "format", format, "level", lvl.String())
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
