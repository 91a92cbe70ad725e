package observability

import (
	"log/slog"
	"os"

	"github.com/couchcryptid/station-log-import/internal/config"
)

// NewLogger builds the process logger from runtime settings. Unknown levels
// fall back to info, unknown formats to JSON.
func NewLogger(rt config.Runtime) *slog.Logger {
	var level slog.Level
	switch rt.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if rt.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
