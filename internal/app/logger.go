package app

import (
	"io"
	"log/slog"
)

// newLogger builds the application logger from a validated config. It never
// touches the global logger, so tests and embedded uses stay isolated.
func newLogger(cfg *Config, outW io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(outW, opts))
	}
	return slog.New(slog.NewTextHandler(outW, opts))
}
