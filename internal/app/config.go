package app

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Config holds everything an App instance needs to run.
type Config struct {
	// UnitsPath is the directory scanned for unit manifests.
	UnitsPath string

	LogFormat string
	LogLevel  string

	// Workers bounds the scheduler pool; Sequential forces the fallback path.
	Workers    int
	Sequential bool

	// Disabled lists unit names to disable right after discovery.
	Disabled []string

	// CacheSize bounds the extraction result cache (entries).
	CacheSize int

	// Debounce and MinInterval tune the hot-reload watcher; zero values pick
	// the watcher defaults.
	Debounce    time.Duration
	MinInterval time.Duration

	// HealthcheckPort exposes /health and /stats when > 0.
	HealthcheckPort int
}

// NewConfig validates a Config and fills defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.UnitsPath == "" {
		return nil, errors.New("UnitsPath is a required configuration field and cannot be empty")
	}

	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}

	if cfg.Workers < 0 {
		return nil, fmt.Errorf("worker count cannot be negative, got %d", cfg.Workers)
	}

	return &cfg, nil
}

// SlogLevel maps the validated LogLevel string onto its slog level.
// Unvalidated values fall back to info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
