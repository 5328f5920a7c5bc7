package main

import (
	"io"
	"os"

	"github.com/vk/metascan/internal/app"
	"gopkg.in/yaml.v3"
)

var rootFlags struct {
	unitsPath string
	logLevel  string
	logFormat string
	workers   int
	disable   []string
}

// envOr reads an environment variable with a fallback, for flag defaults.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// buildApp assembles a wired App from the root flags. Logs go to stderr so
// stdout stays clean for YAML output.
func buildApp(sequential bool, healthcheckPort int) (*app.App, error) {
	cfg, err := app.NewConfig(app.Config{
		UnitsPath:       rootFlags.unitsPath,
		LogLevel:        rootFlags.logLevel,
		LogFormat:       rootFlags.logFormat,
		Workers:         rootFlags.workers,
		Sequential:      sequential,
		Disabled:        rootFlags.disable,
		Debounce:        watchFlags.debounce,
		MinInterval:     watchFlags.minInterval,
		HealthcheckPort: healthcheckPort,
	})
	if err != nil {
		return nil, err
	}
	return app.New(os.Stderr, cfg)
}

// printYAML renders v to out as a YAML document.
func printYAML(out io.Writer, v any) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(v)
}
