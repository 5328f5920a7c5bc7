package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var watchFlags struct {
	healthcheckPort int
	debounce        time.Duration
	minInterval     time.Duration
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Discover units and hot-reload them on manifest changes until interrupted",
	RunE:  runWatch,
}

func init() {
	f := watchCmd.Flags()
	f.IntVar(&watchFlags.healthcheckPort, "healthcheck-port", 0, "Port for the HTTP health/stats server, 0 disables it")
	f.DurationVar(&watchFlags.debounce, "debounce", 0, "Debounce window for file change events (default 500ms)")
	f.DurationVar(&watchFlags.minInterval, "min-interval", 0, "Global minimum interval between reloads (default 2s)")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	a, err := buildApp(false, watchFlags.healthcheckPort)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if err := a.Discover(ctx); err != nil {
		return err
	}
	if err := a.EnableWatch(ctx); err != nil {
		return err
	}
	defer a.DisableWatch(ctx)

	a.StartHealthcheckServer()
	defer a.StopHealthcheckServer(ctx)

	a.Logger().Info("Watching for unit changes, press Ctrl-C to stop.", "path", rootFlags.unitsPath)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	return nil
}
