package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "metascan",
	Short: "Hot-reloadable metadata-extraction unit runtime",
	Long: "Metascan discovers extraction units from manifest files, schedules their\n" +
		"operations over input files on a bounded worker pool in dependency order,\n" +
		"and hot-reloads changed units without a restart.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	// .env is optional; it must load before flag defaults read the env.
	_ = godotenv.Load()

	f := rootCmd.PersistentFlags()
	f.StringVar(&rootFlags.unitsPath, "units-path", envOr("METASCAN_UNITS_PATH", "units"), "Directory containing unit manifests")
	f.StringVar(&rootFlags.logLevel, "log-level", envOr("METASCAN_LOG_LEVEL", "info"), "Logging level: debug, info, warn, error")
	f.StringVar(&rootFlags.logFormat, "log-format", envOr("METASCAN_LOG_FORMAT", "text"), "Log output format: text or json")
	f.IntVar(&rootFlags.workers, "workers", 4, "Worker pool size for parallel extraction")
	f.StringSliceVar(&rootFlags.disable, "disable", nil, "Unit names to disable after discovery")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(unitsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.Version = version
}

func main() {
	// A minimal logger for anything that fires before app wiring.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
