package main

import (
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show discovery, dependency, and hot-reload statistics",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, _ []string) error {
	a, err := buildApp(false, 0)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if err := a.Discover(ctx); err != nil {
		return err
	}
	return printYAML(cmd.OutOrStdout(), a.Stats(ctx))
}
