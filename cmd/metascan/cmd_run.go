package main

import (
	"fmt"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vk/metascan/internal/registry"
	"github.com/vk/metascan/internal/scheduler"
)

var runFlags struct {
	sequential bool
	category   string
	parallel   int
}

var runCmd = &cobra.Command{
	Use:   "run <file> [file...]",
	Short: "Run all enabled extraction units against one or more files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRun,
}

func init() {
	f := runCmd.Flags()
	f.BoolVar(&runFlags.sequential, "sequential", false, "Execute units sequentially instead of on the worker pool")
	f.StringVar(&runFlags.category, "category", "", "Only run units of this category")
	f.IntVar(&runFlags.parallel, "parallel-files", 2, "How many input files to process at once")
}

// fileReport is the YAML shape printed per input file.
type fileReport struct {
	File     string                    `yaml:"file"`
	Results  map[string]map[string]any `yaml:"results"`
	Failures map[string]string         `yaml:"failures,omitempty"`
	Duration string                    `yaml:"duration"`
}

func runRun(cmd *cobra.Command, args []string) error {
	a, err := buildApp(runFlags.sequential, 0)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if err := a.Discover(ctx); err != nil {
		return err
	}

	var filter scheduler.Filter
	if runFlags.category != "" {
		filter = func(u registry.View) bool {
			return u.Category == runFlags.category
		}
	}

	parallel := runFlags.parallel
	if parallel < 1 {
		parallel = 1
	}

	var mu sync.Mutex
	reports := make(map[string]fileReport, len(args))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for _, path := range args {
		g.Go(func() error {
			report := a.RunFile(gctx, path, filter)
			fr := fileReport{
				File:     path,
				Results:  make(map[string]map[string]any, len(report.Results)),
				Failures: report.Failures,
				Duration: report.Duration.String(),
			}
			for key, res := range report.Results {
				fr.Results[key] = res.Attrs
			}
			mu.Lock()
			reports[path] = fr
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Print in argument order, not completion order.
	out := cmd.OutOrStdout()
	for _, path := range args {
		if err := printYAML(out, reports[path]); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}
	return nil
}
