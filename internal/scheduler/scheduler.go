// Package scheduler runs a filtered selection of unit operations against one
// input file on a bounded worker pool.
//
// Dependency order is a scheduling hint, not a correctness barrier: units
// earlier in topological order are submitted first, but nothing synchronizes
// between dependency tiers, so a dependent may execute concurrently with its
// dependency. Units left out of the computed order by a cycle submit last,
// in registration order.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/metascan/internal/ctxlog"
	"github.com/vk/metascan/internal/registry"
)

// DefaultWorkers bounds the pool when the caller does not say otherwise.
const DefaultWorkers = 4

// Invoker is the caller-supplied invocation wrapper around one unit of work.
type Invoker func(ctx context.Context, unit, op, path string, args map[string]any) (map[string]any, error)

// Filter selects units for a run. A nil filter selects every enabled unit.
type Filter func(u registry.View) bool

// Options tunes one scheduler run.
type Options struct {
	// Workers is the pool size. Values below 1 fall back to DefaultWorkers.
	Workers int
	// Sequential disables the pool and executes the selection in
	// registration order on the caller's goroutine. A pool of one worker
	// behaves the same way.
	Sequential bool
}

// Result is one successful unit of work.
type Result struct {
	Attrs   map[string]any
	Elapsed time.Duration
}

// Report aggregates one run. Results holds successes keyed "unit:operation";
// a failed unit of work is logged, recorded in Failures, and absent from
// Results; it never cancels siblings. Callers that see an empty Results
// must consult Failures and discovery statistics to tell "nothing
// applicable" from "everything failed".
type Report struct {
	Results   map[string]Result
	Failures  map[string]string
	Duration  time.Duration
	Completed int
}

// workItem is one (unit, operation) pair, independent from its siblings.
type workItem struct {
	unit string
	op   *registry.Operation
}

func (w workItem) key() string {
	return fmt.Sprintf("%s:%s", w.unit, w.op.Name)
}

// Scheduler selects, orders, and executes unit operations.
type Scheduler struct {
	reg *registry.Registry
}

// New creates a scheduler over the given registry.
func New(reg *registry.Registry) *Scheduler {
	return &Scheduler{reg: reg}
}

// Run executes every enabled (unit, operation) pair passing the filter
// against path. The invoke wrapper may be nil, in which case operations are
// called directly.
func (s *Scheduler) Run(ctx context.Context, path string, invoke Invoker, filter Filter, opts Options) *Report {
	logger := ctxlog.FromContext(ctx)
	start := time.Now()

	if invoke == nil {
		invoke = func(ctx context.Context, unit, op, path string, args map[string]any) (map[string]any, error) {
			o, ok := s.reg.Operation(unit, op)
			if !ok {
				return nil, fmt.Errorf("operation %s:%s not found", unit, op)
			}
			return o.Fn(ctx, path, args)
		}
	}

	selection, ordered := s.selectWork(ctx, filter)
	report := &Report{
		Results:  make(map[string]Result, len(selection)),
		Failures: make(map[string]string),
	}

	if len(selection) == 0 {
		logger.Debug("No applicable units for input.", "path", path)
		report.Duration = time.Since(start)
		return report
	}

	workers := opts.Workers
	if workers < 1 {
		workers = DefaultWorkers
	}
	if workers > len(selection) {
		workers = len(selection)
	}

	if opts.Sequential || workers == 1 {
		s.runSequential(ctx, path, invoke, selection, report)
	} else {
		s.runParallel(ctx, path, invoke, ordered, workers, report)
	}

	report.Duration = time.Since(start)
	logger.Info("Extraction run finished.",
		"path", path,
		"work_items", len(selection),
		"completed", report.Completed,
		"failed", len(report.Failures),
		"duration", report.Duration,
	)
	return report
}

// selectWork flattens the filtered enabled units into two work lists over
// the same (unit, operation) pairs: selection in registration order for the
// sequential fallback, and ordered by the dependency hint for the pool:
// topologically ordered units first, cyclic leftovers last in registration
// order, operations in declaration order throughout.
func (s *Scheduler) selectWork(ctx context.Context, filter Filter) (selection, ordered []workItem) {
	views := s.reg.Enabled()
	selected := make(map[string]registry.View, len(views))
	for _, v := range views {
		if filter != nil && !filter(v) {
			continue
		}
		selected[v.Name] = v
		for _, op := range v.Operations {
			selection = append(selection, workItem{unit: v.Name, op: op})
		}
	}
	if len(selection) == 0 {
		return nil, nil
	}

	order, unordered := s.reg.Graph(ctx).TopoOrder()
	if len(unordered) > 0 {
		ctxlog.FromContext(ctx).Warn("Dependency cycle present, affected units scheduled last.", "units", unordered)
	}

	appendUnit := func(name string) {
		v, ok := selected[name]
		if !ok {
			return
		}
		for _, op := range v.Operations {
			ordered = append(ordered, workItem{unit: name, op: op})
		}
	}
	for _, name := range order {
		appendUnit(name)
	}
	for _, name := range unordered {
		appendUnit(name)
	}

	// Safety net: a selected unit missing from the graph (stale cache would
	// be a bug) still runs, in registration order.
	if len(ordered) < len(selection) {
		placed := make(map[string]struct{})
		for _, w := range ordered {
			placed[w.unit] = struct{}{}
		}
		for _, w := range selection {
			if _, ok := placed[w.unit]; !ok {
				ordered = append(ordered, w)
			}
		}
	}
	return selection, ordered
}

// runSequential is the fallback path: identical selection, identical result
// key set, executed in registration order on the caller's goroutine.
func (s *Scheduler) runSequential(ctx context.Context, path string, invoke Invoker, work []workItem, report *Report) {
	for _, w := range work {
		out := s.execute(ctx, path, invoke, w)
		s.record(ctx, out, report)
	}
}
