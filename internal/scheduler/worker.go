package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vk/metascan/internal/ctxlog"
)

// outcome is what one unit of work produced, success or not.
type outcome struct {
	key     string
	attrs   map[string]any
	err     error
	elapsed time.Duration
}

// runParallel executes the ordered work list on a bounded pool. Submission
// happens in hint order on the caller's goroutine via the buffered channel;
// collection also stays on the caller's goroutine so the report maps are
// never written concurrently.
func (s *Scheduler) runParallel(ctx context.Context, path string, invoke Invoker, work []workItem, workers int, report *Report) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Starting worker pool.", "workers", workers, "work_items", len(work))

	workCh := make(chan workItem, len(work))
	outCh := make(chan outcome, len(work))
	for _, w := range work {
		workCh <- w
	}
	close(workCh)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			wlog := logger.With("workerID", workerID)
			wlog.Debug("Worker started.")
			for w := range workCh {
				outCh <- s.execute(ctx, path, invoke, w)
			}
			wlog.Debug("Worker finished.")
		}(i)
	}

	go func() {
		wg.Wait()
		close(outCh)
	}()

	for out := range outCh {
		s.record(ctx, out, report)
	}
}

// execute runs one unit of work. A panicking handler is caught and surfaced
// as that item's failure; it never takes down the pool.
func (s *Scheduler) execute(ctx context.Context, path string, invoke Invoker, w workItem) (out outcome) {
	start := time.Now()
	out.key = w.key()

	defer func() {
		out.elapsed = time.Since(start)
		if r := recover(); r != nil {
			out.attrs = nil
			out.err = fmt.Errorf("panic in %s: %v", out.key, r)
		}
	}()

	out.attrs, out.err = invoke(ctx, w.unit, w.op.Name, path, w.op.Args)
	return out
}

// record folds one outcome into the report. Failures are logged and kept out
// of the result map.
func (s *Scheduler) record(ctx context.Context, out outcome, report *Report) {
	if out.err != nil {
		ctxlog.FromContext(ctx).Warn("Unit of work failed.", "key", out.key, "error", out.err, "elapsed", out.elapsed)
		report.Failures[out.key] = out.err.Error()
		return
	}
	report.Results[out.key] = Result{Attrs: out.attrs, Elapsed: out.elapsed}
	report.Completed++
}
