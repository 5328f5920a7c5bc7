// Package watcher observes the unit manifest directory and hot-reloads
// exactly the changed unit without disturbing the others.
//
// The watcher is a small state machine: disabled → armed → (file event) →
// debounced-pending → reloading → armed. Events for a unit arriving inside
// the debounce window collapse into one reload; a global minimum-interval
// throttle additionally bounds reload frequency regardless of debounce.
// Reloads for different units serialize through one mutex; this is an
// operational convenience, not a hot path.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/vk/metascan/internal/ctxlog"
	"github.com/vk/metascan/internal/fsutil"
	"github.com/vk/metascan/internal/loader"
	"github.com/vk/metascan/internal/registry"
)

// State names the watcher's lifecycle phase.
type State string

const (
	StateDisabled  State = "disabled"
	StateArmed     State = "armed"
	StatePending   State = "pending"
	StateReloading State = "reloading"
)

const (
	// DefaultDebounce is the window in which repeated events for one unit
	// collapse into a single reload.
	DefaultDebounce = 500 * time.Millisecond
	// DefaultMinInterval is the global floor between reload attempts.
	DefaultMinInterval = 2 * time.Second
)

// Stats is the hot-reload observability record.
type Stats struct {
	State       State     `yaml:"state"`
	Reloads     int       `yaml:"reloads"`
	Errors      int       `yaml:"errors"`
	Throttled   int       `yaml:"throttled"`
	LastReload  time.Time `yaml:"last_reload,omitempty"`
	SuccessRate float64   `yaml:"success_rate"`
}

// Options tunes the watcher. Zero values pick the defaults.
type Options struct {
	Debounce    time.Duration
	MinInterval time.Duration
}

// Watcher hot-reloads units when their manifest files change on disk.
type Watcher struct {
	loader      *loader.Loader
	reg         *registry.Registry
	debounce    time.Duration
	minInterval time.Duration

	// mu guards state, timers, and counters.
	mu     sync.Mutex
	state  State
	fsw    *fsnotify.Watcher
	timers map[string]*time.Timer
	done   chan struct{}

	lastAttempt time.Time
	reloads     int
	errors      int
	throttled   int
	lastReload  time.Time

	// reloadMu serializes the reload critical section itself.
	reloadMu sync.Mutex
}

// New creates a disabled watcher.
func New(l *loader.Loader, reg *registry.Registry, opts Options) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.MinInterval <= 0 {
		opts.MinInterval = DefaultMinInterval
	}
	return &Watcher{
		loader:      l,
		reg:         reg,
		debounce:    opts.Debounce,
		minInterval: opts.MinInterval,
		state:       StateDisabled,
		timers:      make(map[string]*time.Timer),
	}
}

// Enable arms the watcher on the given directory and starts the event loop.
func (w *Watcher) Enable(ctx context.Context, dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateDisabled {
		return fmt.Errorf("watcher already enabled")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	w.fsw = fsw
	w.state = StateArmed
	w.done = make(chan struct{})
	// The loop reads the watcher and done channel as locals: Disable mutates
	// the fields under w.mu, which the loop never holds.
	go w.loop(ctx, fsw, w.done)

	ctxlog.FromContext(ctx).Info("Hot reload armed.", "path", dir, "debounce", w.debounce, "min_interval", w.minInterval)
	return nil
}

// Disable tears down the underlying file observer and returns the watcher to
// the disabled state. Pending debounce timers are dropped.
func (w *Watcher) Disable(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == StateDisabled {
		return
	}
	for unit, timer := range w.timers {
		timer.Stop()
		delete(w.timers, unit)
	}
	close(w.done)
	w.fsw.Close()
	w.fsw = nil
	w.state = StateDisabled
	ctxlog.FromContext(ctx).Info("Hot reload disabled.")
}

// Stats returns a copy of the hot-reload counters.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := Stats{
		State:      w.state,
		Reloads:    w.reloads,
		Errors:     w.errors,
		Throttled:  w.throttled,
		LastReload: w.lastReload,
	}
	if attempts := w.reloads + w.errors; attempts > 0 {
		s.SuccessRate = float64(w.reloads) / float64(attempts)
	}
	return s
}

// loop consumes filesystem events until the watcher is disabled.
func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, done <-chan struct{}) {
	logger := ctxlog.FromContext(ctx)
	for {
		select {
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logger.Error("File watcher error.", "error", err)
		case <-done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// relevant reports whether an event concerns a live unit manifest.
func relevant(ev fsnotify.Event) bool {
	if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) {
		return false
	}
	base := filepath.Base(ev.Name)
	if strings.HasPrefix(base, fsutil.ReservedPrefix) {
		return false
	}
	return strings.HasSuffix(base, loader.ManifestExt)
}

// handleEvent debounces one file event. The first event for a unit starts
// its timer and moves the watcher to pending; events inside the window are
// discarded by resetting that timer.
func (w *Watcher) handleEvent(ctx context.Context, ev fsnotify.Event) {
	if !relevant(ev) {
		return
	}
	unit := fsutil.UnitName(ev.Name)
	path := ev.Name
	logger := ctxlog.FromContext(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == StateDisabled {
		return
	}
	if timer, ok := w.timers[unit]; ok {
		timer.Reset(w.debounce)
		logger.Debug("Change event inside debounce window, discarded.", "unit", unit)
		return
	}
	logger.Debug("Change event accepted, debouncing.", "unit", unit, "window", w.debounce)
	w.state = StatePending
	w.timers[unit] = time.AfterFunc(w.debounce, func() {
		w.fire(ctx, unit, path)
	})
}

// fire runs after a unit's debounce window closes.
func (w *Watcher) fire(ctx context.Context, unit, path string) {
	logger := ctxlog.FromContext(ctx)

	w.mu.Lock()
	delete(w.timers, unit)
	if w.state == StateDisabled {
		w.mu.Unlock()
		return
	}
	if since := time.Since(w.lastAttempt); since < w.minInterval {
		w.throttled++
		if len(w.timers) == 0 {
			w.state = StateArmed
		}
		w.mu.Unlock()
		logger.Warn("Reload throttled by minimum interval.", "unit", unit, "since_last", since)
		return
	}
	w.lastAttempt = time.Now()
	w.state = StateReloading
	w.mu.Unlock()

	// One reload at a time, whichever unit triggered it.
	w.reloadMu.Lock()
	err := w.loader.Reload(ctx, path)
	if err == nil {
		w.reg.RebuildGraph(ctx)
	}
	w.reloadMu.Unlock()

	w.mu.Lock()
	if err != nil {
		w.errors++
		logger.Error("Hot reload failed.", "unit", unit, "error", err)
	} else {
		w.reloads++
		w.lastReload = time.Now()
		logger.Info("Hot reload complete.", "unit", unit)
	}
	if len(w.timers) == 0 && w.state != StateDisabled {
		w.state = StateArmed
	}
	w.mu.Unlock()
}
