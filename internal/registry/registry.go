package registry

import (
	"context"
	"sync"
	"time"

	"github.com/vk/metascan/internal/ctxlog"
	"github.com/vk/metascan/internal/dag"
)

// Registry holds all discovered units for a single application instance.
type Registry struct {
	mu    sync.RWMutex
	units map[string]*Unit
	// order preserves first-registration order; overwriting a unit keeps
	// its original position so reloads don't shuffle scheduling ties.
	order []string

	// graph is the cached dependency graph; nil means it must be rebuilt.
	// The cache is invalidated when the unit set changes, not on
	// enable/disable.
	graph *dag.Graph

	stats DiscoveryStats
	// counted marks units already tallied into the current discovery pass,
	// so a reload overwrite does not inflate Loaded while a re-discovery
	// after ResetDiscovery counts every unit again.
	counted map[string]struct{}
}

// DiscoveryStats is the process-wide discovery counter record.
type DiscoveryStats struct {
	Discovered    int               `yaml:"discovered"`
	Loaded        int               `yaml:"loaded"`
	Failed        int               `yaml:"failed"`
	Failures      map[string]string `yaml:"failures,omitempty"`
	ByCategory    map[string]int    `yaml:"by_category,omitempty"`
	LastDiscovery time.Time         `yaml:"last_discovery,omitempty"`
}

// New creates an empty unit registry.
func New() *Registry {
	return &Registry{
		units: make(map[string]*Unit),
		stats: DiscoveryStats{
			Failures:   make(map[string]string),
			ByCategory: make(map[string]int),
		},
		counted: make(map[string]struct{}),
	}
}

// ResetDiscovery clears discovery counters ahead of a full directory scan,
// so repeated scans report the state of the latest pass rather than
// accumulating across runs.
func (r *Registry) ResetDiscovery() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats = DiscoveryStats{
		Failures:   make(map[string]string),
		ByCategory: make(map[string]int),
	}
	r.counted = make(map[string]struct{})
}

// RecordCandidate counts one manifest file seen by discovery.
func (r *Registry) RecordCandidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.Discovered++
	r.stats.LastDiscovery = time.Now()
}

// RecordFailure marks a unit as failed to load or register. A previously
// registered unit of the same name is left untouched: a broken reload must
// not destroy the working entry.
func (r *Registry) RecordFailure(name, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.Failed++
	r.stats.Failures[name] = reason
}

// Register stores a unit, overwriting any prior entry of the same name.
// Overwrite keeps the unit's original registration position and invalidates
// the cached dependency graph. Each unit counts toward Loaded once per
// discovery pass: a reload overwrite only nets its category, while
// re-registration after ResetDiscovery tallies the unit again so repeated
// scans over an unchanged directory report identical counts.
func (r *Registry) Register(u *Unit) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, exists := r.units[u.Name]
	if !exists {
		r.order = append(r.order, u.Name)
	}

	if _, tallied := r.counted[u.Name]; tallied && exists {
		// Reload path: swap wholesale, keep the loaded count honest.
		r.stats.ByCategory[prev.Category]--
		if r.stats.ByCategory[prev.Category] == 0 {
			delete(r.stats.ByCategory, prev.Category)
		}
	} else {
		r.stats.Loaded++
		r.counted[u.Name] = struct{}{}
	}
	r.units[u.Name] = u
	r.stats.ByCategory[u.Category]++
	delete(r.stats.Failures, u.Name)
	r.graph = nil
}

// Remove deletes a unit and invalidates the cached graph. It reports whether
// the unit existed.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.units[name]; !ok {
		return false
	}
	delete(r.units, name)
	delete(r.counted, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.graph = nil
	return true
}

// Get returns a read snapshot of one unit.
func (r *Registry) Get(name string) (View, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.units[name]
	if !ok {
		return View{}, false
	}
	return u.view(), true
}

// Operation returns the named operation of the named unit.
func (r *Registry) Operation(unit, op string) (*Operation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.units[unit]
	if !ok {
		return nil, false
	}
	o, ok := u.Operations[op]
	return o, ok
}

// Units returns read snapshots of all units in registration order.
func (r *Registry) Units() []View {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]View, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.units[name].view())
	}
	return out
}

// Enabled returns read snapshots of enabled units in registration order.
func (r *Registry) Enabled() []View {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []View
	for _, name := range r.order {
		if u := r.units[name]; u.Enabled {
			out = append(out, u.view())
		}
	}
	return out
}

// SetEnabled flips a unit's enabled flag. The dependency graph cache is kept:
// enable state filters scheduling, it does not change the unit set.
func (r *Registry) SetEnabled(name string, enabled bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.units[name]
	if !ok {
		return false
	}
	u.Enabled = enabled
	return true
}

// Len returns the number of registered units.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.units)
}

// Graph returns the dependency graph, rebuilding it under the lock if the
// unit set changed since the last build.
func (r *Registry) Graph(ctx context.Context) *dag.Graph {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.graphLocked(ctx)
}

func (r *Registry) graphLocked(ctx context.Context) *dag.Graph {
	if r.graph != nil {
		return r.graph
	}
	ctxlog.FromContext(ctx).Debug("Rebuilding dependency graph.", "units", len(r.order))
	decls := make([]dag.Decl, 0, len(r.order))
	for _, name := range r.order {
		u := r.units[name]
		decls = append(decls, dag.Decl{Name: u.Name, DependsOn: u.DependsOn})
	}
	r.graph = dag.Build(ctx, decls)
	return r.graph
}

// RebuildGraph forces a rebuild, used by the watcher after a reload.
func (r *Registry) RebuildGraph(ctx context.Context) *dag.Graph {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.graph = nil
	return r.graphLocked(ctx)
}

// DiscoveryStats returns a copy of the discovery counters.
func (r *Registry) DiscoveryStats() DiscoveryStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := r.stats
	out.Failures = make(map[string]string, len(r.stats.Failures))
	for k, v := range r.stats.Failures {
		out.Failures[k] = v
	}
	out.ByCategory = make(map[string]int, len(r.stats.ByCategory))
	for k, v := range r.stats.ByCategory {
		out.ByCategory[k] = v
	}
	return out
}

// DependencyStats returns the graph's observability record, building the
// graph first if needed.
func (r *Registry) DependencyStats(ctx context.Context) dag.Stats {
	return r.Graph(ctx).Stats()
}
