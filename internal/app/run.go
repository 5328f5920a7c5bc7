package app

import (
	"context"
	"fmt"

	"github.com/vk/metascan/internal/ctxlog"
	"github.com/vk/metascan/internal/dag"
	"github.com/vk/metascan/internal/registry"
	"github.com/vk/metascan/internal/scheduler"
	"github.com/vk/metascan/internal/watcher"
)

// Discover scans the configured units directory, applies configured disables,
// and warms the dependency graph so cycles surface in the logs immediately.
func (a *App) Discover(ctx context.Context) error {
	ctx = a.Context(ctx)

	if err := a.loader.Discover(ctx, a.config.UnitsPath); err != nil {
		return err
	}

	logger := ctxlog.FromContext(ctx)
	for _, name := range a.config.Disabled {
		if !a.registry.SetEnabled(name, false) {
			logger.Warn("Cannot disable unknown unit.", "unit", name)
			continue
		}
		logger.Info("Unit disabled by configuration.", "unit", name)
	}

	if cyclic := a.registry.Graph(ctx).CyclicNodes(); len(cyclic) > 0 {
		logger.Warn("Dependency cycle detected among units.", "units", cyclic)
	}
	return nil
}

// invoker is the default invocation wrapper: it consults the result cache
// before calling the handler and stores fresh results after.
func (a *App) invoker() scheduler.Invoker {
	return func(ctx context.Context, unit, op, path string, args map[string]any) (map[string]any, error) {
		o, ok := a.registry.Operation(unit, op)
		if !ok {
			return nil, fmt.Errorf("operation %s:%s not found", unit, op)
		}
		view, _ := a.registry.Get(unit)

		key := a.cache.Key(unit, op, path, view.LoadedAt)
		if attrs, hit := a.cache.Get(key); hit {
			ctxlog.FromContext(ctx).Debug("Result cache hit.", "unit", unit, "operation", op, "path", path)
			return attrs, nil
		}

		attrs, err := o.Fn(ctx, path, args)
		if err != nil {
			return nil, err
		}
		a.cache.Add(key, attrs)
		return attrs, nil
	}
}

// RunFile executes the filtered enabled selection against one input file.
func (a *App) RunFile(ctx context.Context, path string, filter scheduler.Filter) *scheduler.Report {
	ctx = a.Context(ctx)
	return a.scheduler.Run(ctx, path, a.invoker(), filter, scheduler.Options{
		Workers:    a.config.Workers,
		Sequential: a.config.Sequential,
	})
}

// EnableWatch arms the hot-reload watcher on the units directory.
func (a *App) EnableWatch(ctx context.Context) error {
	return a.watcher.Enable(a.Context(ctx), a.config.UnitsPath)
}

// DisableWatch tears the watcher down.
func (a *App) DisableWatch(ctx context.Context) {
	a.watcher.Disable(a.Context(ctx))
}

// ReloadUnit hot-reloads one unit by name, outside the watcher's debounce
// path. The dependency graph is rebuilt on success.
func (a *App) ReloadUnit(ctx context.Context, name string) error {
	ctx = a.Context(ctx)

	view, ok := a.registry.Get(name)
	if !ok {
		return fmt.Errorf("unknown unit %q", name)
	}
	if err := a.loader.Reload(ctx, view.Source); err != nil {
		return err
	}
	a.registry.RebuildGraph(ctx)
	return nil
}

// StatsBundle is the combined observability record handed to the CLI and the
// health endpoint.
type StatsBundle struct {
	Discovery    registry.DiscoveryStats `yaml:"discovery"`
	Dependencies dag.Stats               `yaml:"dependencies"`
	HotReload    watcher.Stats           `yaml:"hot_reload"`
}

// Stats gathers discovery, dependency, and hot-reload statistics.
func (a *App) Stats(ctx context.Context) StatsBundle {
	ctx = a.Context(ctx)
	return StatsBundle{
		Discovery:    a.registry.DiscoveryStats(),
		Dependencies: a.registry.DependencyStats(ctx),
		HotReload:    a.watcher.Stats(),
	}
}
