// Package loader resolves unit manifest files into registered units.
//
// Discovery scans one directory non-recursively. Every failure is isolated
// per unit: a manifest that does not parse, binds no registered handler, or
// exposes no recognized operation is recorded in discovery statistics and
// skipped, and the scan moves on. One bad unit never aborts the others.
package loader

import (
	"context"
	"fmt"

	"github.com/vk/metascan/internal/ctxlog"
	"github.com/vk/metascan/internal/fsutil"
	"github.com/vk/metascan/internal/handlers"
	"github.com/vk/metascan/internal/manifest"
	"github.com/vk/metascan/internal/registry"
)

// ManifestExt is the file extension unit manifests must carry.
const ManifestExt = ".hcl"

// Loader turns manifest files into registry entries.
type Loader struct {
	handlers *handlers.Handlers
	reg      *registry.Registry
}

// New creates a loader bound to a handler registry and a unit registry.
func New(h *handlers.Handlers, reg *registry.Registry) *Loader {
	return &Loader{handlers: h, reg: reg}
}

// Discover scans dir for unit manifests and registers every loadable unit.
// Per-unit failures are aggregated into discovery statistics; only an
// unreadable directory is returned as an error, since then there is nothing
// to discover at all.
func (l *Loader) Discover(ctx context.Context, dir string) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Discovering units.", "path", dir)

	files, err := fsutil.ListUnitFiles(dir, ManifestExt)
	if err != nil {
		return fmt.Errorf("scan units directory %s: %w", dir, err)
	}
	if len(files) == 0 {
		logger.Warn("No unit manifests found in path.", "path", dir)
	}

	l.reg.ResetDiscovery()
	for _, path := range files {
		l.reg.RecordCandidate()
		name := fsutil.UnitName(path)

		unit, err := l.loadFile(ctx, name, path)
		if err != nil {
			logger.Warn("Unit failed to load, continuing discovery.", "unit", name, "error", err)
			l.reg.RecordFailure(name, err.Error())
			continue
		}
		l.reg.Register(unit)
		logger.Debug("Unit registered.", "unit", name, "operations", len(unit.Operations), "category", unit.Category, "priority", unit.Priority)
	}

	stats := l.reg.DiscoveryStats()
	logger.Info("Unit discovery finished.", "discovered", stats.Discovered, "loaded", stats.Loaded, "failed", stats.Failed)
	return nil
}

// Reload re-runs load and scan for exactly one unit and overwrites its
// registry entry on success. On failure the prior entry is kept but
// disabled, and the failure is recorded.
func (l *Loader) Reload(ctx context.Context, path string) error {
	logger := ctxlog.FromContext(ctx)
	name := fsutil.UnitName(path)

	unit, err := l.loadFile(ctx, name, path)
	if err != nil {
		l.reg.RecordFailure(name, err.Error())
		if l.reg.SetEnabled(name, false) {
			logger.Warn("Reload failed, prior unit disabled.", "unit", name, "error", err)
		}
		return fmt.Errorf("reload unit %s: %w", name, err)
	}

	l.reg.Register(unit)
	logger.Info("Unit reloaded.", "unit", name, "operations", len(unit.Operations))
	return nil
}

// loadFile parses one manifest and scans it for capabilities.
func (l *Loader) loadFile(ctx context.Context, name, path string) (*registry.Unit, error) {
	m, err := manifest.ParseFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return l.scan(ctx, name, path, m)
}
