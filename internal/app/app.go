// Package app wires the metascan runtime together: handler modules, unit
// registry, loader, scheduler, hot-reload watcher, and the result cache.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/vk/metascan/internal/ctxlog"
	"github.com/vk/metascan/internal/handlers"
	"github.com/vk/metascan/internal/loader"
	"github.com/vk/metascan/internal/registry"
	"github.com/vk/metascan/internal/resultcache"
	"github.com/vk/metascan/internal/scheduler"
	"github.com/vk/metascan/internal/watcher"
)

// App encapsulates one runtime instance with its own logger, registry, and
// collaborators. Nothing here is global; tests build as many as they like.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config

	handlers  *handlers.Handlers
	registry  *registry.Registry
	loader    *loader.Loader
	scheduler *scheduler.Scheduler
	watcher   *watcher.Watcher
	cache     *resultcache.Cache

	httpServer *http.Server
}

// New builds a fully wired App. When no modules are passed, the compiled-in
// core modules are registered.
func New(outW io.Writer, cfg *Config, mods ...handlers.Module) (*App, error) {
	logger := newLogger(cfg, outW)

	h := handlers.New()
	if len(mods) == 0 {
		mods = coreModules
	}
	for _, mod := range mods {
		mod.Register(h)
	}
	logger.Debug("Handler modules registered.", "modules", len(mods), "handlers", h.Len())

	reg := registry.New()
	ld := loader.New(h, reg)
	cache, err := resultcache.New(cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create result cache: %w", err)
	}

	return &App{
		outW:      outW,
		logger:    logger,
		config:    cfg,
		handlers:  h,
		registry:  reg,
		loader:    ld,
		scheduler: scheduler.New(reg),
		watcher: watcher.New(ld, reg, watcher.Options{
			Debounce:    cfg.Debounce,
			MinInterval: cfg.MinInterval,
		}),
		cache: cache,
	}, nil
}

// Context returns ctx with the application logger embedded.
func (a *App) Context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// Registry returns the unit registry, primarily for tests and commands.
func (a *App) Registry() *registry.Registry { return a.registry }

// Watcher returns the hot-reload watcher.
func (a *App) Watcher() *watcher.Watcher { return a.watcher }
