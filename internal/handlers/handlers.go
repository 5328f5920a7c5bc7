// Package handlers stores the compiled Go functions that unit manifests bind
// operations to. Built-in modules register their handlers here at startup;
// manifests then reference them by name.
package handlers

import (
	"context"
	"fmt"
	"log/slog"
)

// ExtractFunc is the signature every extraction handler implements: a file
// path plus the manifest-supplied default arguments in, a structured
// attribute map out.
type ExtractFunc func(ctx context.Context, path string, args map[string]any) (map[string]any, error)

// Module is the interface built-in handler packages implement to be wired
// into the process at startup.
type Module interface {
	Register(h *Handlers)
}

// Handlers holds all registered extraction handlers for one process.
type Handlers struct {
	all map[string]ExtractFunc
}

// New creates an empty handler registry.
func New() *Handlers {
	return &Handlers{
		all: make(map[string]ExtractFunc),
	}
}

// Register adds a named handler. Registering the same name twice is a
// programmer error and panics, matching startup-time wiring expectations.
func (h *Handlers) Register(name string, fn ExtractFunc) {
	if _, exists := h.all[name]; exists {
		panic(fmt.Sprintf("extraction handler with name '%s' already registered", name))
	}
	slog.Debug("Registering extraction handler.", "name", name)
	h.all[name] = fn
}

// Lookup returns the handler registered under name, if any.
func (h *Handlers) Lookup(name string) (ExtractFunc, bool) {
	fn, ok := h.all[name]
	return fn, ok
}

// Len returns the number of registered handlers.
func (h *Handlers) Len() int {
	return len(h.all)
}
