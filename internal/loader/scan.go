package loader

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/metascan/internal/ctxlog"
	"github.com/vk/metascan/internal/manifest"
	"github.com/vk/metascan/internal/registry"
)

// operationPrefixes are the recognized capability verbs. An operation block
// whose label carries none of them is ignored.
var operationPrefixes = []string{"extract_", "detect_", "analyze_"}

// recognizedOperation reports whether an operation name carries a recognized
// verb prefix with a non-empty remainder.
func recognizedOperation(name string) bool {
	for _, prefix := range operationPrefixes {
		if strings.HasPrefix(name, prefix) && len(name) > len(prefix) {
			return true
		}
	}
	return false
}

// scan inspects a parsed manifest for usable capabilities and assembles the
// unit. A unit with zero usable operations is a registration failure.
func (l *Loader) scan(ctx context.Context, name, path string, m *manifest.Manifest) (*registry.Unit, error) {
	logger := ctxlog.FromContext(ctx)

	var ops []*registry.Operation
	for _, decl := range m.Operations {
		if !recognizedOperation(decl.Name) {
			logger.Debug("Ignoring operation without a recognized verb prefix.", "unit", name, "operation", decl.Name)
			continue
		}
		fn, ok := l.handlers.Lookup(decl.Handler)
		if !ok {
			logger.Warn("Operation references an unregistered handler, skipping.", "unit", name, "operation", decl.Name, "handler", decl.Handler)
			continue
		}
		ops = append(ops, &registry.Operation{
			Name:    decl.Name,
			Handler: decl.Handler,
			Fn:      fn,
			Args:    decl.Args,
		})
	}

	if len(ops) == 0 {
		return nil, fmt.Errorf("unit %s exposes no usable operations", name)
	}

	category := m.Category
	if category == "" {
		category = registry.InferCategory(name)
	}
	priority := registry.InferPriority(name, category)
	if m.Priority != nil {
		priority = *m.Priority
	}

	return registry.NewUnit(name, path, category, priority, m.DependsOn, ops), nil
}
