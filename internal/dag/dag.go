package dag

import (
	"context"

	"github.com/vk/metascan/internal/ctxlog"
)

// Decl is one unit's dependency declaration as the registry holds it.
type Decl struct {
	Name      string
	DependsOn []string
}

// MissingDep records a declared dependency that names no registered unit.
type MissingDep struct {
	Unit    string
	Missing string
}

// Graph is a directed dependency graph over unit names. It is built once per
// registry generation and read-only afterwards; the registry serializes
// rebuilds under its own lock.
type Graph struct {
	// order preserves registration order for deterministic traversal.
	order []string
	// deps maps a unit to the units it depends on (resolved edges only).
	deps map[string]map[string]struct{}
	// dependents maps a unit to the units that depend on it.
	dependents map[string]map[string]struct{}
	// depOrder keeps each unit's resolved dependencies in declaration order.
	depOrder map[string][]string

	missing  []MissingDep
	edges    int
	withDeps int
}

// Stats is the observability record for the dependency graph.
type Stats struct {
	Units            int          `yaml:"units"`
	Edges            int          `yaml:"edges"`
	WithDependencies int          `yaml:"with_dependencies"`
	Cyclic           []string     `yaml:"cyclic,omitempty"`
	Missing          []MissingDep `yaml:"missing,omitempty"`
}

// Build constructs the graph from unit declarations. Dependencies naming an
// absent unit are skipped with a warning; self-references are ignored the
// same way since a unit cannot usefully follow itself.
func Build(ctx context.Context, decls []Decl) *Graph {
	logger := ctxlog.FromContext(ctx)

	g := &Graph{
		deps:       make(map[string]map[string]struct{}, len(decls)),
		dependents: make(map[string]map[string]struct{}, len(decls)),
		depOrder:   make(map[string][]string),
	}
	for _, d := range decls {
		g.order = append(g.order, d.Name)
		g.deps[d.Name] = make(map[string]struct{})
		g.dependents[d.Name] = make(map[string]struct{})
	}

	for _, d := range decls {
		declared := false
		for _, dep := range d.DependsOn {
			declared = true
			if dep == d.Name {
				logger.Warn("Ignoring self-referential dependency.", "unit", d.Name)
				continue
			}
			if _, ok := g.deps[dep]; !ok {
				logger.Warn("Declared dependency names no registered unit, edge omitted.", "unit", d.Name, "dependency", dep)
				g.missing = append(g.missing, MissingDep{Unit: d.Name, Missing: dep})
				continue
			}
			if _, dup := g.deps[d.Name][dep]; dup {
				continue
			}
			g.deps[d.Name][dep] = struct{}{}
			g.dependents[dep][d.Name] = struct{}{}
			g.depOrder[d.Name] = append(g.depOrder[d.Name], dep)
			g.edges++
		}
		if declared {
			g.withDeps++
		}
	}

	logger.Debug("Dependency graph built.", "units", len(g.order), "edges", g.edges, "missing", len(g.missing))
	return g
}

// Missing returns the unresolved dependency declarations recorded at build time.
func (g *Graph) Missing() []MissingDep {
	return g.missing
}

// Stats returns the graph's observability record.
func (g *Graph) Stats() Stats {
	return Stats{
		Units:            len(g.order),
		Edges:            g.edges,
		WithDependencies: g.withDeps,
		Cyclic:           g.CyclicNodes(),
		Missing:          g.missing,
	}
}
