package registry

import (
	"time"

	"github.com/vk/metascan/internal/handlers"
)

// Operation is one named capability of a unit: a manifest-declared operation
// bound to a compiled handler, with the manifest's default arguments.
// Operations are immutable once registered; reload replaces the whole unit.
type Operation struct {
	Name    string
	Handler string
	Fn      handlers.ExtractFunc
	Args    map[string]any
}

// Unit is a loaded extraction component. A Unit value is treated as
// immutable after registration except for the enabled flag, which the
// registry flips under its lock; hot reload overwrites the entry wholesale.
type Unit struct {
	Name       string
	Source     string
	Category   string
	Priority   int
	Enabled    bool
	DependsOn  []string
	Operations map[string]*Operation

	// opOrder preserves manifest declaration order for stable iteration.
	opOrder []string

	LoadedAt time.Time
}

// NewUnit assembles a unit from scanned parts. Operations keep their
// declaration order.
func NewUnit(name, source, category string, priority int, dependsOn []string, ops []*Operation) *Unit {
	u := &Unit{
		Name:       name,
		Source:     source,
		Category:   category,
		Priority:   priority,
		Enabled:    true,
		DependsOn:  dependsOn,
		Operations: make(map[string]*Operation, len(ops)),
		LoadedAt:   time.Now(),
	}
	for _, op := range ops {
		u.Operations[op.Name] = op
		u.opOrder = append(u.opOrder, op.Name)
	}
	return u
}

// OperationNames returns the unit's operation names in declaration order.
func (u *Unit) OperationNames() []string {
	out := make([]string, len(u.opOrder))
	copy(out, u.opOrder)
	return out
}

// View is a read snapshot of a unit handed to schedulers and observers. It
// copies the mutable metadata; the Operation pointers it carries are
// immutable by convention.
type View struct {
	Name       string
	Source     string
	Category   string
	Priority   int
	Enabled    bool
	DependsOn  []string
	Operations []*Operation
	LoadedAt   time.Time
}

func (u *Unit) view() View {
	v := View{
		Name:      u.Name,
		Source:    u.Source,
		Category:  u.Category,
		Priority:  u.Priority,
		Enabled:   u.Enabled,
		DependsOn: append([]string(nil), u.DependsOn...),
		LoadedAt:  u.LoadedAt,
	}
	for _, name := range u.opOrder {
		v.Operations = append(v.Operations, u.Operations[name])
	}
	return v
}
