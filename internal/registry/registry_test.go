package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUnit(name string, deps []string, ops ...string) *Unit {
	regOps := make([]*Operation, 0, len(ops))
	for _, op := range ops {
		regOps = append(regOps, &Operation{
			Name:    op,
			Handler: "Noop",
			Fn: func(ctx context.Context, path string, args map[string]any) (map[string]any, error) {
				return map[string]any{}, nil
			},
		})
	}
	category := InferCategory(name)
	return NewUnit(name, name+".hcl", category, InferPriority(name, category), deps, regOps)
}

func TestRegisterAndGet(t *testing.T) {
	r := New()
	r.Register(testUnit("exif", nil, "extract_exif"))

	v, ok := r.Get("exif")
	require.True(t, ok)
	assert.Equal(t, "exif", v.Name)
	assert.Equal(t, CategoryImage, v.Category)
	assert.Equal(t, PriorityCategory, v.Priority)
	assert.True(t, v.Enabled)
	require.Len(t, v.Operations, 1)
	assert.Equal(t, "extract_exif", v.Operations[0].Name)

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestOperationLookup(t *testing.T) {
	r := New()
	r.Register(testUnit("base", nil, "extract_x", "detect_y"))

	op, ok := r.Operation("base", "detect_y")
	require.True(t, ok)
	assert.Equal(t, "detect_y", op.Name)

	_, ok = r.Operation("base", "extract_nope")
	assert.False(t, ok)
	_, ok = r.Operation("nope", "extract_x")
	assert.False(t, ok)
}

func TestOverwriteKeepsRegistrationPosition(t *testing.T) {
	r := New()
	r.Register(testUnit("first", nil, "extract_a"))
	r.Register(testUnit("second", nil, "extract_b"))

	replacement := testUnit("first", nil, "extract_a", "extract_c")
	r.Register(replacement)

	units := r.Units()
	require.Len(t, units, 2)
	assert.Equal(t, "first", units[0].Name)
	assert.Len(t, units[0].Operations, 2)

	// Loaded counts units, not registrations.
	assert.Equal(t, 2, r.DiscoveryStats().Loaded)
}

func TestRediscoveryReportsIdenticalCounts(t *testing.T) {
	r := New()
	r.RecordCandidate()
	r.Register(testUnit("exif", nil, "extract_exif"))
	first := r.DiscoveryStats()

	// Same directory scanned again: reset, then the same unit re-registers.
	r.ResetDiscovery()
	r.RecordCandidate()
	r.Register(testUnit("exif", nil, "extract_exif"))
	second := r.DiscoveryStats()

	assert.Equal(t, 1, second.Loaded)
	assert.Equal(t, first.Discovered, second.Discovered)
	assert.Equal(t, first.Loaded, second.Loaded)
	assert.Equal(t, first.ByCategory, second.ByCategory)
	assert.Equal(t, map[string]int{CategoryImage: 1}, second.ByCategory)

	// A reload overwrite inside the same pass still counts the unit once.
	r.Register(testUnit("exif", nil, "extract_exif", "extract_thumb"))
	assert.Equal(t, 1, r.DiscoveryStats().Loaded)
	assert.Equal(t, map[string]int{CategoryImage: 1}, r.DiscoveryStats().ByCategory)
}

func TestEnableDisable(t *testing.T) {
	r := New()
	r.Register(testUnit("a", nil, "extract_a"))
	r.Register(testUnit("b", nil, "extract_b"))

	require.True(t, r.SetEnabled("b", false))
	enabled := r.Enabled()
	require.Len(t, enabled, 1)
	assert.Equal(t, "a", enabled[0].Name)

	require.True(t, r.SetEnabled("b", true))
	assert.Len(t, r.Enabled(), 2)

	assert.False(t, r.SetEnabled("ghost", true))
}

func TestGraphCacheInvalidation(t *testing.T) {
	ctx := context.Background()
	r := New()
	r.Register(testUnit("base", nil, "extract_x"))

	g1 := r.Graph(ctx)
	assert.Same(t, g1, r.Graph(ctx), "graph should be cached between reads")

	// Enable/disable does not change the unit set, the cache stays.
	r.SetEnabled("base", false)
	assert.Same(t, g1, r.Graph(ctx))

	// Registering changes the unit set and invalidates the cache.
	r.Register(testUnit("derived", []string{"base"}, "extract_y"))
	g2 := r.Graph(ctx)
	assert.NotSame(t, g1, g2)
	assert.Equal(t, 1, g2.Stats().Edges)

	r.Remove("derived")
	assert.NotSame(t, g2, r.Graph(ctx))
}

func TestFailureAccounting(t *testing.T) {
	r := New()
	r.RecordCandidate()
	r.RecordCandidate()
	r.RecordFailure("broken", "syntax error")
	r.Register(testUnit("good", nil, "extract_g"))

	stats := r.DiscoveryStats()
	assert.Equal(t, 2, stats.Discovered)
	assert.Equal(t, 1, stats.Loaded)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, "syntax error", stats.Failures["broken"])
	assert.WithinDuration(t, time.Now(), stats.LastDiscovery, time.Minute)

	// A later successful registration clears the failure marker.
	r.RecordFailure("good", "transient")
	r.Register(testUnit("good", nil, "extract_g"))
	assert.NotContains(t, r.DiscoveryStats().Failures, "good")
}

func TestResetDiscovery(t *testing.T) {
	r := New()
	r.RecordCandidate()
	r.RecordFailure("x", "boom")
	r.ResetDiscovery()

	stats := r.DiscoveryStats()
	assert.Zero(t, stats.Discovered)
	assert.Zero(t, stats.Failed)
	assert.Empty(t, stats.Failures)
}

func TestViewsAreSnapshots(t *testing.T) {
	r := New()
	r.Register(testUnit("a", []string{"b"}, "extract_a"))

	v, ok := r.Get("a")
	require.True(t, ok)
	v.DependsOn[0] = "mutated"

	fresh, _ := r.Get("a")
	assert.Equal(t, []string{"b"}, fresh.DependsOn)
}
