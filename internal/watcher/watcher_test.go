package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/metascan/internal/handlers"
	"github.com/vk/metascan/internal/loader"
	"github.com/vk/metascan/internal/registry"
)

const statManifest = `
unit {
  operation "extract_stat" {
    handler = "ExtractStat"
  }
}
`

const extendedManifest = `
unit {
  operation "extract_stat" {
    handler = "ExtractStat"
  }
  operation "analyze_text" {
    handler = "AnalyzeText"
  }
}
`

func noop(ctx context.Context, path string, args map[string]any) (map[string]any, error) {
	return map[string]any{}, nil
}

type fixture struct {
	dir string
	reg *registry.Registry
	w   *Watcher
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fileinfo.hcl"), []byte(statManifest), 0o644))

	h := handlers.New()
	h.Register("ExtractStat", noop)
	h.Register("AnalyzeText", noop)
	reg := registry.New()
	l := loader.New(h, reg)
	require.NoError(t, l.Discover(context.Background(), dir))

	return &fixture{dir: dir, reg: reg, w: New(l, reg, opts)}
}

// waitFor polls until cond holds or the deadline expires. Filesystem events
// arrive asynchronously, so tests observe effects instead of timing exact
// state transitions.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestEnableDisableLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})

	assert.Equal(t, StateDisabled, f.w.Stats().State)
	require.NoError(t, f.w.Enable(ctx, f.dir))
	assert.Equal(t, StateArmed, f.w.Stats().State)
	assert.Error(t, f.w.Enable(ctx, f.dir), "double enable must be rejected")

	f.w.Disable(ctx)
	assert.Equal(t, StateDisabled, f.w.Stats().State)
	// Disabling twice is a no-op.
	f.w.Disable(ctx)
}

func TestEnableDisableCycles(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{Debounce: 10 * time.Millisecond, MinInterval: time.Millisecond})

	// Tearing down while events are still in flight must not race the event
	// loop or leave the watcher in a half-armed state.
	for i := 0; i < 5; i++ {
		require.NoError(t, f.w.Enable(ctx, f.dir))
		require.NoError(t, os.WriteFile(filepath.Join(f.dir, "fileinfo.hcl"), []byte(statManifest), 0o644))
		f.w.Disable(ctx)
		assert.Equal(t, StateDisabled, f.w.Stats().State)
	}

	// The watcher stays usable after the churn.
	require.NoError(t, f.w.Enable(ctx, f.dir))
	assert.Equal(t, StateArmed, f.w.Stats().State)
	f.w.Disable(ctx)
}

func TestReloadOnWrite(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{Debounce: 30 * time.Millisecond, MinInterval: time.Millisecond})
	require.NoError(t, f.w.Enable(ctx, f.dir))
	defer f.w.Disable(ctx)

	require.NoError(t, os.WriteFile(filepath.Join(f.dir, "fileinfo.hcl"), []byte(extendedManifest), 0o644))

	ok := waitFor(t, 5*time.Second, func() bool {
		_, found := f.reg.Operation("fileinfo", "analyze_text")
		return found
	})
	require.True(t, ok, "reloaded unit should expose the new operation")

	v, _ := f.reg.Get("fileinfo")
	assert.True(t, v.Enabled)
	assert.Equal(t, 1, f.reg.DiscoveryStats().Loaded)

	waitFor(t, time.Second, func() bool { return f.w.Stats().State == StateArmed })
	stats := f.w.Stats()
	assert.GreaterOrEqual(t, stats.Reloads, 1)
	assert.Equal(t, StateArmed, stats.State)
	assert.InDelta(t, 1.0, stats.SuccessRate, 0.001)
}

func TestDebounceCollapsesBursts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{Debounce: 150 * time.Millisecond, MinInterval: time.Millisecond})
	require.NoError(t, f.w.Enable(ctx, f.dir))
	defer f.w.Disable(ctx)

	// An editor-style burst of writes inside one debounce window.
	path := filepath.Join(f.dir, "fileinfo.hcl")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte(extendedManifest), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	ok := waitFor(t, 5*time.Second, func() bool { return f.w.Stats().Reloads >= 1 })
	require.True(t, ok)

	// Allow any stray timer to fire, then confirm the burst collapsed.
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, 1, f.w.Stats().Reloads)
}

func TestThrottleCountsSuppressedReloads(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{Debounce: 20 * time.Millisecond, MinInterval: time.Hour})
	require.NoError(t, f.w.Enable(ctx, f.dir))
	defer f.w.Disable(ctx)

	path := filepath.Join(f.dir, "fileinfo.hcl")
	require.NoError(t, os.WriteFile(path, []byte(extendedManifest), 0o644))
	ok := waitFor(t, 5*time.Second, func() bool { return f.w.Stats().Reloads == 1 })
	require.True(t, ok, "first reload passes the throttle")

	// The second change lands well inside the minimum interval.
	require.NoError(t, os.WriteFile(path, []byte(statManifest), 0o644))
	ok = waitFor(t, 5*time.Second, func() bool { return f.w.Stats().Throttled >= 1 })
	require.True(t, ok)
	assert.Equal(t, 1, f.w.Stats().Reloads)
	assert.Equal(t, StateArmed, f.w.Stats().State)
}

func TestReservedPrefixIgnored(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{Debounce: 20 * time.Millisecond, MinInterval: time.Millisecond})
	require.NoError(t, f.w.Enable(ctx, f.dir))
	defer f.w.Disable(ctx)

	require.NoError(t, os.WriteFile(filepath.Join(f.dir, "_draft.hcl"), []byte(statManifest), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, "notes.txt"), []byte("x"), 0o644))

	time.Sleep(300 * time.Millisecond)
	stats := f.w.Stats()
	assert.Zero(t, stats.Reloads)
	assert.Zero(t, stats.Errors)
	assert.Equal(t, StateArmed, stats.State)
}

func TestReloadFailureCounted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{Debounce: 20 * time.Millisecond, MinInterval: time.Millisecond})
	require.NoError(t, f.w.Enable(ctx, f.dir))
	defer f.w.Disable(ctx)

	require.NoError(t, os.WriteFile(filepath.Join(f.dir, "fileinfo.hcl"), []byte("unit {"), 0o644))

	ok := waitFor(t, 5*time.Second, func() bool { return f.w.Stats().Errors >= 1 })
	require.True(t, ok)

	v, found := f.reg.Get("fileinfo")
	require.True(t, found, "broken reload keeps the prior entry")
	assert.False(t, v.Enabled)
	assert.Zero(t, f.w.Stats().SuccessRate)
}

func TestDisableDropsPendingTimers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{Debounce: time.Hour, MinInterval: time.Millisecond})
	require.NoError(t, f.w.Enable(ctx, f.dir))

	require.NoError(t, os.WriteFile(filepath.Join(f.dir, "fileinfo.hcl"), []byte(extendedManifest), 0o644))
	waitFor(t, time.Second, func() bool { return f.w.Stats().State == StatePending })

	f.w.Disable(ctx)
	time.Sleep(100 * time.Millisecond)
	stats := f.w.Stats()
	assert.Equal(t, StateDisabled, stats.State)
	assert.Zero(t, stats.Reloads)
}
