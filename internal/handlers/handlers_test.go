package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLookup(t *testing.T) {
	h := New()
	h.Register("ExtractStat", func(ctx context.Context, path string, args map[string]any) (map[string]any, error) {
		return map[string]any{"path": path}, nil
	})

	fn, ok := h.Lookup("ExtractStat")
	require.True(t, ok)
	attrs, err := fn(context.Background(), "/tmp/x", nil)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x", attrs["path"])

	_, ok = h.Lookup("NoSuch")
	assert.False(t, ok)
	assert.Equal(t, 1, h.Len())
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	h := New()
	noop := func(ctx context.Context, path string, args map[string]any) (map[string]any, error) {
		return nil, nil
	}
	h.Register("X", noop)
	assert.Panics(t, func() { h.Register("X", noop) })
}
