package hash

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))
	return path
}

func TestExtractHashDefault(t *testing.T) {
	attrs, err := ExtractHash(context.Background(), writeSample(t), nil)
	require.NoError(t, err)
	assert.Equal(t,
		"2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
		attrs["sha256"])
	assert.Len(t, attrs, 1)
}

func TestExtractHashSelectedAlgorithms(t *testing.T) {
	attrs, err := ExtractHash(context.Background(), writeSample(t), map[string]any{
		"algorithms": []any{"md5", "sha1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", attrs["md5"])
	assert.Equal(t, "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d", attrs["sha1"])
	assert.NotContains(t, attrs, "sha256")
}

func TestExtractHashUnsupportedAlgorithm(t *testing.T) {
	_, err := ExtractHash(context.Background(), writeSample(t), map[string]any{
		"algorithms": []any{"crc32"},
	})
	assert.Error(t, err)
}

func TestExtractHashMissingFile(t *testing.T) {
	_, err := ExtractHash(context.Background(), filepath.Join(t.TempDir(), "ghost"), nil)
	assert.Error(t, err)
}
