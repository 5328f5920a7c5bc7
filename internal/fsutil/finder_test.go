package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListUnitFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"zeta.hcl", "alpha.hcl", "_shared.hcl", "readme.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.hcl"), 0o755))

	files, err := ListUnitFiles(dir, ".hcl")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "alpha.hcl"),
		filepath.Join(dir, "zeta.hcl"),
	}, files, "sorted, no directories, no reserved prefix, no foreign extensions")
}

func TestListUnitFilesEmptyDir(t *testing.T) {
	files, err := ListUnitFiles(t.TempDir(), ".hcl")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestListUnitFilesMissingDir(t *testing.T) {
	_, err := ListUnitFiles(filepath.Join(t.TempDir(), "nope"), ".hcl")
	assert.Error(t, err)
}

func TestUnitName(t *testing.T) {
	assert.Equal(t, "fileinfo", UnitName("/units/fileinfo.hcl"))
	assert.Equal(t, "mime", UnitName("mime.hcl"))
	assert.Equal(t, "noext", UnitName("noext"))
}
