// Package fsutil provides file system helpers for unit discovery.
package fsutil

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ReservedPrefix marks manifest files that discovery must ignore, for example
// shared snippets or disabled drafts kept next to live units.
const ReservedPrefix = "_"

// ListUnitFiles returns the full paths of all files in dir that end with the
// given extension, skipping subdirectories and files whose base name starts
// with ReservedPrefix. Results are sorted by name so registration order is
// stable across runs.
func ListUnitFiles(dir string, extension string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ReservedPrefix) {
			continue
		}
		if !strings.HasSuffix(name, extension) {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}

	sort.Strings(files)
	return files, nil
}

// UnitName derives the unit name from a manifest path: the base file name
// with the extension removed.
func UnitName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
