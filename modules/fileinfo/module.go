// Package fileinfo exposes basic filesystem metadata: size, timestamps,
// permissions. Most other units conceptually build on it, which is why unit
// manifests usually list it as a dependency.
package fileinfo

import (
	"context"
	"os"
	"path/filepath"

	"github.com/vk/metascan/internal/handlers"
)

// Module implements handlers.Module for this package.
type Module struct{}

// ExtractStat reads filesystem metadata for the input path.
func ExtractStat(ctx context.Context, path string, args map[string]any) (map[string]any, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	attrs := map[string]any{
		"name":     info.Name(),
		"size":     info.Size(),
		"mode":     info.Mode().String(),
		"modified": info.ModTime().UTC(),
		"is_dir":   info.IsDir(),
	}

	if ext := filepath.Ext(path); ext != "" {
		attrs["extension"] = ext
	}
	if abs, err := filepath.Abs(path); err == nil {
		attrs["absolute_path"] = abs
	}
	return attrs, nil
}

// Register wires this module's handlers into the process registry.
func (m *Module) Register(h *handlers.Handlers) {
	h.Register("ExtractStat", ExtractStat)
}
