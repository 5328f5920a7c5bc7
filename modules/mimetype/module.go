// Package mimetype sniffs the media type from file content, not the
// extension. Other units key their applicability off its output.
package mimetype

import (
	"context"

	"github.com/gabriel-vasile/mimetype"
	"github.com/vk/metascan/internal/handlers"
)

// Module implements handlers.Module for this package.
type Module struct{}

// DetectMime sniffs the file's media type.
func DetectMime(ctx context.Context, path string, args map[string]any) (map[string]any, error) {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"mime":      mt.String(),
		"extension": mt.Extension(),
	}, nil
}

// Register wires this module's handlers into the process registry.
func (m *Module) Register(h *handlers.Handlers) {
	h.Register("DetectMime", DetectMime)
}
