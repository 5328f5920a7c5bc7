// Package hash computes content digests. The manifest's args pick the
// algorithms; sha256 is the default.
package hash

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"

	"github.com/vk/metascan/internal/handlers"
)

// Module implements handlers.Module for this package.
type Module struct{}

func newDigest(algorithm string) (hash.Hash, error) {
	switch algorithm {
	case "sha256":
		return sha256.New(), nil
	case "sha1":
		return sha1.New(), nil
	case "md5":
		return md5.New(), nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm %q", algorithm)
	}
}

// ExtractHash streams the file once per requested algorithm and returns the
// hex digests.
func ExtractHash(ctx context.Context, path string, args map[string]any) (map[string]any, error) {
	algorithms := []string{"sha256"}
	if raw, ok := args["algorithms"].([]any); ok {
		algorithms = algorithms[:0]
		for _, v := range raw {
			if s, ok := v.(string); ok {
				algorithms = append(algorithms, s)
			}
		}
	}

	attrs := make(map[string]any, len(algorithms))
	for _, algorithm := range algorithms {
		digest, err := newDigest(algorithm)
		if err != nil {
			return nil, err
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		_, err = io.Copy(digest, f)
		f.Close()
		if err != nil {
			return nil, err
		}
		attrs[algorithm] = hex.EncodeToString(digest.Sum(nil))
	}
	return attrs, nil
}

// Register wires this module's handlers into the process registry.
func (m *Module) Register(h *handlers.Handlers) {
	h.Register("ExtractHash", ExtractHash)
}
