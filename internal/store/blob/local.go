// Package blob stores photo bytes on the local filesystem, keyed by owner.
package blob

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/evanly-gh/remember-me/internal/config"
)

// LocalStore writes blobs under dir/<ownerID>/<key> and serves them from a
// public base URL. Owner directories are the isolation boundary; keys carry
// a timestamp and UUID so concurrent captures never collide.
type LocalStore struct {
	dir       string
	publicURL string
}

// NewLocalStore creates a local blob store, ensuring the directory exists.
func NewLocalStore(cfg *config.StorageConfig) (*LocalStore, error) {
	if cfg.Dir == "" {
		return nil, errors.New("storage directory is required")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStore{
		dir:       cfg.Dir,
		publicURL: strings.TrimSuffix(cfg.PublicURL, "/"),
	}, nil
}

// Dir returns the root directory, for mounting as a static file route.
func (s *LocalStore) Dir() string {
	return s.dir
}

// validSegment rejects path components that could escape the storage root.
func validSegment(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	return !strings.ContainsAny(s, "/\\")
}

// Save writes the blob and returns its public URL.
func (s *LocalStore) Save(ctx context.Context, ownerID, key string, data []byte, contentType string) (string, error) {
	if !validSegment(ownerID) {
		return "", fmt.Errorf("invalid owner id: %q", ownerID)
	}
	if !validSegment(key) {
		return "", fmt.Errorf("invalid blob key: %q", key)
	}

	ownerDir := filepath.Join(s.dir, ownerID)
	if err := os.MkdirAll(ownerDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create owner directory: %w", err)
	}

	path := filepath.Join(ownerDir, key)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write blob: %w", err)
	}

	return s.publicURL + "/" + ownerID + "/" + key, nil
}
