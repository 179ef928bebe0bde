package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/balaraja1/katie-kormanik/internal/apperr"
	"github.com/balaraja1/katie-kormanik/internal/checksum"
)

// FS implements Provider over a local checkout of the site repository.
// It backs the one-time import command and tests; version markers are the
// same git blob digests the contents API would report.
type FS struct {
	root string // absolute path to the checkout
}

// NewFS creates an FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// safePath resolves a relative path against the root and rejects any result
// that escapes it (directory traversal).
func (f *FS) safePath(rel string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if cleaned == "" || cleaned == "." {
		return "", fmt.Errorf("storage: path is required")
	}
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: absolute paths not allowed: %s", rel)
	}
	abs, err := filepath.Abs(filepath.Join(f.root, cleaned))
	if err != nil {
		return "", fmt.Errorf("storage: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("storage: path escapes root: %s", rel)
	}
	return abs, nil
}

// Get reads a file and computes its blob SHA.
func (f *FS) Get(_ context.Context, path string) (*File, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return &File{Content: data, SHA: checksum.BlobSHA(data)}, nil
}

// Put writes a file, enforcing the version marker against current content.
func (f *FS) Put(_ context.Context, path string, content []byte, sha, _ string) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	existing, err := os.ReadFile(abs)
	switch {
	case err == nil:
		if sha != checksum.BlobSHA(existing) {
			return fmt.Errorf("storage: put %s: %w", path, apperr.ErrConflict)
		}
	case os.IsNotExist(err):
		if sha != "" {
			return fmt.Errorf("storage: put %s: stale marker for missing file: %w", path, apperr.ErrConflict)
		}
	default:
		return fmt.Errorf("storage: put %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("storage: mkdir for %s: %w", path, err)
	}
	tmp := abs + ".tmp"
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return fmt.Errorf("storage: write %s: %w", path, err)
	}
	if err := os.Rename(tmp, abs); err != nil {
		return fmt.Errorf("storage: rename %s: %w", path, err)
	}
	return nil
}
