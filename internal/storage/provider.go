// Package storage abstracts the version-controlled file store posts are
// committed to.
package storage

import "context"

// File is a stored file plus the version marker guarding overwrites.
type File struct {
	Content []byte
	// SHA is the git blob digest of the current content. It must be passed
	// back to Put when replacing the file; a stale value fails the write.
	SHA string
}

// Provider is the interface for committed-file operations.
type Provider interface {
	// Get returns the file at path, or apperr.ErrNotFound.
	Get(ctx context.Context, path string) (*File, error)
	// Put creates or replaces the file at path. sha must be empty for a new
	// file and the current blob SHA for an overwrite; message is the commit
	// message. A conflicting concurrent write surfaces as an error, it is
	// never retried.
	Put(ctx context.Context, path string, content []byte, sha, message string) error
}
