// Package apperr defines the error kinds shared across the publish pipeline.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrBadInput       = errors.New("bad input")
	ErrMissingSurface = errors.New("insertion point missing")
)

// UpstreamError is a non-success response from the document metadata/export API.
type UpstreamError struct {
	Op     string
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: upstream status %d", e.Op, e.Status)
}

// CommitError is a non-success response from a storage write.
type CommitError struct {
	Path   string
	Status int
	Body   string
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("commit %s: status %d: %s", e.Path, e.Status, e.Body)
}
