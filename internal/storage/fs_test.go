package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/balaraja1/katie-kormanik/internal/apperr"
	"github.com/balaraja1/katie-kormanik/internal/checksum"
)

func TestFS_PutAndGet(t *testing.T) {
	fs, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	ctx := context.Background()

	if err := fs.Put(ctx, "data/posts.json", []byte("[]"), "", "init"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	file, err := fs.Get(ctx, "data/posts.json")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(file.Content) != "[]" {
		t.Errorf("content = %q", file.Content)
	}
	if file.SHA != checksum.BlobSHA([]byte("[]")) {
		t.Errorf("sha = %q", file.SHA)
	}
}

func TestFS_GetMissing(t *testing.T) {
	fs, _ := NewFS(t.TempDir())
	_, err := fs.Get(context.Background(), "nope.html")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestFS_PutRequiresCurrentMarker(t *testing.T) {
	fs, _ := NewFS(t.TempDir())
	ctx := context.Background()

	if err := fs.Put(ctx, "blog/a.html", []byte("v1"), "", "create"); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Overwrite without the marker fails.
	if err := fs.Put(ctx, "blog/a.html", []byte("v2"), "", "clobber"); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("blind overwrite err = %v, want ErrConflict", err)
	}

	// Overwrite with the current marker succeeds.
	sha := checksum.BlobSHA([]byte("v1"))
	if err := fs.Put(ctx, "blog/a.html", []byte("v2"), sha, "update"); err != nil {
		t.Fatalf("conditional overwrite: %v", err)
	}

	// The old marker is now stale.
	if err := fs.Put(ctx, "blog/a.html", []byte("v3"), sha, "stale"); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("stale overwrite err = %v, want ErrConflict", err)
	}
}

func TestFS_RejectsTraversal(t *testing.T) {
	fs, _ := NewFS(t.TempDir())
	if _, err := fs.Get(context.Background(), "../escape"); err == nil {
		t.Error("traversal path should be rejected")
	}
	if err := fs.Put(context.Background(), "/abs/path", []byte("x"), "", "m"); err == nil {
		t.Error("absolute path should be rejected")
	}
}
