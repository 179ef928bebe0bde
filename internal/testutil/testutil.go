// Package testutil provides shared fakes and fixtures: an in-memory document
// source and a seeded site checkout backed by the FS store.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/balaraja1/katie-kormanik/internal/gdocs"
	"github.com/balaraja1/katie-kormanik/internal/storage"
)

// Blob is a fake binary asset served by FakeDocs.FetchBlob.
type Blob struct {
	Data        []byte
	ContentType string
}

// FakeDocs is an in-memory publisher.DocSource recording call counts so
// tests can assert that rejected requests made zero upstream calls.
type FakeDocs struct {
	mu sync.Mutex

	DocName string
	Created time.Time
	HTML    string
	Blobs   map[string]Blob

	MetadataErr error
	ExportErr   error

	MetadataCalls int
	ExportCalls   int
	BlobCalls     int
}

// Metadata implements publisher.DocSource.
func (f *FakeDocs) Metadata(_ context.Context, _ string) (*gdocs.DocMeta, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.MetadataCalls++
	if f.MetadataErr != nil {
		return nil, f.MetadataErr
	}
	return &gdocs.DocMeta{Name: f.DocName, CreatedTime: f.Created}, nil
}

// ExportHTML implements publisher.DocSource.
func (f *FakeDocs) ExportHTML(_ context.Context, _ string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ExportCalls++
	if f.ExportErr != nil {
		return nil, f.ExportErr
	}
	return []byte(f.HTML), nil
}

// FetchBlob implements publisher.DocSource.
func (f *FakeDocs) FetchBlob(_ context.Context, url string) ([]byte, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.BlobCalls++
	b, ok := f.Blobs[url]
	if !ok {
		return nil, "", fmt.Errorf("no blob at %s", url)
	}
	return b.Data, b.ContentType, nil
}

// TotalCalls returns the number of upstream calls made so far.
func (f *FakeDocs) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.MetadataCalls + f.ExportCalls + f.BlobCalls
}

// BlogIndexDoc is a minimal blog.html carrying the required insertion point.
const BlogIndexDoc = `<!DOCTYPE html>
<html><body>
<section class="blog-index"><ul class="post-list">
<li class="post-list-item"><a href="blog/seed.html">Seed</a><span class="post-date">January 01, 2020</span></li>
</ul></section>
</body></html>`

// HomeDoc is a minimal index.html carrying the optional insertion point.
const HomeDoc = `<!DOCTYPE html>
<html><body>
<div class="recent-posts"></div>
</body></html>`

// HomeDocWithoutSurface is an index.html lacking the optional container.
const HomeDocWithoutSurface = `<!DOCTYPE html><html><body><p>hi</p></body></html>`

// TestSite creates a temp checkout seeded with blog.html and index.html and
// returns an FS store over it plus its root path.
func TestSite(t *testing.T) (storage.Provider, string) {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	ctx := context.Background()
	if err := store.Put(ctx, "blog.html", []byte(BlogIndexDoc), "", "seed"); err != nil {
		t.Fatalf("seed blog.html: %v", err)
	}
	if err := store.Put(ctx, "index.html", []byte(HomeDoc), "", "seed"); err != nil {
		t.Fatalf("seed index.html: %v", err)
	}
	return store, root
}
