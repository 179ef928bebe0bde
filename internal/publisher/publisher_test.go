package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/balaraja1/katie-kormanik/internal/apperr"
	"github.com/balaraja1/katie-kormanik/internal/models"
	"github.com/balaraja1/katie-kormanik/internal/storage"
	"github.com/balaraja1/katie-kormanik/internal/testutil"
)

const docURL = "https://docs.google.com/document/d/ABC123/edit"

func testClock() time.Time {
	return time.Date(2025, time.March, 5, 12, 0, 0, 0, time.UTC)
}

func readRegistry(t *testing.T, store storage.Provider) []models.Post {
	t.Helper()
	file, err := store.Get(context.Background(), RegistryPath)
	if err != nil {
		t.Fatalf("read registry: %v", err)
	}
	var posts []models.Post
	if err := json.Unmarshal(file.Content, &posts); err != nil {
		t.Fatalf("parse registry: %v", err)
	}
	return posts
}

func TestPublish_EndToEnd(t *testing.T) {
	store, _ := testutil.TestSite(t)
	docs := &testutil.FakeDocs{
		DocName: "Hello World Post",
		Created: time.Date(2025, time.February, 1, 9, 0, 0, 0, time.UTC),
		HTML:    "<html><body><p>Hello world</p></body></html>",
	}
	svc := NewService(docs, store).WithClock(testClock)

	res, err := svc.Publish(context.Background(), Request{DocURL: docURL})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if res.Slug != "hello-world-post" {
		t.Errorf("slug = %q", res.Slug)
	}
	if res.URL != "blog/hello-world-post.html" {
		t.Errorf("url = %q", res.URL)
	}

	posts := readRegistry(t, store)
	if len(posts) != 1 {
		t.Fatalf("registry len = %d, want 1", len(posts))
	}
	p := posts[0]
	if p.Excerpt != "Hello world" {
		t.Errorf("excerpt = %q", p.Excerpt)
	}
	if p.DateISO != "2025-02-01T09:00:00Z" {
		t.Errorf("dateISO = %q, want doc creation time", p.DateISO)
	}
	if p.DateDisplay != "February 01, 2025" {
		t.Errorf("dateDisplay = %q", p.DateDisplay)
	}

	page, err := store.Get(context.Background(), "blog/hello-world-post.html")
	if err != nil {
		t.Fatalf("post page not committed: %v", err)
	}
	if !strings.Contains(string(page.Content), "<p>Hello world</p>") {
		t.Error("post page missing content")
	}

	index, _ := store.Get(context.Background(), BlogIndexPath)
	if !strings.Contains(string(index.Content), `href="blog/hello-world-post.html"`) {
		t.Error("blog index not regenerated")
	}
	if strings.Contains(string(index.Content), "seed.html") {
		t.Error("stale index items survived")
	}

	home, _ := store.Get(context.Background(), HomePath)
	if !strings.Contains(string(home.Content), "Hello World Post") {
		t.Error("recent posts surface not regenerated")
	}
}

func TestPublish_Overrides(t *testing.T) {
	store, _ := testutil.TestSite(t)
	docs := &testutil.FakeDocs{DocName: "Doc Name", HTML: "<p>Body</p>"}
	svc := NewService(docs, store).WithClock(testClock)

	res, err := svc.Publish(context.Background(), Request{
		DocURL: docURL,
		Title:  "Override Title",
		Slug:   "My Custom SLUG!!",
		Date:   "2024-07-04",
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if res.Slug != "my-custom-slug" {
		t.Errorf("slug = %q, want normalized override", res.Slug)
	}
	posts := readRegistry(t, store)
	if posts[0].Title != "Override Title" {
		t.Errorf("title = %q", posts[0].Title)
	}
	if posts[0].DateDisplay != "July 04, 2024" {
		t.Errorf("dateDisplay = %q", posts[0].DateDisplay)
	}
}

func TestPublish_RepublishSameSlugUpserts(t *testing.T) {
	store, _ := testutil.TestSite(t)
	docs := &testutil.FakeDocs{DocName: "Stable Title", HTML: "<p>v1</p>"}
	svc := NewService(docs, store).WithClock(testClock)
	ctx := context.Background()

	if _, err := svc.Publish(ctx, Request{DocURL: docURL}); err != nil {
		t.Fatalf("first publish: %v", err)
	}
	docs.HTML = "<p>v2 content wins</p>"
	if _, err := svc.Publish(ctx, Request{DocURL: docURL}); err != nil {
		t.Fatalf("second publish: %v", err)
	}

	posts := readRegistry(t, store)
	if len(posts) != 1 {
		t.Fatalf("registry len = %d, want 1 after republish", len(posts))
	}
	if posts[0].Excerpt != "v2 content wins" {
		t.Errorf("excerpt = %q, want second publish's value", posts[0].Excerpt)
	}
}

func TestPublish_FallbackTitleAndClock(t *testing.T) {
	store, _ := testutil.TestSite(t)
	docs := &testutil.FakeDocs{HTML: "<p>anonymous</p>"} // no name, no created time
	svc := NewService(docs, store).WithClock(testClock)

	res, err := svc.Publish(context.Background(), Request{DocURL: docURL})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if res.Slug != "untitled-post" {
		t.Errorf("slug = %q, want fallback title slug", res.Slug)
	}
	posts := readRegistry(t, store)
	if posts[0].DateISO != "2025-03-05T12:00:00Z" {
		t.Errorf("dateISO = %q, want clock time", posts[0].DateISO)
	}
}

func TestPublish_BadDocURL(t *testing.T) {
	store, _ := testutil.TestSite(t)
	docs := &testutil.FakeDocs{HTML: "<p>x</p>"}
	svc := NewService(docs, store)

	_, err := svc.Publish(context.Background(), Request{DocURL: "https://example.com/nope"})
	if !errors.Is(err, apperr.ErrBadInput) {
		t.Errorf("err = %v, want ErrBadInput", err)
	}
	if docs.TotalCalls() != 0 {
		t.Errorf("upstream calls = %d, want 0", docs.TotalCalls())
	}
}

func TestPublish_BadDateOverride(t *testing.T) {
	store, _ := testutil.TestSite(t)
	docs := &testutil.FakeDocs{DocName: "T", HTML: "<p>x</p>"}
	svc := NewService(docs, store)

	_, err := svc.Publish(context.Background(), Request{DocURL: docURL, Date: "next tuesday"})
	if !errors.Is(err, apperr.ErrBadInput) {
		t.Errorf("err = %v, want ErrBadInput", err)
	}
}

func TestPublish_ExportFailureAbortsBeforeCommits(t *testing.T) {
	store, _ := testutil.TestSite(t)
	docs := &testutil.FakeDocs{
		DocName:   "Broken",
		ExportErr: &apperr.UpstreamError{Op: "export", Status: 502},
	}
	svc := NewService(docs, store)

	_, err := svc.Publish(context.Background(), Request{DocURL: docURL})
	var ue *apperr.UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("err = %v, want UpstreamError", err)
	}
	if _, err := store.Get(context.Background(), RegistryPath); !errors.Is(err, apperr.ErrNotFound) {
		t.Error("registry written despite aborted pipeline")
	}
}

func TestPublish_MissingRequiredSurfaceFails(t *testing.T) {
	root := t.TempDir()
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	// No blog.html at all.
	docs := &testutil.FakeDocs{DocName: "T", HTML: "<p>x</p>"}
	svc := NewService(docs, store).WithClock(testClock)

	_, err = svc.Publish(context.Background(), Request{DocURL: docURL})
	if !errors.Is(err, apperr.ErrMissingSurface) {
		t.Errorf("err = %v, want ErrMissingSurface", err)
	}
}

func TestPublish_OptionalSurfaceMissingIsSkipped(t *testing.T) {
	store, _ := testutil.TestSite(t)
	ctx := context.Background()
	home, _ := store.Get(ctx, HomePath)
	if err := store.Put(ctx, HomePath, []byte(testutil.HomeDocWithoutSurface), home.SHA, "strip surface"); err != nil {
		t.Fatal(err)
	}

	docs := &testutil.FakeDocs{DocName: "T", HTML: "<p>x</p>"}
	svc := NewService(docs, store).WithClock(testClock)
	if _, err := svc.Publish(ctx, Request{DocURL: docURL}); err != nil {
		t.Fatalf("Publish should tolerate missing optional surface: %v", err)
	}
}
