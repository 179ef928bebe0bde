package publisher

import (
	"context"
	"strings"
	"testing"

	"github.com/balaraja1/katie-kormanik/internal/testutil"
)

func TestPublish_RelocatesImages(t *testing.T) {
	store, _ := testutil.TestSite(t)
	docs := &testutil.FakeDocs{
		DocName: "Pics",
		HTML: `<html><body><p>Intro</p>` +
			`<img src="https://lh3.example.com/media/photo.png">` +
			`<img src="https://lh3.example.com/docsz/AD_opaque_token">` +
			`</body></html>`,
		Blobs: map[string]testutil.Blob{
			"https://lh3.example.com/media/photo.png":      {Data: []byte("png-bytes"), ContentType: "image/png"},
			"https://lh3.example.com/docsz/AD_opaque_token": {Data: []byte("jpg-bytes"), ContentType: "image/jpeg"},
		},
	}
	svc := NewService(docs, store).WithClock(testClock)
	ctx := context.Background()

	res, err := svc.Publish(ctx, Request{DocURL: docURL})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	// Named from URL basename.
	if _, err := store.Get(ctx, "images/blog/"+res.Slug+"/photo.png"); err != nil {
		t.Errorf("named image not committed: %v", err)
	}
	// Counter-named with extension from content type.
	if _, err := store.Get(ctx, "images/blog/"+res.Slug+"/image-1.jpg"); err != nil {
		t.Errorf("counter image not committed: %v", err)
	}

	page, _ := store.Get(ctx, "blog/"+res.Slug+".html")
	content := string(page.Content)
	if !strings.Contains(content, `src="../images/blog/`+res.Slug+`/photo.png"`) {
		t.Errorf("named src not rewritten: %s", content)
	}
	if !strings.Contains(content, `src="../images/blog/`+res.Slug+`/image-1.jpg"`) {
		t.Errorf("counter src not rewritten: %s", content)
	}
	if strings.Contains(content, "lh3.example.com") {
		t.Errorf("original image URLs survived: %s", content)
	}
}

func TestPublish_IndistinguishableBasenamesGetSequentialNames(t *testing.T) {
	store, _ := testutil.TestSite(t)
	docs := &testutil.FakeDocs{
		DocName: "Twins",
		HTML: `<img src="https://cdn.example.com/a/opaque"><img src="https://cdn.example.com/b/opaque">`,
		Blobs: map[string]testutil.Blob{
			"https://cdn.example.com/a/opaque": {Data: []byte("one"), ContentType: "image/jpeg"},
			"https://cdn.example.com/b/opaque": {Data: []byte("two"), ContentType: "image/jpeg"},
		},
	}
	svc := NewService(docs, store).WithClock(testClock)
	ctx := context.Background()

	res, err := svc.Publish(ctx, Request{DocURL: docURL})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	first, err := store.Get(ctx, "images/blog/"+res.Slug+"/image-1.jpg")
	if err != nil {
		t.Fatalf("image-1: %v", err)
	}
	second, err := store.Get(ctx, "images/blog/"+res.Slug+"/image-2.jpg")
	if err != nil {
		t.Fatalf("image-2: %v", err)
	}
	if string(first.Content) != "one" || string(second.Content) != "two" {
		t.Error("sequential names assigned out of document order")
	}
}

func TestPublish_DuplicateBasenamesDeduplicated(t *testing.T) {
	store, _ := testutil.TestSite(t)
	docs := &testutil.FakeDocs{
		DocName: "Dupes",
		HTML: `<img src="https://a.example.com/photo.jpg"><img src="https://b.example.com/photo.jpg">`,
		Blobs: map[string]testutil.Blob{
			"https://a.example.com/photo.jpg": {Data: []byte("one"), ContentType: "image/jpeg"},
			"https://b.example.com/photo.jpg": {Data: []byte("two"), ContentType: "image/jpeg"},
		},
	}
	svc := NewService(docs, store).WithClock(testClock)
	ctx := context.Background()

	res, err := svc.Publish(ctx, Request{DocURL: docURL})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if _, err := store.Get(ctx, "images/blog/"+res.Slug+"/photo.jpg"); err != nil {
		t.Errorf("first duplicate: %v", err)
	}
	if _, err := store.Get(ctx, "images/blog/"+res.Slug+"/photo-2.jpg"); err != nil {
		t.Errorf("second duplicate: %v", err)
	}
}

func TestPublish_ImageFetchFailureIsSwallowed(t *testing.T) {
	store, _ := testutil.TestSite(t)
	docs := &testutil.FakeDocs{
		DocName: "Flaky",
		HTML:    `<p>text</p><img src="https://cdn.example.com/gone.png">`,
		// No blobs: every fetch fails.
	}
	svc := NewService(docs, store).WithClock(testClock)
	ctx := context.Background()

	res, err := svc.Publish(ctx, Request{DocURL: docURL})
	if err != nil {
		t.Fatalf("Publish must tolerate image failures: %v", err)
	}
	page, _ := store.Get(ctx, "blog/"+res.Slug+".html")
	if !strings.Contains(string(page.Content), "cdn.example.com") {
		t.Error("failed image reference should be left untouched")
	}
}
