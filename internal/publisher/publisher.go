// Package publisher turns a Google Doc into a committed blog post: export,
// sanitize, relocate images, render, and write the post page, registry, and
// listing surfaces to the site repository.
package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/balaraja1/katie-kormanik/internal/apperr"
	"github.com/balaraja1/katie-kormanik/internal/checksum"
	"github.com/balaraja1/katie-kormanik/internal/gdocs"
	"github.com/balaraja1/katie-kormanik/internal/models"
	"github.com/balaraja1/katie-kormanik/internal/sanitize"
	"github.com/balaraja1/katie-kormanik/internal/site"
	"github.com/balaraja1/katie-kormanik/internal/storage"
)

// Repository layout.
const (
	RegistryPath  = "data/posts.json"
	BlogIndexPath = "blog.html"
	HomePath      = "index.html"
)

// FallbackTitle is used when neither an override nor a document name exists.
const FallbackTitle = "Untitled post"

// DocSource is the document metadata/export/blob surface the pipeline
// consumes. *gdocs.Client satisfies it.
type DocSource interface {
	Metadata(ctx context.Context, docID string) (*gdocs.DocMeta, error)
	ExportHTML(ctx context.Context, docID string) ([]byte, error)
	FetchBlob(ctx context.Context, url string) ([]byte, string, error)
}

// Request carries the document reference and optional overrides.
type Request struct {
	DocURL string
	Title  string
	Date   string
	Slug   string
}

// Result is returned after a successful publish.
type Result struct {
	Slug string
	URL  string
}

// Service runs the publish pipeline against a document source and a
// committed-file store.
type Service struct {
	docs  DocSource
	store storage.Provider
	now   func() time.Time
}

// NewService creates a publisher service.
func NewService(docs DocSource, store storage.Provider) *Service {
	return &Service{docs: docs, store: store, now: time.Now}
}

// WithClock overrides the wall clock (used by tests).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Publish executes the pipeline. Writes happen as an ordered sequence of
// independent commits; a failure partway leaves earlier writes in place.
// Every write is idempotent by path, so a failed publish can be re-run.
func (s *Service) Publish(ctx context.Context, req Request) (*Result, error) {
	docID, err := gdocs.ParseDocURL(req.DocURL)
	if err != nil {
		return nil, err
	}

	meta, err := s.docs.Metadata(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("fetch metadata: %w", err)
	}
	export, err := s.docs.ExportHTML(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("export document: %w", err)
	}

	body, err := sanitize.ParseBody(bytes.NewReader(export))
	if err != nil {
		return nil, fmt.Errorf("parse export: %w", err)
	}
	sanitize.Clean(body)

	title := req.Title
	if title == "" {
		title = meta.Name
	}
	if title == "" {
		title = FallbackTitle
	}
	slugSource := req.Slug
	if slugSource == "" {
		slugSource = title
	}
	slug := models.Slugify(slugSource)

	published, err := s.resolveDate(req.Date, meta.CreatedTime)
	if err != nil {
		return nil, err
	}

	images := s.relocateImages(ctx, body, slug)
	excerpt := Excerpt(body)

	content, err := sanitize.RenderBody(body)
	if err != nil {
		return nil, fmt.Errorf("render content: %w", err)
	}
	page, err := site.RenderPostPage(title, models.DisplayDate(published), content)
	if err != nil {
		return nil, err
	}

	post := models.Post{
		Title:       title,
		Slug:        slug,
		DateISO:     published.UTC().Format(time.RFC3339),
		DateDisplay: models.DisplayDate(published),
		Excerpt:     excerpt,
	}
	posts, registrySHA, err := s.loadRegistry(ctx)
	if err != nil {
		return nil, err
	}
	posts = models.Upsert(posts, post)

	if err := s.commit(ctx, slug, page, posts, registrySHA, images); err != nil {
		return nil, err
	}

	slog.Info("post published",
		slog.String("slug", slug),
		slog.String("title", title),
		slog.Int("images", len(images)))
	return &Result{Slug: slug, URL: "blog/" + slug + ".html"}, nil
}

// resolveDate picks the publish timestamp: override, then document creation
// time, then now. Overrides accept RFC 3339 or plain dates.
func (s *Service) resolveDate(override string, created time.Time) (time.Time, error) {
	if override != "" {
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, override); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("%w: unparseable date %q", apperr.ErrBadInput, override)
	}
	if !created.IsZero() {
		return created, nil
	}
	return s.now(), nil
}

// loadRegistry reads data/posts.json; a missing file means an empty registry
// (reconstruction from an existing index page is the explicit import
// command, not part of publishing).
func (s *Service) loadRegistry(ctx context.Context) ([]models.Post, string, error) {
	file, err := s.store.Get(ctx, RegistryPath)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("load registry: %w", err)
	}
	var posts []models.Post
	if err := json.Unmarshal(file.Content, &posts); err != nil {
		return nil, "", fmt.Errorf("parse registry: %w", err)
	}
	return posts, file.SHA, nil
}

// commit writes, in order: images, post page, registry, blog index surface
// (required), homepage surface (optional). Each write is an independent
// commit; there is no rollback.
func (s *Service) commit(ctx context.Context, slug string, page []byte, posts []models.Post, registrySHA string, images []relocatedImage) error {
	for _, img := range images {
		if err := s.putFile(ctx, img.Path, img.Data, "Add image for post: "+slug); err != nil {
			return err
		}
	}

	if err := s.putFile(ctx, "blog/"+slug+".html", page, "Publish post: "+slug); err != nil {
		return err
	}

	registry, err := json.MarshalIndent(posts, "", "  ")
	if err != nil {
		return fmt.Errorf("encode registry: %w", err)
	}
	registry = append(registry, '\n')
	if err := s.putConditional(ctx, RegistryPath, registry, registrySHA, "Update post registry"); err != nil {
		return err
	}

	items, err := site.BlogIndexItems(posts)
	if err != nil {
		return err
	}
	if err := s.injectSurface(ctx, BlogIndexPath, site.BlogIndexContainer, items, site.SurfaceRequired, "Update blog index"); err != nil {
		return err
	}

	cards, err := site.RecentPostCards(posts)
	if err != nil {
		return err
	}
	if err := s.injectSurface(ctx, HomePath, site.RecentPostContainer, cards, site.SurfaceOptional, "Update recent posts"); err != nil {
		return err
	}
	return nil
}

// injectSurface regenerates one listing surface inside a hand-authored
// document. A missing document or insertion point is a contract violation
// for a required surface and a silent skip for an optional one.
func (s *Service) injectSurface(ctx context.Context, path, container, markup string, policy site.SurfacePolicy, message string) error {
	file, err := s.store.Get(ctx, path)
	if errors.Is(err, apperr.ErrNotFound) {
		if policy == site.SurfaceOptional {
			slog.Warn("surface document missing, skipping", slog.String("path", path))
			return nil
		}
		return fmt.Errorf("%w: %s does not exist", apperr.ErrMissingSurface, path)
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	updated, injected, err := site.Inject(file.Content, container, markup, policy)
	if err != nil {
		return err
	}
	if !injected {
		slog.Warn("insertion point missing, skipping surface", slog.String("path", path))
		return nil
	}
	if checksum.BlobSHA(updated) == file.SHA {
		return nil
	}
	return s.store.Put(ctx, path, updated, file.SHA, message)
}

// putFile performs the read-modify-write dance for a single path: discover
// whether an overwrite marker is needed, skip when content is unchanged,
// then write.
func (s *Service) putFile(ctx context.Context, path string, content []byte, message string) error {
	var sha string
	existing, err := s.store.Get(ctx, path)
	switch {
	case err == nil:
		if existing.SHA == checksum.BlobSHA(content) {
			return nil
		}
		sha = existing.SHA
	case errors.Is(err, apperr.ErrNotFound):
	default:
		return fmt.Errorf("probe %s: %w", path, err)
	}
	return s.store.Put(ctx, path, content, sha, message)
}

// putConditional writes with the version marker captured when the file was
// read, so a concurrent registry update fails instead of being clobbered.
func (s *Service) putConditional(ctx context.Context, path string, content []byte, sha, message string) error {
	if sha != "" && sha == checksum.BlobSHA(content) {
		return nil
	}
	return s.store.Put(ctx, path, content, sha, message)
}
