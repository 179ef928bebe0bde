// Package importer rebuilds the post registry by scraping the hand-authored
// blog index page. It exists for the one-time migration of a site that
// predates data/posts.json and is never part of the publish flow.
package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/balaraja1/katie-kormanik/internal/apperr"
	"github.com/balaraja1/katie-kormanik/internal/models"
	"github.com/balaraja1/katie-kormanik/internal/publisher"
	"github.com/balaraja1/katie-kormanik/internal/sanitize"
	"github.com/balaraja1/katie-kormanik/internal/storage"
)

// Run scrapes blog.html into Post records and writes them to
// data/posts.json, replacing whatever registry exists. Excerpts are
// recovered from each post page's first paragraph when the page is
// readable; a missing page only costs the excerpt.
func Run(ctx context.Context, store storage.Provider) ([]models.Post, error) {
	index, err := store.Get(ctx, publisher.BlogIndexPath)
	if err != nil {
		return nil, fmt.Errorf("importer: load %s: %w", publisher.BlogIndexPath, err)
	}

	posts, err := ScrapeIndex(index.Content)
	if err != nil {
		return nil, err
	}

	for i := range posts {
		posts[i].Excerpt = scrapeExcerpt(ctx, store, posts[i].Slug)
	}

	registry, err := json.MarshalIndent(posts, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("importer: encode registry: %w", err)
	}
	registry = append(registry, '\n')

	var sha string
	switch existing, err := store.Get(ctx, publisher.RegistryPath); {
	case err == nil:
		sha = existing.SHA
	case errors.Is(err, apperr.ErrNotFound):
	default:
		return nil, fmt.Errorf("importer: probe registry: %w", err)
	}
	if err := store.Put(ctx, publisher.RegistryPath, registry, sha, "Import post registry from blog index"); err != nil {
		return nil, err
	}

	slog.Info("registry imported", slog.Int("posts", len(posts)))
	return posts, nil
}

// ScrapeIndex parses the blog index document's post list into records,
// keeping document order (the list is already newest-first).
func ScrapeIndex(doc []byte) ([]models.Post, error) {
	root, err := html.Parse(bytes.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("importer: parse index: %w", err)
	}
	list := findByClass(root, "post-list")
	if list == nil {
		return nil, fmt.Errorf("importer: %w: no element with class %q", apperr.ErrMissingSurface, "post-list")
	}

	var posts []models.Post
	for li := list.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}
		p, ok := scrapeItem(li)
		if !ok {
			continue
		}
		posts = append(posts, p)
	}
	return posts, nil
}

func scrapeItem(li *html.Node) (models.Post, bool) {
	anchor := findTag(li, "a")
	if anchor == nil {
		return models.Post{}, false
	}
	href := attrValue(anchor, "href")
	slug := slugFromHref(href)
	if slug == "" {
		return models.Post{}, false
	}

	p := models.Post{
		Title: strings.TrimSpace(textOf(anchor)),
		Slug:  slug,
	}
	if span := findByClass(li, "post-date"); span != nil {
		p.DateDisplay = strings.TrimSpace(textOf(span))
		if t, err := time.Parse(models.DisplayDateFormat, p.DateDisplay); err == nil {
			p.DateISO = t.UTC().Format(time.RFC3339)
		}
	}
	return p, true
}

// slugFromHref turns "blog/<slug>.html" (or "./<slug>.html") into the slug.
func slugFromHref(href string) string {
	href = strings.TrimPrefix(href, "./")
	href = strings.TrimPrefix(href, "blog/")
	if !strings.HasSuffix(href, ".html") || strings.Contains(href, "/") {
		return ""
	}
	return strings.TrimSuffix(href, ".html")
}

// scrapeExcerpt recovers a post's excerpt from its committed page.
func scrapeExcerpt(ctx context.Context, store storage.Provider, slug string) string {
	page, err := store.Get(ctx, "blog/"+slug+".html")
	if err != nil {
		return ""
	}
	body, err := sanitize.ParseBody(bytes.NewReader(page.Content))
	if err != nil {
		return ""
	}
	if content := findByClass(body, "post-content"); content != nil {
		return publisher.Excerpt(content)
	}
	return publisher.Excerpt(body)
}

func findTag(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findTag(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func findByClass(n *html.Node, class string) *html.Node {
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Key == "class" {
				for _, c := range strings.Fields(a.Val) {
					if c == class {
						return n
					}
				}
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByClass(c, class); found != nil {
			return found
		}
	}
	return nil
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
