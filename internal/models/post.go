// Package models defines the domain types for the blog publisher.
package models

import (
	"sort"
	"strings"
	"time"
)

// DisplayDateFormat is the long-form date shown on post pages and indexes.
const DisplayDateFormat = "January 02, 2006"

// FallbackSlug is used when slug normalization produces an empty result.
const FallbackSlug = "post"

// Post is one entry in the persisted registry (data/posts.json).
type Post struct {
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	DateISO     string `json:"dateISO"`
	DateDisplay string `json:"dateDisplay"`
	Excerpt     string `json:"excerpt"`
}

// Slugify normalizes a title into a URL-safe slug: lowercase, runs of
// non-alphanumeric characters collapsed to a single hyphen, leading and
// trailing hyphens trimmed. An empty result falls back to FallbackSlug.
// Slugify is idempotent: a normalized slug maps to itself.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	pending := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pending && b.Len() > 0 {
				b.WriteByte('-')
			}
			pending = false
			b.WriteRune(r)
		default:
			pending = true
		}
	}
	if b.Len() == 0 {
		return FallbackSlug
	}
	return b.String()
}

// Upsert replaces any existing record with the same slug and keeps the
// collection sorted descending by DateISO. Publishing the same slug twice
// leaves exactly one record, with the later publish's fields.
func Upsert(posts []Post, p Post) []Post {
	out := posts[:0:0]
	for _, existing := range posts {
		if existing.Slug != p.Slug {
			out = append(out, existing)
		}
	}
	out = append(out, p)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DateISO > out[j].DateISO
	})
	return out
}

// DisplayDate renders a timestamp in the long form used across the site.
func DisplayDate(t time.Time) string {
	return t.Format(DisplayDateFormat)
}
