package models

import (
	"testing"
	"time"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"Hello,   World!!", "hello-world"},
		{"  --Already--Trimmed--  ", "already-trimmed"},
		{"UPPER case 123", "upper-case-123"},
		{"", "post"},
		{"   ", "post"},
		{"!!!", "post"},
		{"a", "a"},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSlugify_Idempotent(t *testing.T) {
	inputs := []string{"Hello World", "a--b__c", "Trailing-", "-Leading", "post"}
	for _, in := range inputs {
		once := Slugify(in)
		twice := Slugify(once)
		if once != twice {
			t.Errorf("Slugify not idempotent for %q: %q -> %q", in, once, twice)
		}
		if once == "" {
			t.Errorf("Slugify(%q) produced empty slug", in)
		}
	}
}

func TestUpsert_ReplacesBySlug(t *testing.T) {
	posts := []Post{
		{Slug: "a", Title: "A", DateISO: "2025-01-01T00:00:00Z"},
		{Slug: "b", Title: "B", DateISO: "2025-02-01T00:00:00Z"},
	}
	posts = Upsert(posts, Post{Slug: "a", Title: "A v2", DateISO: "2025-03-01T00:00:00Z"})
	if len(posts) != 2 {
		t.Fatalf("len = %d, want 2", len(posts))
	}
	if posts[0].Slug != "a" || posts[0].Title != "A v2" {
		t.Errorf("newest record = %+v, want replaced slug a first", posts[0])
	}
}

func TestUpsert_SortedDescending(t *testing.T) {
	var posts []Post
	posts = Upsert(posts, Post{Slug: "old", DateISO: "2024-01-01T00:00:00Z"})
	posts = Upsert(posts, Post{Slug: "new", DateISO: "2025-06-01T00:00:00Z"})
	posts = Upsert(posts, Post{Slug: "mid", DateISO: "2024-12-01T00:00:00Z"})
	want := []string{"new", "mid", "old"}
	for i, slug := range want {
		if posts[i].Slug != slug {
			t.Errorf("posts[%d].Slug = %q, want %q", i, posts[i].Slug, slug)
		}
	}
}

func TestUpsert_IdempotentBySlug(t *testing.T) {
	p := Post{Slug: "once", DateISO: "2025-01-01T00:00:00Z"}
	posts := Upsert(nil, p)
	posts = Upsert(posts, p)
	if len(posts) != 1 {
		t.Fatalf("len = %d, want 1", len(posts))
	}
}

func TestDisplayDate(t *testing.T) {
	d := time.Date(2025, time.March, 5, 10, 0, 0, 0, time.UTC)
	if got := DisplayDate(d); got != "March 05, 2025" {
		t.Errorf("DisplayDate = %q", got)
	}
}
