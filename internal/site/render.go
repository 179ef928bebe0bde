// Package site renders post pages and regenerates the listing surfaces
// embedded in the hand-authored site documents.
package site

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/balaraja1/katie-kormanik/internal/models"
)

// SiteName appears in page titles and chrome.
const SiteName = "Katie Kormanik"

// RecentPostCount is how many posts the homepage surface shows.
const RecentPostCount = 3

var postPageTmpl = template.Must(template.New("post").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <title>{{.Title}} - ` + SiteName + `</title>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <link rel="stylesheet" href="../styles.css">
    <link rel="preconnect" href="https://fonts.googleapis.com">
    <link rel="preconnect" href="https://fonts.gstatic.com" crossorigin>
    <link href="https://fonts.googleapis.com/css2?family=Playfair+Display:wght@400;500;600;700&family=Lora:wght@400;500;600&display=swap" rel="stylesheet">
</head>
<body>
    <header class="header">
        <div class="container">
            <h1 class="logo"><a href="../index.html">KATIE KORMANIK</a></h1>
            <nav class="nav">
                <a href="../learn.html">Learn</a>
                <a href="../blog.html">Blog</a>
                <a href="https://www.linkedin.com/in/katiekormanik/" target="_blank">About</a>
            </nav>
        </div>
    </header>
    <section class="hero">
        <div class="container">
            <h2 class="hero-title">{{.Title}}</h2>
            <p class="hero-subtitle">{{.Date}}</p>
            <div class="underline"></div>
        </div>
    </section>
    <main class="main-content">
        <div class="container">
            <article class="post-card">
                <div class="post-content">{{.Content}}</div>
            </article>
        </div>
    </main>
    <footer class="footer">
        <div class="container">
            <p>&copy; 2025 Katie Kormanik. All rights reserved.</p>
        </div>
    </footer>
</body>
</html>
`))

var indexItemTmpl = template.Must(template.New("item").Parse(
	`<li class="post-list-item"><a href="blog/{{.Slug}}.html">{{.Title}}</a><span class="post-date">{{.DateDisplay}}</span></li>`))

var recentCardTmpl = template.Must(template.New("card").Parse(
	`<article class="post-card"><h3 class="post-title"><a href="blog/{{.Slug}}.html">{{.Title}}</a></h3><p class="post-date">{{.DateDisplay}}</p><p class="post-excerpt">{{.Excerpt}}</p></article>`))

// RenderPostPage wraps sanitized post content in the site's page template.
// content must already be sanitized; it is embedded verbatim.
func RenderPostPage(title, dateDisplay string, content []byte) ([]byte, error) {
	var buf bytes.Buffer
	err := postPageTmpl.Execute(&buf, struct {
		Title   string
		Date    string
		Content template.HTML
	}{Title: title, Date: dateDisplay, Content: template.HTML(content)})
	if err != nil {
		return nil, fmt.Errorf("site: render post page: %w", err)
	}
	return buf.Bytes(), nil
}

// BlogIndexItems renders the full post listing for the blog index surface.
func BlogIndexItems(posts []models.Post) (string, error) {
	var buf bytes.Buffer
	for _, p := range posts {
		if err := indexItemTmpl.Execute(&buf, p); err != nil {
			return "", fmt.Errorf("site: render index item %s: %w", p.Slug, err)
		}
		buf.WriteByte('\n')
	}
	return buf.String(), nil
}

// RecentPostCards renders the homepage's recent-posts surface, newest first.
func RecentPostCards(posts []models.Post) (string, error) {
	n := len(posts)
	if n > RecentPostCount {
		n = RecentPostCount
	}
	var buf bytes.Buffer
	for _, p := range posts[:n] {
		if err := recentCardTmpl.Execute(&buf, p); err != nil {
			return "", fmt.Errorf("site: render recent card %s: %w", p.Slug, err)
		}
		buf.WriteByte('\n')
	}
	return buf.String(), nil
}
