package publisher

import (
	"strings"

	"golang.org/x/net/html"
)

// ExcerptLimit is the maximum excerpt length including the ellipsis marker.
const ExcerptLimit = 220

const ellipsis = "..."

// Excerpt returns the text of the first non-empty paragraph, truncated to
// ExcerptLimit characters with an ellipsis when longer. No paragraph with
// text yields an empty string.
func Excerpt(body *html.Node) string {
	var found string
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "p" {
			if text := strings.TrimSpace(textContent(n)); text != "" {
				found = text
				return true
			}
			return false
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(body)

	runes := []rune(found)
	if len(runes) > ExcerptLimit {
		return string(runes[:ExcerptLimit-len(ellipsis)]) + ellipsis
	}
	return found
}

func textContent(n *html.Node) string {
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
