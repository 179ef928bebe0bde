package site

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/balaraja1/katie-kormanik/internal/apperr"
)

// SurfacePolicy says what a missing insertion point means for a surface.
type SurfacePolicy int

const (
	// SurfaceRequired fails the publish when the container is absent.
	SurfaceRequired SurfacePolicy = iota
	// SurfaceOptional silently skips the surface when the container is absent.
	SurfaceOptional
)

// Insertion points inside the hand-authored documents.
const (
	BlogIndexContainer  = "post-list"    // <ul class="post-list"> in blog.html
	RecentPostContainer = "recent-posts" // <div class="recent-posts"> in index.html
)

// Inject replaces the children of the first element carrying the given class
// with the provided markup and returns the re-serialized document. The
// second return value reports whether an injection happened; under
// SurfaceOptional a missing container returns the document unchanged.
func Inject(doc []byte, class, markup string, policy SurfacePolicy) ([]byte, bool, error) {
	root, err := html.Parse(bytes.NewReader(doc))
	if err != nil {
		return nil, false, fmt.Errorf("site: parse document: %w", err)
	}

	container := findByClass(root, class)
	if container == nil {
		if policy == SurfaceOptional {
			return doc, false, nil
		}
		return nil, false, fmt.Errorf("%w: no element with class %q", apperr.ErrMissingSurface, class)
	}

	fragment, err := parseFragment(markup, container)
	if err != nil {
		return nil, false, fmt.Errorf("site: parse generated markup: %w", err)
	}

	for container.FirstChild != nil {
		container.RemoveChild(container.FirstChild)
	}
	for _, n := range fragment {
		container.AppendChild(n)
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, root); err != nil {
		return nil, false, fmt.Errorf("site: render document: %w", err)
	}
	return buf.Bytes(), true, nil
}

func parseFragment(markup string, context *html.Node) ([]*html.Node, error) {
	ctx := &html.Node{
		Type:     html.ElementNode,
		Data:     context.Data,
		DataAtom: context.DataAtom,
	}
	return html.ParseFragment(strings.NewReader(markup), ctx)
}

func findByClass(n *html.Node, class string) *html.Node {
	if n.Type == html.ElementNode && hasClass(n, class) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByClass(c, class); found != nil {
			return found
		}
	}
	return nil
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}
