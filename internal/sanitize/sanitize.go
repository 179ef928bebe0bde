// Package sanitize reduces exported document HTML to a constrained
// allow-list of tags, attributes, and URL schemes. The transform is pure:
// the same input bytes always produce the same output bytes.
package sanitize

import (
	"bytes"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// allowedTags is the set of elements kept in sanitized content. Anything
// else is unwrapped (children survive, the element does not).
var allowedTags = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "li": true,
	"table": true, "thead": true, "tbody": true, "tr": true, "th": true, "td": true,
	"b": true, "strong": true, "i": true, "em": true, "u": true, "s": true,
	"sub": true, "sup": true, "span": true,
	"a": true, "img": true, "br": true, "hr": true,
	"blockquote": true, "pre": true, "code": true,
	"figure": true, "figcaption": true,
}

// dropTags are removed together with their entire subtree.
var dropTags = map[string]bool{
	"script": true, "style": true, "head": true, "title": true,
	"meta": true, "link": true, "iframe": true, "object": true, "embed": true,
}

// allowedAttrs maps tag -> attribute allow-list.
var allowedAttrs = map[string]map[string]bool{
	"a":   {"href": true},
	"img": {"src": true, "alt": true},
	"th":  {"colspan": true, "rowspan": true},
	"td":  {"colspan": true, "rowspan": true},
}

// HTML sanitizes a full exported HTML document and returns the cleaned
// inner body markup.
func HTML(input []byte) ([]byte, error) {
	body, err := ParseBody(bytes.NewReader(input))
	if err != nil {
		return nil, err
	}
	Clean(body)
	return RenderBody(body)
}

// ParseBody parses an HTML document and returns its body node.
func ParseBody(r io.Reader) (*html.Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	if body := findElement(doc, "body"); body != nil {
		return body, nil
	}
	return doc, nil
}

// Clean sanitizes the subtree rooted at n in place.
func Clean(n *html.Node) {
	cleanChildren(n)
}

// RenderBody serializes the children of body, i.e. the inner HTML.
func RenderBody(body *html.Node) ([]byte, error) {
	var buf bytes.Buffer
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func cleanChildren(n *html.Node) {
	c := n.FirstChild
	for c != nil {
		next := c.NextSibling
		cleanNode(n, c)
		c = next
	}
}

func cleanNode(parent, n *html.Node) {
	switch n.Type {
	case html.CommentNode, html.DoctypeNode:
		parent.RemoveChild(n)
	case html.ElementNode:
		name := strings.ToLower(n.Data)
		if dropTags[name] {
			parent.RemoveChild(n)
			return
		}
		if !allowedTags[name] {
			unwrap(parent, n)
			return
		}
		if name == "a" {
			cleanAnchor(n)
		}
		filterAttrs(n)
		cleanChildren(n)
	}
}

// unwrap lifts n's children into its place, sanitizing each as it moves.
func unwrap(parent, n *html.Node) {
	for n.FirstChild != nil {
		c := n.FirstChild
		n.RemoveChild(c)
		parent.InsertBefore(c, n)
		cleanNode(parent, c)
	}
	parent.RemoveChild(n)
}

// cleanAnchor enforces the scheme policy on a link. Links with a disallowed
// scheme become inert spans; absolute http/https links are forced to open in
// a new tab with rel protection.
func cleanAnchor(n *html.Node) {
	href := attrValue(n, "href")
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		demoteToSpan(n)
		return
	}
	switch strings.ToLower(u.Scheme) {
	case "":
		// Relative link, leave as-is.
	case "mailto":
	case "http", "https":
		setAttr(n, "target", "_blank")
		setAttr(n, "rel", "noopener noreferrer")
	default:
		demoteToSpan(n)
	}
}

func demoteToSpan(n *html.Node) {
	n.Data = "span"
	n.DataAtom = atom.Span
	n.Attr = nil
}

func filterAttrs(n *html.Node) {
	name := strings.ToLower(n.Data)
	allowed := allowedAttrs[name]
	kept := n.Attr[:0:0]
	for _, a := range n.Attr {
		key := strings.ToLower(a.Key)
		switch {
		case allowed != nil && allowed[key]:
			kept = append(kept, a)
		case name == "a" && (key == "target" || key == "rel"):
			kept = append(kept, a)
		}
	}
	n.Attr = kept
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}
