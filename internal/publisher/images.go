package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
)

// relocatedImage is an image blob ready to be committed alongside its post.
type relocatedImage struct {
	Path string // repository path images/blog/<slug>/<name>
	Data []byte
}

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

type fetchedImage struct {
	node        *html.Node
	src         string
	data        []byte
	contentType string
	err         error
}

// relocateImages downloads every image referenced by the sanitized content
// and rewrites its src to a path scoped to the post's slug. Downloads fan
// out concurrently; a failed fetch leaves the original reference untouched
// and never fails the publish.
func (s *Service) relocateImages(ctx context.Context, body *html.Node, slug string) []relocatedImage {
	fetched := s.fetchAll(ctx, collectImages(body))
	if len(fetched) == 0 {
		return nil
	}

	var out []relocatedImage
	taken := make(map[string]bool)
	counter := 1
	for _, img := range fetched {
		if img.err != nil {
			slog.Warn("image fetch failed, leaving original reference",
				slog.String("src", img.src),
				slog.String("error", img.err.Error()))
			continue
		}
		name := basenameFromURL(img.src)
		if name == "" {
			name = fmt.Sprintf("image-%d%s", counter, extFromContentType(img.contentType))
			counter++
		}
		name = uniqueName(taken, name)

		out = append(out, relocatedImage{
			Path: fmt.Sprintf("images/blog/%s/%s", slug, name),
			Data: img.data,
		})
		setSrc(img.node, fmt.Sprintf("../images/blog/%s/%s", slug, name))
	}
	return out
}

// fetchAll downloads all images concurrently, preserving document order in
// the returned slice. Individual errors are carried per entry.
func (s *Service) fetchAll(ctx context.Context, nodes []*html.Node) []fetchedImage {
	fetched := make([]fetchedImage, len(nodes))
	g, gctx := errgroup.WithContext(ctx)
	for i, n := range nodes {
		fetched[i] = fetchedImage{node: n, src: srcOf(n)}
		i := i
		g.Go(func() error {
			f := &fetched[i]
			if f.src == "" {
				f.err = fmt.Errorf("empty src")
				return nil
			}
			f.data, f.contentType, f.err = s.docs.FetchBlob(gctx, f.src)
			return nil
		})
	}
	_ = g.Wait()
	return fetched
}

// basenameFromURL derives a local filename from the URL path when it carries
// a recognized image extension; "" otherwise.
func basenameFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	base := path.Base(u.Path)
	ext := strings.ToLower(path.Ext(base))
	if !imageExts[ext] {
		return ""
	}
	cleaned := strings.Trim(unsafeFilenameChars.ReplaceAllString(base, "-"), "-")
	if cleaned == "" || strings.TrimSuffix(cleaned, ext) == "" {
		return ""
	}
	return cleaned
}

func extFromContentType(ctype string) string {
	ctype = strings.ToLower(strings.TrimSpace(strings.SplitN(ctype, ";", 2)[0]))
	switch ctype {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}

// uniqueName reserves name within the post's image folder, appending -2, -3,
// ... before the extension on collision.
func uniqueName(taken map[string]bool, name string) string {
	if !taken[name] {
		taken[name] = true
		return name
	}
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d%s", base, i, ext)
		if !taken[candidate] {
			taken[candidate] = true
			return candidate
		}
	}
}

func collectImages(n *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "img" {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func srcOf(n *html.Node) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, "src") {
			return a.Val
		}
	}
	return ""
}

func setSrc(n *html.Node, val string) {
	for i, a := range n.Attr {
		if strings.EqualFold(a.Key, "src") {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: "src", Val: val})
}
