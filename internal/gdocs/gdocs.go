// Package gdocs fetches Google Doc metadata, HTML exports, and doc-backed
// image blobs through the Drive v3 API, authenticating with a service
// account restricted to the read-only Drive scope.
package gdocs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/balaraja1/katie-kormanik/internal/apperr"
)

// ReadonlyScope is the only scope the publisher ever requests.
const ReadonlyScope = "https://www.googleapis.com/auth/drive.readonly"

// DefaultBaseURL is the Drive v3 API root.
const DefaultBaseURL = "https://www.googleapis.com/drive/v3"

var docIDPattern = regexp.MustCompile(`/document/d/([A-Za-z0-9_-]+)`)

// ParseDocURL extracts the document identifier from a Google Docs URL.
// It returns apperr.ErrBadInput when the URL does not carry the expected
// /document/d/<id> path segment.
func ParseDocURL(raw string) (string, error) {
	m := docIDPattern.FindStringSubmatch(raw)
	if m == nil {
		return "", fmt.Errorf("%w: not a Google Docs URL: %s", apperr.ErrBadInput, raw)
	}
	return m[1], nil
}

// DocMeta is the subset of file metadata the pipeline needs.
type DocMeta struct {
	Name        string
	CreatedTime time.Time
}

// Client talks to the Drive API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     oauth2.TokenSource
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the Drive API root (used by tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithTokenSource overrides the service-account token source (used by tests).
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// NewClient builds a Drive client from a service-account credential JSON
// blob. Tokens are short-lived and fetched on demand; nothing is persisted.
func NewClient(ctx context.Context, credentialsJSON []byte, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.tokens == nil {
		cfg, err := google.JWTConfigFromJSON(credentialsJSON, ReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("gdocs: parse service account credentials: %w", err)
		}
		c.tokens = cfg.TokenSource(ctx)
	}
	return c, nil
}

// Metadata fetches the document's name and creation time.
func (c *Client) Metadata(ctx context.Context, docID string) (*DocMeta, error) {
	endpoint := fmt.Sprintf("%s/files/%s?fields=%s", c.baseURL, url.PathEscape(docID), url.QueryEscape("name,createdTime"))
	body, err := c.get(ctx, "metadata", endpoint)
	if err != nil {
		return nil, err
	}
	var payload struct {
		Name        string `json:"name"`
		CreatedTime string `json:"createdTime"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("gdocs: decode metadata: %w", err)
	}
	meta := &DocMeta{Name: payload.Name}
	if payload.CreatedTime != "" {
		if t, err := time.Parse(time.RFC3339, payload.CreatedTime); err == nil {
			meta.CreatedTime = t
		}
	}
	return meta, nil
}

// ExportHTML fetches the document body rendered as HTML.
func (c *Client) ExportHTML(ctx context.Context, docID string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/files/%s/export?mimeType=%s", c.baseURL, url.PathEscape(docID), url.QueryEscape("text/html"))
	return c.get(ctx, "export", endpoint)
}

// FetchBlob downloads an embedded image using the same access token the
// export used; doc-backed image URLs are not publicly reachable. It returns
// the raw bytes and the response content type.
func (c *Client) FetchBlob(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("gdocs: blob request: %w", err)
	}
	if err := c.authorize(req); err != nil {
		return nil, "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("gdocs: fetch blob: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", &apperr.UpstreamError{Op: "blob", Status: resp.StatusCode}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("gdocs: read blob: %w", err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func (c *Client) get(ctx context.Context, op, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("gdocs: %s request: %w", op, err)
	}
	if err := c.authorize(req); err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gdocs: %s: %w", op, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &apperr.UpstreamError{Op: op, Status: resp.StatusCode}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gdocs: read %s response: %w", op, err)
	}
	return data, nil
}

func (c *Client) authorize(req *http.Request) error {
	tok, err := c.tokens.Token()
	if err != nil {
		return fmt.Errorf("gdocs: obtain access token: %w", err)
	}
	tok.SetAuthHeader(req)
	return nil
}
