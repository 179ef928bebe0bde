package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/balaraja1/katie-kormanik/internal/apperr"
)

// DefaultAPIURL is the GitHub REST API root.
const DefaultAPIURL = "https://api.github.com"

// GitHub implements Provider over the GitHub contents API.
type GitHub struct {
	apiURL     string
	httpClient *http.Client
	token      string
	owner      string
	repo       string
	branch     string
}

// GitHubOption configures a GitHub provider.
type GitHubOption func(*GitHub)

// WithAPIURL overrides the API root (used by tests).
func WithAPIURL(u string) GitHubOption {
	return func(g *GitHub) { g.apiURL = u }
}

// WithGitHubHTTPClient overrides the underlying HTTP client.
func WithGitHubHTTPClient(h *http.Client) GitHubOption {
	return func(g *GitHub) { g.httpClient = h }
}

// NewGitHub creates a provider committing to ownerRepo ("owner/repo") on the
// given branch with token authentication.
func NewGitHub(token, ownerRepo, branch string, opts ...GitHubOption) (*GitHub, error) {
	owner, repo, ok := strings.Cut(ownerRepo, "/")
	if !ok || owner == "" || repo == "" {
		return nil, fmt.Errorf("storage: repo must be owner/repo, got %q", ownerRepo)
	}
	if token == "" {
		return nil, fmt.Errorf("storage: github token is required")
	}
	g := &GitHub{
		apiURL:     DefaultAPIURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		token:      token,
		owner:      owner,
		repo:       repo,
		branch:     branch,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

type contentsResponse struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
	SHA      string `json:"sha"`
}

// Get fetches path from the contents API and decodes its base64 payload.
func (g *GitHub) Get(ctx context.Context, path string) (*File, error) {
	endpoint := g.contentsURL(path) + "?ref=" + url.QueryEscape(g.branch)
	req, err := g.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("storage: get %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, apperr.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, &apperr.CommitError{Path: path, Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var payload contentsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("storage: decode %s: %w", path, err)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(payload.Content, "\n", ""))
	if err != nil {
		return nil, fmt.Errorf("storage: decode content of %s: %w", path, err)
	}
	return &File{Content: raw, SHA: payload.SHA}, nil
}

// Put writes path through the contents API. An empty sha creates the file;
// a non-empty sha performs a conditional overwrite.
func (g *GitHub) Put(ctx context.Context, path string, content []byte, sha, message string) error {
	body := map[string]string{
		"message": message,
		"content": base64.StdEncoding.EncodeToString(content),
		"branch":  g.branch,
	}
	if sha != "" {
		body["sha"] = sha
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("storage: encode put %s: %w", path, err)
	}
	req, err := g.newRequest(ctx, http.MethodPut, g.contentsURL(path), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("storage: put %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return &apperr.CommitError{Path: path, Status: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}
	return nil
}

func (g *GitHub) contentsURL(path string) string {
	escaped := make([]string, 0, 4)
	for _, seg := range strings.Split(strings.Trim(path, "/"), "/") {
		escaped = append(escaped, url.PathEscape(seg))
	}
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s", g.apiURL, g.owner, g.repo, strings.Join(escaped, "/"))
}

func (g *GitHub) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("storage: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("User-Agent", "katie-kormanik-publisher/1.0")
	return req, nil
}
