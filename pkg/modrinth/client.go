// Package modrinth provides access to the Modrinth v2 API: project
// search, build listing, and file downloads.
//
// Search and build-listing responses are cached through a pluggable
// cache backend; downloads never are. Transient failures (transport
// errors, 5xx responses) are retried with exponential backoff.
//
// Note: Modrinth requires a stable User-Agent identifying the client;
// requests without one risk throttling or blocking. This client sets it
// on every request.
package modrinth

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/modmill/modmill/pkg/cache"
	"github.com/modmill/modmill/pkg/errors"
	"github.com/modmill/modmill/pkg/httputil"
	"github.com/modmill/modmill/pkg/pack"
	"github.com/modmill/modmill/pkg/resolve"
)

const (
	// DefaultBaseURL is the production Modrinth API root.
	DefaultBaseURL = "https://api.modrinth.com/v2"

	userAgent = "modmill/1.0 (github.com/modmill/modmill)"

	// No registry call may hang forever; expiry surfaces as NETWORK_ERROR.
	httpTimeout = 10 * time.Second

	// DefaultSearchLimit caps search results when the caller passes 0.
	DefaultSearchLimit = 10
)

// Client is an HTTP client for the Modrinth API.
// It is safe for concurrent use by multiple goroutines.
type Client struct {
	http    *http.Client
	cache   cache.Cache
	ttl     time.Duration
	baseURL string
}

// NewClient creates a Modrinth client. Responses to read queries are
// cached in backend for ttl; pass cache.NewNullCache() to disable.
func NewClient(backend cache.Cache, ttl time.Duration) *Client {
	return &Client{
		http:    &http.Client{Timeout: httpTimeout},
		cache:   backend,
		ttl:     ttl,
		baseURL: DefaultBaseURL,
	}
}

var _ resolve.Lister = (*Client)(nil)

// Project is a search hit: a mod as listed in the registry, ranked by
// registry-defined relevance.
type Project struct {
	ProjectID   string `json:"project_id"`
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Downloads   int    `json:"downloads"`
}

// Ref converts a search hit into a pack reference.
func (p Project) Ref() pack.Ref {
	return pack.Ref{ProjectID: p.ProjectID, Slug: p.Slug, Title: p.Title}
}

type searchResponse struct {
	Hits []Project `json:"hits"`
}

// Search performs a free-text mod search restricted to projects that
// support the given game version and loader. Results are capped at limit
// (DefaultSearchLimit when 0) and ordered by registry relevance.
func (c *Client) Search(ctx context.Context, query, gameVersion string, loader pack.Loader, limit int) ([]Project, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	facets, err := json.Marshal([][]string{
		{"project_type:mod"},
		{"versions:" + gameVersion},
		{"categories:" + loader.String()},
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encoding search facets")
	}

	url := fmt.Sprintf("%s/search?query=%s&facets=%s&limit=%d",
		c.baseURL, queryEscape(query), queryEscape(string(facets)), limit)

	var resp searchResponse
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return nil, err
	}
	return resp.Hits, nil
}

type versionResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	VersionNumber string    `json:"version_number"`
	DatePublished time.Time `json:"date_published"`
	GameVersions  []string  `json:"game_versions"`
	Loaders       []string  `json:"loaders"`
	Files         []struct {
		Filename string `json:"filename"`
		Primary  bool   `json:"primary"`
		URL      string `json:"url"`
	} `json:"files"`
}

// ListBuilds lists the builds of a project that declare support for both
// gameVersion and loader. The filtering happens server-side via the
// loaders/game_versions query parameters, each a JSON-encoded
// single-element array. An empty list is a valid result and means the
// project has no build for the target.
//
// ListBuilds implements [resolve.Lister].
func (c *Client) ListBuilds(ctx context.Context, idOrSlug, gameVersion string, loader pack.Loader) ([]resolve.Build, error) {
	if err := errors.ValidateProjectID(idOrSlug); err != nil {
		return nil, err
	}

	loaders, _ := json.Marshal([]string{loader.String()})
	versions, _ := json.Marshal([]string{gameVersion})

	url := fmt.Sprintf("%s/project/%s/version?loaders=%s&game_versions=%s",
		c.baseURL, idOrSlug, queryEscape(string(loaders)), queryEscape(string(versions)))

	var resp []versionResponse
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return nil, err
	}

	builds := make([]resolve.Build, 0, len(resp))
	for _, v := range resp {
		b := resolve.Build{
			ID:            v.ID,
			Name:          v.Name,
			VersionNumber: v.VersionNumber,
			Published:     v.DatePublished,
			GameVersions:  v.GameVersions,
			Loaders:       v.Loaders,
		}
		for _, f := range v.Files {
			b.Files = append(b.Files, resolve.BuildFile{Name: f.Filename, Primary: f.Primary, URL: f.URL})
		}
		builds = append(builds, b)
	}
	return builds, nil
}

// Download fetches url and writes the body to dest, creating parent
// directories as needed. Downloads bypass the cache but share the read
// path's retry policy for transient failures. A failed download never
// leaves a file at dest.
func (c *Client) Download(ctx context.Context, url, dest string) error {
	if err := errors.ValidateURL(url); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "creating directory for %s", dest)
	}

	err := httputil.RetryWithBackoff(ctx, func() error {
		return c.fetchFile(ctx, url, dest)
	})
	return unwrapRetryable(err)
}

// fetchFile performs one download attempt. dest is created only after a
// success status, and truncated on each attempt, so a retried download
// never appends to a previous attempt's partial body.
func (c *Client) fetchFile(ctx context.Context, url, dest string) error {
	body, err := c.doRequest(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close()

	out, err := os.Create(dest)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "creating %s", dest)
	}
	defer out.Close()

	if _, err := io.Copy(out, body); err != nil {
		os.Remove(dest)
		return httputil.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "downloading %s", url))
	}
	return nil
}

// getJSON performs a cached GET, decoding the JSON response into v.
// Cache hits skip the network entirely; misses go through retry.
func (c *Client) getJSON(ctx context.Context, url string, v any) error {
	if data, hit, _ := c.cache.Get(ctx, url); hit {
		if err := json.Unmarshal(data, v); err == nil {
			return nil
		}
		// Undecodable entry: fall through to a fresh fetch.
	}

	var data []byte
	err := httputil.RetryWithBackoff(ctx, func() error {
		body, err := c.doRequest(ctx, url)
		if err != nil {
			return err
		}
		defer body.Close()
		data, err = io.ReadAll(body)
		if err != nil {
			return httputil.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "reading response from %s", url))
		}
		return nil
	})
	if err != nil {
		return unwrapRetryable(err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "decoding response from %s", url)
	}
	_ = c.cache.Set(ctx, url, data, c.ttl)
	return nil
}

func (c *Client) doRequest(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "building request for %s", url)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, httputil.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "requesting %s", url))
	}

	if err := checkStatus(resp.StatusCode, url); err != nil {
		resp.Body.Close()
		return nil, err
	}
	if resp.Body == nil {
		return nil, errors.New(errors.ErrCodeNetwork, "empty response body from %s", url)
	}
	return resp.Body, nil
}

func checkStatus(code int, url string) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "%s not found", url)
	case code >= 500:
		return httputil.Retryable(errors.New(errors.ErrCodeNetwork, "status %d from %s", code, url))
	default:
		return errors.New(errors.ErrCodeNetwork, "status %d from %s", code, url)
	}
}

// queryEscape percent-encodes a string for use in URLs.
func queryEscape(s string) string { return url.QueryEscape(s) }

// unwrapRetryable strips the retry marker so callers see the structured
// error underneath.
func unwrapRetryable(err error) error {
	var re *httputil.RetryableError
	if stderrors.As(err, &re) {
		return re.Err
	}
	return err
}
