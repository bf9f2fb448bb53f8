package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/time/rate"
)

// ErrNotFound is returned by a Retriever when a shard does not exist.
var ErrNotFound = errors.New("shard not found")

// Retriever loads the raw JSON array stored for one triple.
type Retriever interface {
	Retrieve(ctx context.Context, t Triple) ([]byte, error)
}

// IndexSource is implemented by retrievers that can also load the index.
type IndexSource interface {
	LoadIndex(ctx context.Context) (Index, error)
}

// DirRetriever reads shards from a catalog directory on disk.
type DirRetriever struct {
	Dir string
}

// Retrieve reads the shard file for t.
func (d DirRetriever) Retrieve(ctx context.Context, t Triple) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rel, err := ShardPath(t)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(d.Dir, rel))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, t)
	}
	return data, err
}

// LoadIndex reads index.json from the directory.
func (d DirRetriever) LoadIndex(ctx context.Context) (Index, error) {
	return ReadIndexFile(filepath.Join(d.Dir, "index.json"))
}

// HTTPRetriever fetches shards from a static host serving the catalog
// layout, pacing requests with a token bucket.
type HTTPRetriever struct {
	BaseURL    string
	HTTPClient *http.Client

	limiter *rate.Limiter
}

// NewHTTPRetriever creates a retriever allowing rps requests per second.
// rps <= 0 disables pacing.
func NewHTTPRetriever(baseURL string, rps float64) *HTTPRetriever {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &HTTPRetriever{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{},
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// ShardURL is the URL of t's shard, with each path segment percent-encoded.
func (h *HTTPRetriever) ShardURL(t Triple) string {
	return fmt.Sprintf("%s/%s/%s/%s.json", h.BaseURL,
		url.PathEscape(t.Vehicle), url.PathEscape(Key(t.Width)), url.PathEscape(Key(t.Offset)))
}

// Retrieve fetches t's shard.
func (h *HTTPRetriever) Retrieve(ctx context.Context, t Triple) ([]byte, error) {
	data, err := h.get(ctx, h.ShardURL(t))
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, t)
	}
	return data, err
}

// LoadIndex fetches index.json.
func (h *HTTPRetriever) LoadIndex(ctx context.Context) (Index, error) {
	data, err := h.get(ctx, h.BaseURL+"/index.json")
	if err != nil {
		return nil, err
	}
	return ReadIndex(bytes.NewReader(data))
}

func (h *HTTPRetriever) get(ctx context.Context, u string) ([]byte, error) {
	// A literal without NewHTTPRetriever is unpaced.
	if h.limiter != nil {
		if err := h.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	client := h.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", u, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
