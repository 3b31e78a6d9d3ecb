// Package googlebooks provides a rate-limited client for the Google Books
// volumes API, normalizing provider responses into ExternalBook records.
package googlebooks

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/ratelimit"
)

const (
	// Rate limit: 5 requests per second, burst of 5, per endpoint class.
	defaultRPS   = 5.0
	defaultBurst = 5

	// HTTP client settings
	defaultTimeout = 30 * time.Second

	// API settings
	defaultMaxResults = 20
	maxMaxResults     = 40 // provider hard limit
)

// Rate limiter keys, one bucket per endpoint class.
const (
	limiterKeySearch = "search"
	limiterKeyVolume = "volume"
)

// Client is a rate-limited Google Books API client.
type Client struct {
	http    *http.Client
	limiter *ratelimit.KeyedRateLimiter
	baseURL string
	apiKey  string
	logger  *slog.Logger
}

// New creates a new Google Books client. apiKey may be empty; unauthenticated
// requests work at lower quotas.
func New(baseURL, apiKey string, logger *slog.Logger) *Client {
	return &Client{
		http: &http.Client{
			Timeout: defaultTimeout,
		},
		limiter: ratelimit.New(defaultRPS, defaultBurst),
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		logger:  logger,
	}
}

// Close releases resources held by the client.
func (c *Client) Close() {
	c.limiter.Stop()
}

// Search queries the provider for volumes matching query.
// maxResults is clamped to the provider limit; zero or negative uses the default.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]ExternalBook, error) {
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	if maxResults > maxMaxResults {
		maxResults = maxMaxResults
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", fmt.Sprintf("%d", maxResults))
	params.Set("printType", "books")

	body, err := c.doRequest(ctx, limiterKeySearch, "/volumes", params)
	if err != nil {
		return nil, wrapError("search", query, err)
	}

	var list rawVolumeList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, wrapError("search", query, fmt.Errorf("%w: %v", ErrMalformed, err))
	}

	c.logger.Debug("google books search",
		"query", query,
		"total_items", list.TotalItems,
	)

	books := make([]ExternalBook, 0, len(list.Items))
	for _, item := range list.Items {
		books = append(books, parseVolume(item))
	}
	return books, nil
}

// LookupByISBN fetches the volume matching an ISBN. Hyphens and spaces in
// the ISBN are stripped before the query. Returns ErrNotFound when the
// provider has no matching volume.
func (c *Client) LookupByISBN(ctx context.Context, isbn string) (*ExternalBook, error) {
	normalized := NormalizeISBN(isbn)
	if normalized == "" {
		return nil, wrapError("lookupISBN", isbn, ErrBadRequest)
	}

	params := url.Values{}
	params.Set("q", "isbn:"+normalized)

	body, err := c.doRequest(ctx, limiterKeyVolume, "/volumes", params)
	if err != nil {
		return nil, wrapError("lookupISBN", normalized, err)
	}

	var list rawVolumeList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, wrapError("lookupISBN", normalized, fmt.Errorf("%w: %v", ErrMalformed, err))
	}

	if list.TotalItems == 0 || len(list.Items) == 0 {
		return nil, wrapError("lookupISBN", normalized, ErrNotFound)
	}

	// First item is the best match.
	book := parseVolume(list.Items[0])
	return &book, nil
}

// LookupByID fetches a single volume by its provider id.
// Returns ErrNotFound when the provider reports no such volume.
func (c *Client) LookupByID(ctx context.Context, id string) (*ExternalBook, error) {
	if id == "" {
		return nil, wrapError("lookupID", id, ErrBadRequest)
	}

	body, err := c.doRequest(ctx, limiterKeyVolume, "/volumes/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, wrapError("lookupID", id, err)
	}

	var raw rawVolume
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, wrapError("lookupID", id, fmt.Errorf("%w: %v", ErrMalformed, err))
	}
	if raw.ID == "" {
		// A by-id response without an id is not a usable volume.
		return nil, wrapError("lookupID", id, ErrMalformed)
	}

	book := parseVolume(raw)
	return &book, nil
}

// NormalizeISBN strips hyphens and spaces from an ISBN.
func NormalizeISBN(isbn string) string {
	normalized := strings.ReplaceAll(isbn, "-", "")
	normalized = strings.ReplaceAll(normalized, " ", "")
	return normalized
}

// doRequest executes an HTTP request with rate limiting.
func (c *Client) doRequest(ctx context.Context, limiterKey, path string, query url.Values) ([]byte, error) {
	// Wait for rate limit
	if err := c.limiter.Wait(ctx, limiterKey); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	requestURL := c.baseURL + path
	if c.apiKey != "" {
		if query == nil {
			query = url.Values{}
		}
		query.Set("key", c.apiKey)
	}
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("google books request", "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		return nil, ErrNotFound
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case http.StatusBadRequest:
		return nil, ErrBadRequest
	default:
		if resp.StatusCode >= 500 {
			return nil, ErrServer
		}
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
}
