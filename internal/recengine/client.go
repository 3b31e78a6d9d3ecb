// Package recengine provides an HTTP client for the recommendation engine
// sidecar service.
package recengine

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Recommendation generation is embedding-backed and slow; the timeout is
// generous compared to the metadata client.
const defaultTimeout = 60 * time.Second

// Client talks to the recommendation engine over HTTP.
type Client struct {
	http    *http.Client
	baseURL string
	logger  *slog.Logger
}

// New creates a recommendation engine client.
func New(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		http: &http.Client{
			Timeout: defaultTimeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// engineError is the body the engine sends with non-2xx statuses.
type engineError struct {
	Detail string `json:"detail"`
}

// Recommend asks the engine for categorized recommendations.
// Engine-side unavailability (503) surfaces as ErrUnavailable with the
// engine's detail message preserved.
func (c *Client) Recommend(ctx context.Context, req RecommendRequest) (*RecommendResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, wrapError("recommend", fmt.Errorf("encode request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/recommend", bytes.NewReader(payload))
	if err != nil {
		return nil, wrapError("recommend", fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	c.logger.Debug("engine recommend request",
		"user_id", req.UserID,
		"history_len", len(req.History),
	)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, wrapError("recommend", fmt.Errorf("%w: %v", ErrUnavailable, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapError("recommend", fmt.Errorf("read response: %w", err))
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode == http.StatusServiceUnavailable:
		return nil, wrapError("recommend", fmt.Errorf("%w: %s", ErrUnavailable, engineDetail(body)))
	case resp.StatusCode == http.StatusBadRequest:
		return nil, wrapError("recommend", fmt.Errorf("%w: %s", ErrBadRequest, engineDetail(body)))
	case resp.StatusCode >= 500:
		return nil, wrapError("recommend", fmt.Errorf("%w: %s", ErrServer, engineDetail(body)))
	default:
		return nil, wrapError("recommend", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body)))
	}

	var result RecommendResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, wrapError("recommend", fmt.Errorf("%w: %v", ErrMalformed, err))
	}
	if result.Recommendations == nil {
		result.Recommendations = []Category{}
	}
	return &result, nil
}

// Health reports the engine's readiness. A degraded payload is returned as
// a status, not an error; transport failures surface as ErrUnavailable.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, wrapError("health", fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, wrapError("health", fmt.Errorf("%w: %v", ErrUnavailable, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapError("health", fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, wrapError("health", fmt.Errorf("%w: status %d", ErrServer, resp.StatusCode))
	}

	var status HealthStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, wrapError("health", fmt.Errorf("%w: %v", ErrMalformed, err))
	}
	return &status, nil
}

// engineDetail extracts the engine's detail message from an error body,
// falling back to the raw body when it is not the expected shape.
func engineDetail(body []byte) string {
	var e engineError
	if err := json.Unmarshal(body, &e); err == nil && e.Detail != "" {
		return e.Detail
	}
	return string(body)
}
