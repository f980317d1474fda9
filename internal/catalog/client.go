// Package catalog provides a rate-limited client for the Modrinth API.
// It is the single authority on which mods exist and what they support;
// the resolution chain treats its answers as ground truth.
package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/modsmith/modsmith-server/internal/ratelimit"
)

const (
	defaultBaseURL = "https://api.modrinth.com/v2"

	// Rate limit: the API allows 300 requests/minute; stay well under it.
	defaultInterval = 250 * time.Millisecond
	defaultBurst    = 3

	// HTTP client settings
	defaultTimeout = 10 * time.Second

	// API settings
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

// Client is a rate-limited Modrinth API client.
type Client struct {
	baseURL string
	http    *http.Client
	pacer   *ratelimit.Pacer
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL. Used by tests to point the
// client at an httptest server.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.baseURL = base
	}
}

// WithPacer overrides the request pacer.
func WithPacer(p *ratelimit.Pacer) Option {
	return func(c *Client) {
		c.pacer = p
	}
}

// WithTimeout overrides the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// New creates a new Modrinth client.
func New(logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: defaultTimeout,
		},
		pacer:  ratelimit.NewPacer(defaultInterval, defaultBurst),
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// doRequest executes an HTTP GET with rate limiting.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	// Wait for rate limit
	if err := c.pacer.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "ModSmith/1.0 (modsmith-server)")

	c.logger.Debug("catalog request", "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
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
