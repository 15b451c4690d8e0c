// Package availability checks where a wanted book can currently be read or
// borrowed. Each source is scraped politely: requests are rate limited per
// source and results are cached so repeated checks inside the TTL window
// never leave the process.
package availability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexhouse-ua/shelfhelp-server/internal/ratelimit"
)

const (
	// Rate limit: 1 request per 2 seconds per source, burst of 1.
	defaultRPS   = 0.5
	defaultBurst = 1

	defaultTimeout = 20 * time.Second

	userAgent = "ShelfHelp/1.0"
)

// Client errors.
var (
	ErrNotFound    = errors.New("page not found")
	ErrRateLimited = errors.New("rate limited by source")
	ErrSource      = errors.New("source error")
)

// Client is a rate-limited HTTP fetcher shared by all scrape sources.
type Client struct {
	http    *http.Client
	limiter *ratelimit.KeyedRateLimiter
	logger  *slog.Logger
}

// ClientOptions tunes the client. Zero values use the defaults above.
type ClientOptions struct {
	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
}

// NewClient creates a scrape client.
func NewClient(logger *slog.Logger, opts ClientOptions) *Client {
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = defaultRPS
	}
	if opts.Burst <= 0 {
		opts.Burst = defaultBurst
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	return &Client{
		http: &http.Client{
			Timeout: opts.Timeout,
		},
		limiter: ratelimit.New(opts.RequestsPerSecond, opts.Burst),
		logger:  logger,
	}
}

// Fetch executes a rate-limited GET keyed by source name and returns the
// response body.
func (c *Client) Fetch(ctx context.Context, source, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx, source); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/html")
	req.Header.Set("User-Agent", userAgent)

	if c.logger != nil {
		c.logger.Debug("availability request", "source", source, "url", url)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode >= 500:
		return nil, ErrSource
	default:
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
}
