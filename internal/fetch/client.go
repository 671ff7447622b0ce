// Package fetch is the shared HTTP layer for source adapters: every
// request is spaced by the per-domain rate limiter and retried with
// bounded backoff on transient failures.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/javelin-media/javelin/internal/ratelimit"
	"github.com/javelin-media/javelin/internal/resilience"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// maxBodyBytes caps response reads; source pages are small.
const maxBodyBytes = 8 << 20

// StatusError is a non-retryable HTTP failure (e.g. 404, 403).
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %d from %s", e.Code, e.URL)
}

// Options configures the shared HTTP client.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	Retry     resilience.RetryConfig
}

// Client wraps net/http with per-domain rate limiting and retry. One
// Client is shared by all adapters so the limits apply process-wide.
type Client struct {
	http    *http.Client
	limiter *ratelimit.DomainLimiter
	opts    Options
}

// NewClient creates a Client spacing requests through limiter.
func NewClient(limiter *ratelimit.DomainLimiter, opts Options) *Client {
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	transport := &http.Transport{
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     20,
		IdleConnTimeout:     90 * time.Second,
	}
	return &Client{
		http: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		limiter: limiter,
		opts:    opts,
	}
}

// Get fetches rawURL and returns the response body. Transient failures
// (429, 5xx, network faults) are retried with backoff; a 429 Retry-After
// hint extends the backoff. Non-2xx statuses outside the transient set
// surface as *StatusError.
func (c *Client) Get(ctx context.Context, rawURL string, header http.Header) ([]byte, error) {
	return resilience.DoVal(ctx, c.opts.Retry, func(ctx context.Context) ([]byte, error) {
		return c.once(ctx, rawURL, header)
	})
}

// GetJSON fetches rawURL and decodes the body into v.
func (c *Client) GetJSON(ctx context.Context, rawURL string, v any) error {
	body, err := c.Get(ctx, rawURL, http.Header{"Accept": []string{"application/json"}})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return eris.Wrapf(err, "fetch: decode json from %s", rawURL)
	}
	return nil
}

func (c *Client) once(ctx context.Context, rawURL string, header http.Header) ([]byte, error) {
	waited, err := c.limiter.Acquire(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if waited > 0 {
		zap.L().Debug("request delayed by rate limiter",
			zap.String("url", rawURL),
			zap.Duration("waited", waited),
		)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: build request for %s", rawURL)
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, resilience.NewTransientError(eris.Wrapf(err, "fetch: get %s", rawURL), 0)
	}
	defer resp.Body.Close() //nolint:errcheck

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, resilience.NewRateLimitError(
			eris.Errorf("fetch: http 429 from %s", rawURL),
			parseRetryAfter(resp.Header.Get("Retry-After")),
		)
	case resilience.IsTransientHTTPStatus(resp.StatusCode):
		return nil, resilience.NewTransientError(
			eris.Errorf("fetch: http %d from %s", resp.StatusCode, rawURL),
			resp.StatusCode,
		)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &StatusError{Code: resp.StatusCode, URL: rawURL}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resilience.NewTransientError(eris.Wrapf(err, "fetch: read body from %s", rawURL), 0)
	}
	return body, nil
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
