// Package fetch provides the rate-limited HTTP client shared by both
// upstream API fetchers. It is the only component in the pipeline that
// performs network I/O; callers own the cache.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxAttempts bounds retries on transient failures.
	DefaultMaxAttempts = 3

	// DefaultBackoffBase is the first retry delay; each subsequent delay
	// is multiplied by DefaultBackoffMultiplier.
	DefaultBackoffBase       = 1 * time.Second
	DefaultBackoffMultiplier = 2.0
)

// Channel is a rate-limited channel to one upstream API. Requests
// through a channel are serialized by a minimum inter-request interval;
// independent channels may run concurrently since the upstream APIs
// share no state.
type Channel struct {
	name        string
	httpClient  *http.Client
	limiter     *rate.Limiter
	maxAttempts int
	backoffBase time.Duration
	backoffMult float64
	headers     map[string]string

	// sleep is swapped out in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures a Channel.
type Option func(*Channel)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Channel) {
		c.httpClient = hc
	}
}

// WithHeader adds a header to every request on this channel (API keys,
// the Crossref polite-pool mailto User-Agent).
func WithHeader(key, value string) Option {
	return func(c *Channel) {
		c.headers[key] = value
	}
}

// WithRetry configures the retry bound and exponential backoff.
func WithRetry(maxAttempts int, base time.Duration, multiplier float64) Option {
	return func(c *Channel) {
		if maxAttempts >= 1 {
			c.maxAttempts = maxAttempts
		}
		if base > 0 {
			c.backoffBase = base
		}
		if multiplier > 0 {
			c.backoffMult = multiplier
		}
	}
}

// NewChannel creates a channel named for its upstream API, enforcing at
// least minInterval between consecutive requests.
func NewChannel(name string, minInterval time.Duration, opts ...Option) *Channel {
	c := &Channel{
		name:        name,
		httpClient:  &http.Client{Timeout: DefaultTimeout},
		limiter:     rate.NewLimiter(rate.Every(minInterval), 1),
		maxAttempts: DefaultMaxAttempts,
		backoffBase: DefaultBackoffBase,
		backoffMult: DefaultBackoffMultiplier,
		headers:     make(map[string]string),
		sleep:       sleepContext,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Name returns the upstream API name this channel talks to.
func (c *Channel) Name() string {
	return c.name
}

// Get performs a rate-limited GET and returns the raw response payload.
// Transient failures (timeouts, 5xx, 429) are retried with exponential
// backoff up to the configured attempt bound; permanent failures return
// immediately. The caller is responsible for caching the payload.
func (c *Channel) Get(ctx context.Context, rawURL string, params url.Values) ([]byte, error) {
	reqURL := rawURL
	if len(params) > 0 {
		reqURL = rawURL + "?" + params.Encode()
	}

	var lastErr error
	delay := c.backoffBase

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
			delay = time.Duration(float64(delay) * c.backoffMult)
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		payload, err := c.do(ctx, reqURL)
		if err == nil {
			return payload, nil
		}
		if !IsTransient(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("%s: %w after %d attempts: %w", c.name, ErrRetriesExhausted, c.maxAttempts, lastErr)
}

// do performs a single HTTP attempt.
func (c *Channel) do(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(c.name, resp); err != nil {
		return nil, err
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrNetworkError, err)
	}
	return payload, nil
}

// checkStatus maps an HTTP status to the error taxonomy.
func checkStatus(api string, resp *http.Response) error {
	switch {
	case resp.StatusCode < 400:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", api, ErrNotFound)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%s: %w: status %d", api, ErrAuthError, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%s: %w", api, ErrRateLimited)
	default:
		return &APIError{
			API:        api,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("HTTP %d", resp.StatusCode),
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
