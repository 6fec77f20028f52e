// Package transport is the HTTP client shared by the embedding and LLM
// adapters. It sends JSON requests with rate limiting and retries failed
// calls with exponential backoff.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/secondbrain-labs/brain/internal/logger"
)

// Default configuration values.
const (
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
	DefaultBackoff    = 200 * time.Millisecond
	DefaultMaxBackoff = 5 * time.Second
)

// maxErrorBody bounds how much of a failed response is kept in errors.
const maxErrorBody = 512

// Config configures a Client.
type Config struct {
	// Name labels errors and log lines, e.g. "ollama".
	Name string

	// Timeout bounds each attempt (default: 30s).
	Timeout time.Duration

	// MaxRetries is how many times a retryable failure is retried.
	// Negative disables retries.
	MaxRetries int

	// Backoff is the delay before the first retry; it doubles per attempt
	// up to MaxBackoff.
	Backoff    time.Duration
	MaxBackoff time.Duration

	// RateLimit throttles outgoing requests.
	RateLimit RateLimitConfig

	// Unavailable is wrapped into every error the client returns so callers
	// can classify failures, e.g. domain.ErrLLMUnavailable.
	Unavailable error
}

// StatusError is returned for a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("status %d", e.StatusCode)
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the request may succeed if sent again.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Client sends JSON requests to a single backend.
type Client struct {
	http        *http.Client
	limiter     *RateLimiter
	name        string
	maxRetries  int
	backoff     time.Duration
	maxBackoff  time.Duration
	unavailable error
}

// New creates a client, filling zero values from the defaults.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = DefaultBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = DefaultMaxBackoff
	}
	if cfg.Name == "" {
		cfg.Name = "http"
	}

	return &Client{
		http:        &http.Client{Timeout: cfg.Timeout},
		limiter:     NewRateLimiter(cfg.RateLimit),
		name:        cfg.Name,
		maxRetries:  cfg.MaxRetries,
		backoff:     cfg.Backoff,
		maxBackoff:  cfg.MaxBackoff,
		unavailable: cfg.Unavailable,
	}
}

// PostJSON marshals in, posts it to url and decodes the response into out.
// Transport errors, 429 and 5xx responses are retried.
func (c *Client) PostJSON(ctx context.Context, url string, headers map[string]string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: marshal request: %w", c.name, err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.delay(attempt, lastErr)
			logger.Debug("%s: retrying in %s (attempt %d/%d): %v", c.name, delay, attempt, c.maxRetries, lastErr)
			if err := sleep(ctx, delay); err != nil {
				return c.fail(err)
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return c.fail(err)
		}

		lastErr = c.post(ctx, url, headers, body, out)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return c.fail(ctx.Err())
		}
		if !retryable(lastErr) {
			return c.fail(lastErr)
		}

		var se *StatusError
		if errors.As(lastErr, &se) && se.StatusCode == http.StatusTooManyRequests {
			c.limiter.RecordRateLimit(se.RetryAfter)
		}
	}

	return c.fail(fmt.Errorf("giving up after %d attempts: %w", c.maxRetries+1, lastErr))
}

// Get sends a single GET request and discards the body. It is used for
// health checks and is never retried.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return c.fail(fmt.Errorf("create request: %w", err))
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return c.fail(fmt.Errorf("send request: %w", err))
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return c.fail(err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) post(ctx context.Context, url string, headers map[string]string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &netError{err: fmt.Errorf("send request: %w", err)}
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) delay(attempt int, lastErr error) time.Duration {
	d := c.backoff << (attempt - 1)
	if d <= 0 || d > c.maxBackoff {
		d = c.maxBackoff
	}
	var se *StatusError
	if errors.As(lastErr, &se) && se.RetryAfter > d {
		d = se.RetryAfter
	}
	return d
}

func (c *Client) fail(err error) error {
	if c.unavailable == nil {
		return fmt.Errorf("%s: %w", c.name, err)
	}
	return fmt.Errorf("%w: %s: %w", c.unavailable, c.name, err)
}

// netError marks a failure to reach the server.
type netError struct{ err error }

func (e *netError) Error() string { return e.err.Error() }
func (e *netError) Unwrap() error { return e.err }

func retryable(err error) bool {
	var ne *netError
	if errors.As(err, &ne) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	return false
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		StatusCode: resp.StatusCode,
		Body:       string(bytes.TrimSpace(body)),
		RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
	}
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		return time.Until(t)
	}
	return 0
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
