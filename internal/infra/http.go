package infra

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/seenimoa/fairvalue/pkg/logger"
)

// DefaultUserAgent is sent with every outbound request.
const DefaultUserAgent = "fairvalue/1.0 (+https://github.com/seenimoa/fairvalue)"

// ErrRateLimited is returned when the remote API answers 429 on every attempt.
var ErrRateLimited = errors.New("rate limited by data source")

// ErrHTTP wraps an HTTP error with status code.
type ErrHTTP struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Body)
}

// Unwrap maps 429 responses to ErrRateLimited.
func (e *ErrHTTP) Unwrap() error {
	if e.StatusCode == http.StatusTooManyRequests {
		return ErrRateLimited
	}
	return nil
}

// RetryConfig holds retry configuration for GET requests.
type RetryConfig struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// Client performs GET requests with retry on transient failures.
type Client struct {
	httpClient *http.Client
	retry      RetryConfig
	log        *logger.Logger
}

// NewClient creates a Client with the given timeout and retry policy.
func NewClient(timeout time.Duration, retry RetryConfig, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Nop()
	}
	retry.MaxRetries = max(retry.MaxRetries, 0)
	if retry.InitialDelay <= 0 {
		retry.InitialDelay = 500 * time.Millisecond
	}
	if retry.MaxDelay <= 0 {
		retry.MaxDelay = 8 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		retry:      retry,
		log:        log,
	}
}

var defaultClient = NewClient(30*time.Second, RetryConfig{MaxRetries: 2}, nil)

// DoGet performs a GET with the default client. The caller must close the
// returned body.
func DoGet(ctx context.Context, rawURL string, headers map[string]string) (io.ReadCloser, int, error) {
	return defaultClient.Get(ctx, rawURL, headers)
}

// Get performs a GET request, retrying network errors, 429 and 5xx
// responses with exponential backoff. Other 4xx responses fail at once.
func (c *Client) Get(ctx context.Context, rawURL string, headers map[string]string) (io.ReadCloser, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	delay := c.retry.InitialDelay
	var lastErr error
	var lastStatus int

	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			c.log.WithFields(map[string]interface{}{
				"url":     redact(rawURL),
				"attempt": attempt,
				"delay":   delay.String(),
			}).WithError(lastErr).Debug("retrying request")

			select {
			case <-ctx.Done():
				return nil, lastStatus, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			if delay > c.retry.MaxDelay {
				delay = c.retry.MaxDelay
			}
		}

		body, status, err := c.do(req)
		if err == nil {
			return body, status, nil
		}
		lastErr, lastStatus = err, status
		if !retryable(status, err) || ctx.Err() != nil {
			break
		}
	}
	return nil, lastStatus, lastErr
}

func (c *Client) do(req *http.Request) (io.ReadCloser, int, error) {
	rawURL := req.URL.String()
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("HTTP GET %s: %w", redact(rawURL), err)
	}

	c.log.WithFields(map[string]interface{}{
		"url":         redact(rawURL),
		"status_code": resp.StatusCode,
		"duration":    time.Since(start).String(),
	}).Debug("HTTP request completed")

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, resp.StatusCode, &ErrHTTP{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}

	return resp.Body, resp.StatusCode, nil
}

func retryable(status int, err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if status == 0 {
		return true // transport error
	}
	return status == http.StatusTooManyRequests || status >= 500
}

// redact strips query parameters that carry credentials.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	for _, k := range []string{"apikey", "api_key", "token"} {
		if q.Has(k) {
			q.Set(k, "***")
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}
