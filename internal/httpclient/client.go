// Package httpclient talks to the console REST API.
package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/tidwall/gjson"
)

const (
	// DefaultTimeout is used when NewDefaultClient is given a zero timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxTries bounds the attempts of an idempotent request.
	DefaultMaxTries = 3

	// MaxResponseSize is the largest response body the client reads.
	MaxResponseSize = 100 * 1024 * 1024

	// maxErrorMessageSize caps the part of a non-JSON error body copied into an HTTPError.
	maxErrorMessageSize = 1024

	userAgent   = "dbcluster-console/1.0"
	contentType = "application/json"
)

// Client performs JSON requests against the console API.
type Client interface {
	// Get fetches url. Transport failures and 5xx responses are retried.
	Get(ctx context.Context, url string) ([]byte, error)
	// Put sends body to url once. It is never retried.
	Put(ctx context.Context, url string, body []byte) ([]byte, error)
}

// Option configures the default client.
type Option func(*DefaultClient)

// WithMaxTries sets how many times a GET is attempted. Values below 1 are ignored.
func WithMaxTries(tries uint) Option {
	return func(c *DefaultClient) {
		if tries > 0 {
			c.maxTries = tries
		}
	}
}

// WithInitialRetryInterval sets the first backoff interval between GET attempts.
func WithInitialRetryInterval(d time.Duration) Option {
	return func(c *DefaultClient) {
		if d > 0 {
			c.initialInterval = d
		}
	}
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *DefaultClient) {
		if hc != nil {
			c.client = hc
		}
	}
}

// DefaultClient is the net/http implementation of Client.
type DefaultClient struct {
	client          *http.Client
	maxTries        uint
	initialInterval time.Duration
}

// NewDefaultClient creates a client whose requests time out after timeout.
func NewDefaultClient(timeout time.Duration, opts ...Option) *DefaultClient {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	c := &DefaultClient{
		client:          &http.Client{Timeout: timeout},
		maxTries:        DefaultMaxTries,
		initialInterval: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get implements Client.
func (c *DefaultClient) Get(ctx context.Context, url string) ([]byte, error) {
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = c.initialInterval

	return backoff.Retry(ctx, func() ([]byte, error) {
		data, err := c.do(ctx, http.MethodGet, url, nil)
		if err != nil && !retryable(err) {
			return nil, backoff.Permanent(err)
		}
		return data, err
	},
		backoff.WithBackOff(expBackoff),
		backoff.WithMaxTries(c.maxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			slog.Debug("Retrying request", "url", url, "error", err, "next", next)
		}),
	)
}

// Put implements Client.
func (c *DefaultClient) Put(ctx context.Context, url string, body []byte) ([]byte, error) {
	return c.do(ctx, http.MethodPut, url, body)
}

func (c *DefaultClient) do(ctx context.Context, method, url string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", contentType)
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("failed to execute request: %w", ctxErr)
		}
		return nil, &transportError{err: fmt.Errorf("failed to execute request: %w", err)}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.ContentLength > MaxResponseSize {
		return nil, fmt.Errorf("response size %d bytes exceeds maximum allowed size of %.2f MB",
			resp.ContentLength, float64(MaxResponseSize)/(1024*1024))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, &transportError{err: fmt.Errorf("failed to read response body: %w", err)}
	}
	if len(data) > MaxResponseSize {
		return nil, fmt.Errorf("response body exceeds maximum allowed size of %.2f MB",
			float64(MaxResponseSize)/(1024*1024))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseErrorResponse(resp.StatusCode, url, data)
	}
	return data, nil
}

// parseErrorResponse reads {"error": ..., "code": ...} bodies and falls back to the raw text.
func parseErrorResponse(statusCode int, url string, body []byte) *HTTPError {
	httpErr := &HTTPError{StatusCode: statusCode, URL: url}
	if gjson.ValidBytes(body) {
		result := gjson.GetManyBytes(body, "error", "code")
		httpErr.Message = result[0].String()
		httpErr.Code = result[1].String()
	}
	if httpErr.Message == "" {
		msg := body
		if len(msg) > maxErrorMessageSize {
			msg = msg[:maxErrorMessageSize]
		}
		httpErr.Message = string(bytes.TrimSpace(msg))
	}
	if httpErr.Message == "" {
		httpErr.Message = http.StatusText(statusCode)
	}
	return httpErr
}

type transportError struct {
	err error
}

func (e *transportError) Error() string { return e.err.Error() }

func (e *transportError) Unwrap() error { return e.err }

func retryable(err error) bool {
	var te *transportError
	if errors.As(err, &te) {
		return true
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode >= http.StatusInternalServerError
	}
	return false
}
