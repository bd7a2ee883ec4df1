// Package api is the HTTP client for the project-management backend.
//
// One method per (resource, verb). Every call attaches the borrowed
// session credential from the invocation context; a missing credential
// fails before any request is built. Non-2xx responses become *Error
// with the backend's `detail` message when the error body carries one,
// falling back to "HTTP <status> <reason>". Transport failures are
// returned as ordinary wrapped errors; nothing panics.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"sprintline/internal/authctx"
)

// basePath is the fixed prefix for all resource endpoints.
const basePath = "/api/v1"

// maxErrorBody caps how much of an error response we read while
// looking for a detail message.
const maxErrorBody = 64 << 10

// Error is a non-2xx backend response.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("HTTP %d %s", e.Status, http.StatusText(e.Status))
}

// Client issues authenticated requests against the backend. It holds
// no per-invocation state: the credential arrives on the context of
// each call, so one client serves concurrent invocations.
type Client struct {
	baseURL    string
	httpc      *http.Client
	log        *zap.Logger
	maxRetries uint64
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpc.Timeout = d }
}

// WithLogger sets the logger for request diagnostics. Credentials are
// never logged.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithRetries enables bounded exponential backoff for transport
// failures on idempotent reads. Mutating calls are never retried
// because a timed-out write may have committed.
func WithRetries(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxRetries = uint64(n)
		}
	}
}

// New creates a Client for the given base URL (scheme://host, no
// trailing slash required).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 30 * time.Second},
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do runs one backend call. The credential check comes first: without
// an auth context no request is ever built, let alone sent.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	credential, err := authctx.FromContext(ctx)
	if err != nil {
		return err
	}

	endpoint := c.baseURL + basePath + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, payload)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+credential)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.send(req)
	if err != nil {
		c.log.Warn("backend request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return fmt.Errorf("calling backend: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := errorFrom(resp)
		c.log.Warn("backend returned error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", apiErr.Status))
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// send issues the request, retrying transport failures for GETs when
// retries are enabled. Non-2xx responses are never retried.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet || c.maxRetries == 0 {
		return c.httpc.Do(req)
	}

	var resp *http.Response
	attempt := func() error {
		var err error
		resp, err = c.httpc.Do(req)
		return err
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries),
		req.Context(),
	)
	if err := backoff.Retry(attempt, policy); err != nil {
		return nil, err
	}
	return resp, nil
}

// errorFrom extracts the backend's structured detail message, falling
// back to a status-derived message for absent or malformed bodies.
func errorFrom(resp *http.Response) *Error {
	apiErr := &Error{Status: resp.StatusCode}
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&body); err == nil {
		apiErr.Detail = strings.TrimSpace(body.Detail)
	}
	return apiErr
}
