// Package apiclient is the JSON-over-HTTP transport shared by the
// provider adapters that have no official Go SDK.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/urbanbot/internal/core/domain"
)

// maxBody caps how much of a response is read.
const maxBody = 4 << 20

// StatusError is a non-2xx reply from a provider.
type StatusError struct {
	Provider string
	Status   int

	// Message is the provider's own error text, when it could be decoded.
	Message string

	// Body is the raw reply, trimmed.
	Body string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s error: %s (status %d)", e.Provider, e.Message, e.Status)
	}
	return fmt.Sprintf("%s error (status %d): %s", e.Provider, e.Status, e.Body)
}

// Is matches domain.ErrLLMUnavailable for rejected credentials.
func (e *StatusError) Is(target error) bool {
	return target == domain.ErrLLMUnavailable &&
		(e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden)
}

// Retryable reports rate limiting and server-side failures.
func (e *StatusError) Retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= http.StatusInternalServerError
}

// WithMessage attaches the provider's error text to a StatusError.
// Other errors are returned unchanged.
func WithMessage(err error, msg string) error {
	var se *StatusError
	if msg != "" && errors.As(err, &se) {
		se.Message = msg
	}
	return err
}

// Client sends JSON requests to one provider.
type Client struct {
	http     *http.Client
	baseURL  string
	provider string
	header   http.Header
}

// New creates a client. header is added to every request.
func New(provider, baseURL string, timeout time.Duration, header http.Header) *Client {
	return &Client{
		http:     &http.Client{Timeout: timeout},
		baseURL:  strings.TrimRight(baseURL, "/"),
		provider: provider,
		header:   header,
	}
}

// Provider returns the label used in errors.
func (c *Client) Provider() string {
	return c.provider
}

// PostJSON sends in as JSON to path and decodes the reply into out.
// The reply is decoded even on error status so callers can read the
// provider's error field; the returned error is then a *StatusError.
func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: marshal request: %w", c.provider, err)
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(payload), out)
}

// Get sends a GET to path and discards a successful reply.
func (c *Client) Get(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodGet, path, http.NoBody, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", c.provider, err)
	}
	for k, vs := range c.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: send request: %w", c.provider, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("%s: read response: %w", c.provider, err)
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil && ok {
			return fmt.Errorf("%s: decode response: %w", c.provider, err)
		}
	}
	if !ok {
		return &StatusError{
			Provider: c.provider,
			Status:   resp.StatusCode,
			Body:     strings.TrimSpace(string(raw)),
		}
	}
	return nil
}
