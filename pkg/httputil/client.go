package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single request made by [NewClient].
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of a failed response is kept for diagnostics.
const maxErrorBody = 4 << 10

// ErrNetwork marks transport failures and unexpected status codes.
var ErrNetwork = errors.New("network error")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%v: status %d", ErrNetwork, e.Code)
	}
	return fmt.Sprintf("%v: status %d: %s", ErrNetwork, e.Code, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrNetwork }

// Client sends JSON requests with a fixed set of default headers.
type Client struct {
	http    *http.Client
	headers map[string]string
}

// NewClient returns a client with [DefaultTimeout] when timeout is zero.
// headers are applied to every request; nil is fine.
func NewClient(timeout time.Duration, headers map[string]string) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		headers: headers,
	}
}

// PostJSON encodes body, posts it to url and decodes a 2xx response into v.
// Transport errors, 429 and 5xx responses are returned as [RetryableError].
func (c *Client) PostJSON(ctx context.Context, url string, body, v any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, val := range c.headers {
		req.Header.Set(k, val)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	err := &StatusError{Code: resp.StatusCode, Body: string(bytes.TrimSpace(data))}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return &RetryableError{Err: err}
	}
	return err
}
