// Package httputil provides the JSON-over-HTTP plumbing shared by the
// identity and OAuth service clients.
package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/jrschumacher/fxa-oauth/internal/logger"
)

// NewClient returns a pooled HTTP client that logs every request at debug level.
func NewClient() *http.Client {
	c := cleanhttp.DefaultPooledClient()
	c.Transport = &loggingTransport{next: c.Transport}
	return c
}

type loggingTransport struct {
	next http.RoundTripper
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	logger.Debug("http", "method", req.Method, "url", req.URL.String())
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		logger.Debug("http", "url", req.URL.String(), "error", err)
		return nil, err
	}
	logger.Debug("http", "status", resp.StatusCode, "url", req.URL.String())
	return resp, nil
}

// RequestOption adjusts an outgoing request. It receives the serialized body
// so it can be used for request signing.
type RequestOption func(req *http.Request, body []byte) error

// WithHeader sets a static header.
func WithHeader(key, value string) RequestOption {
	return func(req *http.Request, _ []byte) error {
		req.Header.Set(key, value)
		return nil
	}
}

// DoJSON sends body as JSON (when non-nil) and decodes a successful response
// into out (when non-nil). Any status from 200 to 399 is a success; other
// statuses return an *APIError.
func DoJSON(ctx context.Context, client *http.Client, method, url string, body, out any, opts ...RequestOption) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		if err := opt(req, payload); err != nil {
			return err
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
