// Package client is a Go client for the paint mixer HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tendant/simple-paintmixer/pkg/schema"
)

const DefaultServer = "http://localhost:8080"

// StatusError is returned for any non-2xx response.
type StatusError struct {
	StatusCode  int
	Description string
	Messages    []string
}

func (e *StatusError) Error() string {
	switch {
	case e.Description != "":
		return fmt.Sprintf("%d: %s", e.StatusCode, e.Description)
	case len(e.Messages) > 0:
		return fmt.Sprintf("%d: %s", e.StatusCode, strings.Join(e.Messages, "; "))
	default:
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
}

type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default client, which times out after 10s.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Submit(ctx context.Context, m schema.ColoringModel) (schema.APIResponse, error) {
	body, err := json.Marshal(m)
	if err != nil {
		return schema.APIResponse{}, err
	}
	var out schema.APIResponse
	err = c.do(ctx, http.MethodPost, "/api/PaintMix/FromModel", bytes.NewReader(body), &out)
	return out, err
}

func (c *Client) Status(ctx context.Context, code int) (schema.APIResponse, error) {
	var out schema.APIResponse
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/PaintMix/Job/%d/status", code), nil, &out)
	return out, err
}

func (c *Client) Cancel(ctx context.Context, code int) (schema.APIResponse, error) {
	var out schema.APIResponse
	err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/PaintMix/Job/%d/cancel", code), nil, &out)
	return out, err
}

func (c *Client) Inspect(ctx context.Context, code int) (schema.JobView, error) {
	var out schema.JobView
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/PaintMix/Job/%d", code), nil, &out)
	return out, err
}

// Swatch returns the PNG body. The caller closes it.
func (c *Client) Swatch(ctx context.Context, code int) (io.ReadCloser, error) {
	resp, err := c.send(ctx, http.MethodGet, fmt.Sprintf("/api/PaintMix/Job/%d/swatch.png", code), nil)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// send performs the request and turns non-2xx responses into *StatusError.
func (c *Client) send(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	var payload struct {
		schema.APIResponse
		schema.APIError
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	return nil, &StatusError{
		StatusCode:  resp.StatusCode,
		Description: payload.Description,
		Messages:    payload.ErrorMessages,
	}
}
