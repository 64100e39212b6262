// Package jsonbin provides a client for the jsonbin.io v3 API, used to
// publish bulletin records and forecast artifacts.
package jsonbin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

// Client defines the jsonbin.io operations the pipeline uses.
type Client interface {
	// Update replaces the contents of a bin with the given payload.
	Update(ctx context.Context, binID string, payload any) error
	// Read fetches the latest contents of a bin into out.
	Read(ctx context.Context, binID string, out any) error
}

// Option configures the jsonbin client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	masterKey string
	baseURL   string
	http      *http.Client
}

// NewClient creates a new jsonbin.io client.
func NewClient(masterKey string, opts ...Option) Client {
	c := &httpClient{
		masterKey: masterKey,
		baseURL:   "https://api.jsonbin.io",
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Update(ctx context.Context, binID string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrap(err, "jsonbin: marshal payload")
	}

	url := fmt.Sprintf("%s/v3/b/%s", c.baseURL, binID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "jsonbin: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Master-Key", c.masterKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrapf(err, "jsonbin: update bin %s", binID)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return eris.Errorf("jsonbin: update bin %s: status %d: %s", binID, resp.StatusCode, string(msg))
	}
	return nil
}

func (c *httpClient) Read(ctx context.Context, binID string, out any) error {
	url := fmt.Sprintf("%s/v3/b/%s/latest", c.baseURL, binID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return eris.Wrap(err, "jsonbin: create request")
	}
	req.Header.Set("X-Master-Key", c.masterKey)
	req.Header.Set("X-Bin-Meta", "false")

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrapf(err, "jsonbin: read bin %s", binID)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return eris.Errorf("jsonbin: read bin %s: status %d: %s", binID, resp.StatusCode, string(msg))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return eris.Wrapf(err, "jsonbin: decode bin %s", binID)
	}
	return nil
}
