// Package skipengine provides a client for the Skip Engine skip-trace API.
package skipengine

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.skipengine.com/v1"

// Client defines the Skip Engine operations.
type Client interface {
	// Lookup skip-traces one person at one address. A nil Output with a nil
	// error means the provider had no record.
	Lookup(ctx context.Context, req Request) (*Output, error)
}

// Request is the body for POST /service.
type Request struct {
	FName    string `json:"FName"`
	LName    string `json:"LName"`
	Address1 string `json:"Address1"`
	City     string `json:"City"`
	State    string `json:"State"`
	Zip      string `json:"Zip"`
}

// Option configures the httpClient.
type Option func(*httpClient)

// WithBaseURL overrides the default base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit caps outbound requests per second. Zero or less disables
// limiting.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a new Skip Engine client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type serviceResponse struct {
	Output *Output `json:"Output"`
}

func (c *httpClient) Lookup(ctx context.Context, r Request) (*Output, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "skipengine: rate limit")
		}
	}

	buf, err := json.Marshal(r)
	if err != nil {
		return nil, eris.Wrap(err, "skipengine: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/service", bytes.NewReader(buf))
	if err != nil {
		return nil, eris.Wrap(err, "skipengine: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "skipengine: request failed")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "skipengine: read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, eris.Errorf("skipengine: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var out serviceResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, eris.Wrap(err, "skipengine: unmarshal response")
	}
	return out.Output, nil
}
