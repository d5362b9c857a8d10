// Package geocode resolves free-text street addresses to the provider's
// canonical formatted address via the Google Geocoding API.
package geocode

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Client geocodes addresses.
type Client interface {
	// FormattedAddress returns the canonical formatted address of the best
	// match for text, or "" when the provider has no result.
	FormattedAddress(ctx context.Context, text string) (string, error)
}

// Option configures the geocoder.
type Option func(*geocoder)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(g *geocoder) {
		g.httpClient = hc
	}
}

// WithBaseURL overrides the Google Geocoding endpoint (for testing).
func WithBaseURL(url string) Option {
	return func(g *geocoder) {
		g.baseURL = url
	}
}

// WithRateLimit sets the requests-per-second rate limit. Zero or less
// disables limiting.
func WithRateLimit(rps float64) Option {
	return func(g *geocoder) {
		if rps <= 0 {
			g.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

type geocoder struct {
	httpClient *http.Client
	baseURL    string
	googleKey  string
	limiter    *rate.Limiter
}

// NewClient creates a new geocoding Client for the given Google API key.
func NewClient(googleKey string, opts ...Option) Client {
	g := &geocoder{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    googleGeocodeURL,
		googleKey:  googleKey,
		limiter:    rate.NewLimiter(25, 25),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *geocoder) FormattedAddress(ctx context.Context, text string) (string, error) {
	res, err := g.geocodeGoogle(ctx, text)
	if err != nil {
		return "", err
	}
	if len(res.Results) == 0 {
		return "", nil
	}
	return res.Results[0].FormattedAddress, nil
}
