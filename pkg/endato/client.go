// Package endato provides a client for the Endato Contact Enrich API.
package endato

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://devapi.endato.com"
	searchType     = "DevAPIContactEnrich"
	noMatchMessage = "No strong matches"
)

// Client defines the Endato operations.
type Client interface {
	// Enrich looks up one person. A nil Person with a nil error means the
	// provider found no strong match.
	Enrich(ctx context.Context, req Request) (*Person, error)
}

// Request is the body for POST /Contact/Enrich.
type Request struct {
	FirstName string  `json:"FirstName"`
	LastName  string  `json:"LastName"`
	Age       int     `json:"Age"`
	Dob       string  `json:"Dob"`
	Address   Address `json:"Address"`
	Phone     string  `json:"Phone"`
	Email     string  `json:"Email"`
}

// Address is the two-line address block of a Request.
type Address struct {
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2"`
}

// Person is the enriched contact.
type Person struct {
	Name   Name    `json:"name"`
	Age    Age     `json:"age"`
	Phones []Phone `json:"phones"`
	Emails []Email `json:"emails"`
}

// Numbers returns the phone numbers in provider order.
func (p *Person) Numbers() []string {
	if p == nil {
		return nil
	}
	out := make([]string, 0, len(p.Phones))
	for _, ph := range p.Phones {
		out = append(out, ph.Number)
	}
	return out
}

// Age is the person's age as the provider reports it. It arrives either as a
// JSON number or a string; null decodes to "".
type Age string

// UnmarshalJSON implements json.Unmarshaler.
func (a *Age) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*a = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = Age(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return eris.Wrap(err, "endato: age")
	}
	*a = Age(n.String())
	return nil
}

// String returns the age, or "" when unknown.
func (a Age) String() string {
	if a == "0" {
		return ""
	}
	return string(a)
}

// Name is the person's name as the provider knows it.
type Name struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Phone is one phone entry.
type Phone struct {
	Number      string `json:"number"`
	Type        string `json:"type"`
	IsConnected bool   `json:"isConnected"`
}

// Email is one email entry.
type Email struct {
	Email string `json:"email"`
}

type enrichResponse struct {
	Person  *Person `json:"person"`
	Message string  `json:"message"`
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
	apName     string
	apPassword string
	baseURL    string
	http       *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new Endato client with the galaxy profile credentials.
func NewClient(apName, apPassword string, opts ...Option) Client {
	c := &httpClient{
		apName:     apName,
		apPassword: apPassword,
		baseURL:    defaultBaseURL,
		http:       &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Enrich(ctx context.Context, r Request) (*Person, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "endato: rate limit")
		}
	}

	buf, err := json.Marshal(r)
	if err != nil {
		return nil, eris.Wrap(err, "endato: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/Contact/Enrich", bytes.NewReader(buf))
	if err != nil {
		return nil, eris.Wrap(err, "endato: create request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("galaxy-ap-name", c.apName)
	req.Header.Set("galaxy-ap-password", c.apPassword)
	req.Header.Set("galaxy-search-type", searchType)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "endato: request failed")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "endato: read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, eris.Errorf("endato: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var out enrichResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, eris.Wrap(err, "endato: unmarshal response")
	}

	if strings.TrimSpace(out.Message) == noMatchMessage {
		zap.L().Info("endato: no strong matches",
			zap.String("address_line1", r.Address.AddressLine1),
			zap.String("address_line2", r.Address.AddressLine2),
		)
	}
	return out.Person, nil
}
