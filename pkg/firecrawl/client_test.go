package firecrawl

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-api-key", WithBaseURL(srv.URL))
}

func TestScrape(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantHTML   string
		wantErr    string
		wantStatus int
	}{
		{
			name: "happy path with actions",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/scrape", r.URL.Path)
				assert.Equal(t, "Bearer test-api-key", r.Header.Get("Authorization"))
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

				var req ScrapeRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, "https://example.com/search", req.URL)
				assert.Equal(t, []string{FormatRawHTML}, req.Formats)
				require.Len(t, req.Actions, 3)
				assert.Equal(t, ActionClick, req.Actions[0].Type)
				assert.Equal(t, "#go", req.Actions[0].Selector)
				assert.Equal(t, ActionWrite, req.Actions[1].Type)
				assert.Equal(t, "01/02/2026", req.Actions[1].Text)
				assert.Equal(t, 5000, req.Actions[2].Milliseconds)

				_ = json.NewEncoder(w).Encode(ScrapeResponse{
					Success: true,
					Data:    PageData{RawHTML: "<table></table>"},
				})
			},
			wantHTML: "<table></table>",
		},
		{
			name: "unsuccessful body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"success":false,"error":"timeout"}`))
			},
			wantErr: "unsuccessful: timeout",
		},
		{
			name: "auth error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
			},
			wantErr:    "HTTP 401",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "bad json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`not json`))
			},
			wantErr: "decode response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestServer(t, tt.handler)
			resp, err := c.Scrape(context.Background(), ScrapeRequest{
				URL:     "https://example.com/search",
				Formats: []string{FormatRawHTML},
				Actions: []Action{Click("#go"), Write("01/02/2026"), Wait(5 * time.Second)},
			})

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				if tt.wantStatus != 0 {
					var apiErr *APIError
					require.ErrorAs(t, err, &apiErr)
					assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHTML, resp.Data.RawHTML)
		})
	}
}

func TestActionHelpers(t *testing.T) {
	assert.Equal(t, Action{Type: ActionWait, Milliseconds: 3000}, Wait(3*time.Second))
	assert.Equal(t, Action{Type: ActionClick, Selector: "#next"}, Click("#next"))
	assert.Equal(t, Action{Type: ActionWrite, Text: "abc"}, Write("abc"))
}

func TestAPIError(t *testing.T) {
	err := &APIError{StatusCode: 502, Body: "bad gateway"}
	assert.Equal(t, "firecrawl: HTTP 502: bad gateway", err.Error())
}
