package browser

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/estate-leads/pkg/firecrawl"
)

// FirecrawlSession replays the recorded interactions through the Firecrawl
// scrape API on every render. Each render starts a fresh remote browser, so
// the full script since the last Goto is sent each time.
type FirecrawlSession struct {
	client firecrawl.Client

	mu      sync.Mutex
	url     string
	actions []firecrawl.Action
}

// NewFirecrawlSession creates a session over the given Firecrawl client.
func NewFirecrawlSession(client firecrawl.Client) *FirecrawlSession {
	return &FirecrawlSession{client: client}
}

// Goto implements Session.
func (s *FirecrawlSession) Goto(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.url = url
	s.actions = nil
	return nil
}

// Click implements Session.
func (s *FirecrawlSession) Click(_ context.Context, selector string) error {
	return s.record(firecrawl.Click(selector))
}

// Fill implements Session.
func (s *FirecrawlSession) Fill(_ context.Context, selector, text string) error {
	return s.record(firecrawl.Click(selector), firecrawl.Write(text))
}

// Wait implements Session.
func (s *FirecrawlSession) Wait(_ context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	return s.record(firecrawl.Wait(d))
}

func (s *FirecrawlSession) record(actions ...firecrawl.Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.url == "" {
		return eris.New("browser: no page loaded")
	}
	s.actions = append(s.actions, actions...)
	return nil
}

// HTML implements Session.
func (s *FirecrawlSession) HTML(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.url == "" {
		return "", eris.New("browser: no page loaded")
	}

	req := firecrawl.ScrapeRequest{
		URL:     s.url,
		Formats: []string{firecrawl.FormatRawHTML},
		Actions: append([]firecrawl.Action(nil), s.actions...),
	}
	zap.L().Debug("browser: rendering page",
		zap.String("url", s.url),
		zap.Int("actions", len(req.Actions)),
	)

	resp, err := s.client.Scrape(ctx, req)
	if err != nil {
		return "", eris.Wrapf(err, "browser: render %s", s.url)
	}
	return resp.Data.RawHTML, nil
}
