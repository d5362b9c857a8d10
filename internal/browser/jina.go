package browser

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/estate-leads/pkg/jina"
)

// ReaderSession renders pages through the Jina Reader. It cannot interact
// with a page; Click and Fill return ErrUnsupported. Recorded waits extend
// the remote render timeout.
type ReaderSession struct {
	client  jina.Client
	waitFor string

	mu   sync.Mutex
	url  string
	wait time.Duration
}

// NewReaderSession creates a session over the given Jina client. waitFor,
// when set, is a CSS selector the reader waits for before capturing.
func NewReaderSession(client jina.Client, waitFor string) *ReaderSession {
	return &ReaderSession{client: client, waitFor: waitFor}
}

// Goto implements Session.
func (s *ReaderSession) Goto(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.url = url
	s.wait = 0
	return nil
}

// Click implements Session.
func (s *ReaderSession) Click(context.Context, string) error {
	return ErrUnsupported
}

// Fill implements Session.
func (s *ReaderSession) Fill(context.Context, string, string) error {
	return ErrUnsupported
}

// Wait implements Session.
func (s *ReaderSession) Wait(_ context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d > 0 {
		s.wait += d
	}
	return nil
}

// HTML implements Session.
func (s *ReaderSession) HTML(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.url == "" {
		return "", eris.New("browser: no page loaded")
	}

	opts := []jina.ReadOption{jina.WithFormat(jina.FormatHTML)}
	if s.waitFor != "" {
		opts = append(opts, jina.WithWaitForSelector(s.waitFor))
	}
	if s.wait > 0 {
		opts = append(opts, jina.WithTimeout(int(s.wait/time.Second)+10))
	}

	zap.L().Debug("browser: reading page", zap.String("url", s.url))
	resp, err := s.client.Read(ctx, s.url, opts...)
	if err != nil {
		return "", eris.Wrapf(err, "browser: read %s", s.url)
	}
	return resp.Data.Body(), nil
}
