// Package deathindex scans a public death-index registry for deceased
// persons in a date window.
package deathindex

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/estate-leads/internal/model"
)

// ErrDone is returned by Session.NextPage after the last page.
var ErrDone = eris.New("deathindex: no more pages")

// Source starts registry searches.
type Source interface {
	Search(ctx context.Context, from, to string) (Session, error)
}

// Session pages through one search's results.
type Session interface {
	// NextPage returns the next page of rows, or ErrDone after the last.
	NextPage(ctx context.Context) ([]model.DeceasedRecord, error)
}

// DefaultMaxPages bounds a scan when the registry never disables paging.
const DefaultMaxPages = 500

// Scanner collects every page of a registry search into a Batch.
type Scanner struct {
	src      Source
	maxPages int
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithMaxPages caps the number of pages read.
func WithMaxPages(n int) ScannerOption {
	return func(s *Scanner) {
		if n > 0 {
			s.maxPages = n
		}
	}
}

// NewScanner creates a Scanner over src.
func NewScanner(src Source, opts ...ScannerOption) *Scanner {
	s := &Scanner{src: src, maxPages: DefaultMaxPages}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan reads all result pages for the window. A failed search is an error;
// a page failure after the first page ends the scan with what was read.
func (s *Scanner) Scan(ctx context.Context, w Window) (*model.Batch, error) {
	from, to := FormatDate(w.From), FormatDate(w.To)
	log := zap.L().With(zap.String("from", from), zap.String("to", to))

	sess, err := s.src.Search(ctx, from, to)
	if err != nil {
		return nil, eris.Wrap(err, "deathindex: search")
	}

	batch := &model.Batch{DeadPeopleList: [][]model.DeceasedRecord{}}
	for page := 1; page <= s.maxPages; page++ {
		rows, err := sess.NextPage(ctx)
		if errors.Is(err, ErrDone) {
			break
		}
		if err != nil {
			if page == 1 {
				return nil, eris.Wrap(err, "deathindex: first page")
			}
			log.Warn("deathindex: page failed, keeping earlier pages",
				zap.Int("page", page),
				zap.Error(err),
			)
			break
		}
		log.Debug("deathindex: page extracted", zap.Int("page", page), zap.Int("rows", len(rows)))
		batch.DeadPeopleList = append(batch.DeadPeopleList, rows)
		if page == s.maxPages {
			log.Warn("deathindex: page limit reached", zap.Int("max_pages", s.maxPages))
		}
	}

	batch.NumberOfNamesExtracted = len(batch.Records())
	log.Info("deathindex: scan complete",
		zap.Int("pages", len(batch.DeadPeopleList)),
		zap.Int("names_extracted", batch.NumberOfNamesExtracted),
	)
	return batch, nil
}
