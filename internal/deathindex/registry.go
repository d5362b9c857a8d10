package deathindex

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/sells-group/estate-leads/internal/browser"
	"github.com/sells-group/estate-leads/internal/model"
)

// Mecklenburg Register of Deeds page layout.
const (
	DefaultRegistryURL = "https://meckrod.manatron.com/"

	selectorFromDate = "#cphNoMargin_f_ddcDateOfDeathFrom input[type=text]"
	selectorToDate   = "#cphNoMargin_f_ddcDateOfDeathTo input[type=text]"
	selectorSearch   = "#cphNoMargin_SearchButtons2_btnSearch__5"
	selectorRows     = `tbody[mkr="rows"] > tr`
	selectorNext     = "#OptionsBar2_imgNext"
)

// DefaultEntrySelectors walk from the landing page to the death index search
// form: acknowledge the disclaimer, open Death, open Search Death Index.
var DefaultEntrySelectors = []string{
	`a[href*="Acknowledge"]`,
	`a[href*="Death"]`,
	`a[href*="DeathIndex"]`,
}

// RegistryConfig tunes the registry adapter.
type RegistryConfig struct {
	URL            string
	EntrySelectors []string
	SearchSettle   time.Duration
	PageSettle     time.Duration
}

func (c RegistryConfig) withDefaults() RegistryConfig {
	if c.URL == "" {
		c.URL = DefaultRegistryURL
	}
	if c.EntrySelectors == nil {
		c.EntrySelectors = DefaultEntrySelectors
	}
	if c.SearchSettle == 0 {
		c.SearchSettle = 5 * time.Second
	}
	if c.PageSettle == 0 {
		c.PageSettle = 3 * time.Second
	}
	return c
}

// Registry is a Source that drives the register of deeds through a browser
// session.
type Registry struct {
	browser browser.Session
	cfg     RegistryConfig
}

// NewRegistry creates a registry Source.
func NewRegistry(b browser.Session, cfg RegistryConfig) *Registry {
	return &Registry{browser: b, cfg: cfg.withDefaults()}
}

// Search opens the search form, fills the window, and submits it.
func (r *Registry) Search(ctx context.Context, from, to string) (Session, error) {
	if err := r.browser.Goto(ctx, r.cfg.URL); err != nil {
		return nil, eris.Wrap(err, "deathindex: open registry")
	}
	for _, sel := range r.cfg.EntrySelectors {
		if err := r.browser.Click(ctx, sel); err != nil {
			return nil, eris.Wrapf(err, "deathindex: click %s", sel)
		}
	}
	if err := r.browser.Fill(ctx, selectorFromDate, from); err != nil {
		return nil, eris.Wrap(err, "deathindex: fill from date")
	}
	if err := r.browser.Fill(ctx, selectorToDate, to); err != nil {
		return nil, eris.Wrap(err, "deathindex: fill to date")
	}
	if err := r.browser.Click(ctx, selectorSearch); err != nil {
		return nil, eris.Wrap(err, "deathindex: submit search")
	}
	if err := r.browser.Wait(ctx, r.cfg.SearchSettle); err != nil {
		return nil, eris.Wrap(err, "deathindex: settle")
	}
	return &registrySession{browser: r.browser, settle: r.cfg.PageSettle}, nil
}

type registrySession struct {
	browser browser.Session
	settle  time.Duration

	mu   sync.Mutex
	done bool
}

func (s *registrySession) NextPage(ctx context.Context) ([]model.DeceasedRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return nil, ErrDone
	}

	html, err := s.browser.HTML(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "deathindex: render results")
	}
	rows, last, err := ParseResults(html)
	if err != nil {
		return nil, err
	}

	if last {
		s.done = true
		return rows, nil
	}
	if err := s.browser.Click(ctx, selectorNext); err != nil {
		return nil, eris.Wrap(err, "deathindex: next page")
	}
	if err := s.browser.Wait(ctx, s.settle); err != nil {
		return nil, eris.Wrap(err, "deathindex: settle")
	}
	return rows, nil
}

// ParseResults extracts the result rows of one page and reports whether it
// is the last page. A page without a next control is the last page.
func ParseResults(html string) ([]model.DeceasedRecord, bool, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, false, eris.Wrap(err, "deathindex: parse html")
	}

	rows := []model.DeceasedRecord{}
	doc.Find(selectorRows).Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, td.Text())
		})
		rows = append(rows, ParseRow(cells))
	})

	next := doc.Find(selectorNext)
	_, disabled := next.Attr("disabled")
	last := next.Length() == 0 || disabled
	return rows, last, nil
}
