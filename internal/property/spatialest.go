package property

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/sells-group/estate-leads/internal/browser"
)

// Mecklenburg County assessor page layout.
const (
	DefaultSpatialestURL = "https://property.spatialest.com/nc/mecklenburg/"

	selectorSinglePage = ".collapsible-section"
	selectorOwner      = "div.mailing > div.value"
	selectorAddress    = "div.location.text-highlight > span.value"
	selectorAppraised  = "div.sticky-container > header > div > div > div:nth-child(3) > div > div.text-highlight > span"
	selectorMailing    = "header > div > div > div:nth-child(2) > div > div"

	selectorResultRow    = ".result-item-wrapper"
	selectorRowOwners    = "li:nth-child(2) .value"
	selectorRowAddress   = "p:nth-child(2) > span.value"
	selectorRowAppraised = "div.featured > div.featured-item.item-2 > p:nth-child(2) > span"
)

// Spatialest is a Source over the Spatialest assessor site. It is safe for
// concurrent use; page loads on the shared session are serialized.
type Spatialest struct {
	mu      sync.Mutex
	browser browser.Session
	baseURL string
	settle  time.Duration
}

// NewSpatialest creates a Spatialest source. Empty baseURL uses the
// Mecklenburg site; zero settle uses five seconds.
func NewSpatialest(b browser.Session, baseURL string, settle time.Duration) *Spatialest {
	if baseURL == "" {
		baseURL = DefaultSpatialestURL
	}
	if settle == 0 {
		settle = 5 * time.Second
	}
	return &Spatialest{browser: b, baseURL: baseURL, settle: settle}
}

// SearchURL returns the owner-search URL for term.
func (s *Spatialest) SearchURL(term string) string {
	q := url.Values{"category": {"Owner1"}, "term": {term}}
	return s.baseURL + "#/search?" + strings.ReplaceAll(q.Encode(), "+", "%20")
}

// PropertyURL returns the detail URL for a property id.
func (s *Spatialest) PropertyURL(id string) string {
	return s.baseURL + "#/property/" + url.PathEscape(id)
}

// Search implements Source.
func (s *Spatialest) Search(ctx context.Context, term string) (SearchResult, error) {
	html, err := s.load(ctx, s.SearchURL(term))
	if err != nil {
		return nil, err
	}
	return ParseSearch(html)
}

// MailingAddress implements Source.
func (s *Spatialest) MailingAddress(ctx context.Context, propertyID string) (string, error) {
	if propertyID == "" {
		return "", eris.New("property: empty property id")
	}
	html, err := s.load(ctx, s.PropertyURL(propertyID))
	if err != nil {
		return "", err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", eris.Wrap(err, "property: parse detail html")
	}
	return mailingAddress(doc.Find(selectorMailing).First()), nil
}

// load holds the lock from navigation to render so the HTML returned is the
// page for u.
func (s *Spatialest) load(ctx context.Context, u string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.browser.Goto(ctx, u); err != nil {
		return "", eris.Wrap(err, "property: navigate")
	}
	if err := s.browser.Wait(ctx, s.settle); err != nil {
		return "", eris.Wrap(err, "property: settle")
	}
	html, err := s.browser.HTML(ctx)
	if err != nil {
		return "", eris.Wrapf(err, "property: render %s", u)
	}
	return html, nil
}

// ParseSearch classifies a rendered search page as a single property page or
// a result list.
func ParseSearch(html string) (SearchResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, eris.Wrap(err, "property: parse search html")
	}

	if doc.Find(selectorSinglePage).Length() > 0 {
		return SinglePage{Record: Record{
			HomeOwnersName: firstLine(doc.Find(selectorOwner).First()),
			Address:        text(doc.Find(selectorAddress).First()),
			AppraisedValue: text(doc.Find(selectorAppraised).First()),
			MailingAddress: mailingAddress(doc.Find(selectorMailing).First()),
		}}, nil
	}

	list := ResultList{Rows: []Row{}}
	doc.Find(selectorResultRow).Each(func(_ int, item *goquery.Selection) {
		id, _ := item.Attr("data-id")
		list.Rows = append(list.Rows, Row{
			PropertyID:     strings.TrimSpace(id),
			HomeOwnersName: text(item.Find(selectorRowOwners).First()),
			Address:        text(item.Find(selectorRowAddress).First()),
			AppraisedValue: text(item.Find(selectorRowAppraised).First()),
		})
	})
	return list, nil
}

func text(s *goquery.Selection) string {
	return strings.TrimSpace(s.Text())
}

// lines splits an element's text on <br> and newlines, trimming each line
// and dropping blanks.
func lines(s *goquery.Selection) []string {
	if s.Length() == 0 {
		return nil
	}
	c := s.Clone()
	c.Find("br").ReplaceWithHtml("\n")

	var out []string
	for _, l := range strings.Split(c.Text(), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func firstLine(s *goquery.Selection) string {
	ls := lines(s)
	if len(ls) == 0 {
		return ""
	}
	return ls[0]
}

// mailingAddress joins the address block's lines with ", ", starting at the
// first digit so the owner-name lines above the street are dropped.
func mailingAddress(s *goquery.Selection) string {
	joined := strings.Join(lines(s), "\n")
	i := strings.IndexFunc(joined, unicode.IsDigit)
	if i < 0 {
		return ""
	}
	return strings.ReplaceAll(joined[i:], "\n", ", ")
}
