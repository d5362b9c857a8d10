// Package property cross-references deceased persons against county
// property ownership records.
package property

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/estate-leads/internal/model"
	"github.com/sells-group/estate-leads/internal/names"
)

// Record is a fully parsed single-property page.
type Record struct {
	PropertyID     string
	HomeOwnersName string
	Address        string
	AppraisedValue string
	MailingAddress string
}

// Row is one candidate in a search result list. Rows carry no mailing
// address; it needs a detail lookup.
type Row struct {
	PropertyID     string
	HomeOwnersName string
	Address        string
	AppraisedValue string
}

// SearchResult is either a SinglePage or a ResultList.
type SearchResult interface {
	searchResult()
}

// SinglePage means the search landed directly on one property.
type SinglePage struct {
	Record Record
}

// ResultList means the search returned zero or more candidate rows.
type ResultList struct {
	Rows []Row
}

func (SinglePage) searchResult() {}
func (ResultList) searchResult() {}

// Source queries the assessor's property site.
type Source interface {
	Search(ctx context.Context, term string) (SearchResult, error)
	MailingAddress(ctx context.Context, propertyID string) (string, error)
}

// Matcher finds the properties owned by deceased persons.
type Matcher struct {
	src Source
}

// NewMatcher creates a Matcher over src.
func NewMatcher(src Source) *Matcher {
	return &Matcher{src: src}
}

// Match runs every name variant of rec and concatenates the matches. A
// property found by both variants appears twice. Records whose name cannot
// be varied yield nothing.
func (m *Matcher) Match(ctx context.Context, rec model.DeceasedRecord) []model.OwnershipMatch {
	log := zap.L().With(zap.String("person", rec.Person))

	variants := names.Variants(rec.Person)
	if len(variants) == 0 {
		log.Debug("property: name not searchable",
			zap.String("degradation", string(model.DegradationShapeMismatch)),
		)
		return nil
	}

	var out []model.OwnershipMatch
	for _, v := range variants {
		out = append(out, m.matchVariant(ctx, rec, v)...)
	}
	return out
}

// MatchAll matches every non-empty record in order. Lookups share one
// browser session, so they run sequentially.
func (m *Matcher) MatchAll(ctx context.Context, records []model.DeceasedRecord) []model.OwnershipMatch {
	zap.L().Info("property: cross-searching deceased names", zap.Int("records", len(records)))

	out := []model.OwnershipMatch{}
	for _, rec := range records {
		if ctx.Err() != nil {
			break
		}
		if strings.TrimSpace(rec.Person) == "" {
			continue
		}
		out = append(out, m.Match(ctx, rec)...)
	}

	zap.L().Info("property: cross-search complete", zap.Int("homes_found", len(out)))
	return out
}

func (m *Matcher) matchVariant(ctx context.Context, rec model.DeceasedRecord, v names.Variant) []model.OwnershipMatch {
	log := zap.L().With(
		zap.String("person", rec.Person),
		zap.String("query", v.Query()),
		zap.Stringer("variant", v.Kind),
	)

	res, err := m.src.Search(ctx, v.Query())
	if err != nil {
		log.Warn("property: search failed",
			zap.String("degradation", string(model.DegradationLookupMiss)),
			zap.Error(err),
		)
		return nil
	}

	switch r := res.(type) {
	case SinglePage:
		return []model.OwnershipMatch{{
			DeceasedRecord: rec,
			HomeOwnersName: r.Record.HomeOwnersName,
			Address:        r.Record.Address,
			MailingAddress: r.Record.MailingAddress,
			AppraisedValue: r.Record.AppraisedValue,
			PropertyID:     r.Record.PropertyID,
		}}

	case ResultList:
		var out []model.OwnershipMatch
		for _, row := range r.Rows {
			if !Verify(v, row.HomeOwnersName) {
				continue
			}
			// A candidate without a mailing address empties the variant.
			mailing, err := m.src.MailingAddress(ctx, row.PropertyID)
			if err != nil || mailing == "" {
				log.Debug("property: no mailing address for candidate, dropping variant",
					zap.String("property_id", row.PropertyID),
					zap.String("degradation", string(model.DegradationLookupMiss)),
					zap.Error(err),
				)
				return nil
			}
			out = append(out, model.OwnershipMatch{
				DeceasedRecord: rec,
				HomeOwnersName: row.HomeOwnersName,
				Address:        row.Address,
				MailingAddress: mailing,
				AppraisedValue: row.AppraisedValue,
				PropertyID:     row.PropertyID,
			})
		}
		return out

	default:
		log.Warn("property: unknown search result shape")
		return nil
	}
}

// Verify reports whether a listed owner string belongs to the searched name.
// Three-token queries need only appear anywhere in the owner string; two-token
// queries must equal the first owner exactly. Both ignore case.
func Verify(v names.Variant, owners string) bool {
	query := strings.ToLower(v.Query())
	owners = strings.ToLower(owners)
	if len(v.Tokens) >= 3 {
		return strings.Contains(owners, query)
	}
	first, _, _ := strings.Cut(owners, ",")
	return strings.TrimSpace(first) == query
}
