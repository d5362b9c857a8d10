// Package enrich fans each ownership match out to the geocoder and the
// contact-data providers.
package enrich

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/estate-leads/internal/household"
	"github.com/sells-group/estate-leads/internal/model"
	"github.com/sells-group/estate-leads/internal/names"
	"github.com/sells-group/estate-leads/pkg/endato"
	"github.com/sells-group/estate-leads/pkg/geocode"
	"github.com/sells-group/estate-leads/pkg/skipengine"
)

// Enricher turns ownership matches into enriched leads.
type Enricher struct {
	geo         geocode.Client
	skipTrace   skipengine.Client
	people      endato.Client
	concurrency int
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithConcurrency caps how many matches are enriched at once. Zero means no
// cap.
func WithConcurrency(n int) Option {
	return func(e *Enricher) {
		e.concurrency = n
	}
}

// New creates an Enricher.
func New(geo geocode.Client, skipTrace skipengine.Client, people endato.Client, opts ...Option) *Enricher {
	e := &Enricher{geo: geo, skipTrace: skipTrace, people: people}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich enriches one match. It never fails: every problem degrades the
// returned lead instead.
func (e *Enricher) Enrich(ctx context.Context, m model.OwnershipMatch) model.EnrichedLead {
	log := zap.L().With(zap.String("person", m.Person), zap.String("address", m.Address))

	toks := names.Tokens(m.Person)
	if len(toks) < 2 {
		log.Debug("enrich: person name has fewer than two tokens")
		return Degraded(m, model.DegradationShapeMismatch)
	}

	spouse, err := household.Resolve(m.HomeOwnersName, m.Person)
	switch {
	case errors.Is(err, household.ErrInsufficientHousehold):
		log.Debug("enrich: single owner, skipping providers")
		return Degraded(m, model.DegradationInsufficientHousehold)
	case err != nil:
		log.Info("enrich: no distinct co-owner", zap.String("owners", m.HomeOwnersName))
		return Degraded(m, model.DegradationInsufficientHousehold)
	}

	formatted, err := e.geo.FormattedAddress(ctx, m.Address)
	if err != nil || formatted == "" {
		log.Warn("enrich: geocode miss", zap.Error(err))
		return Degraded(m, model.DegradationLookupMiss)
	}

	addr, err := ParseAddress(formatted)
	if err != nil {
		log.Warn("enrich: formatted address did not parse", zap.String("google_address", formatted))
		return Degraded(m, model.DegradationShapeMismatch)
	}

	lead := Degraded(m, model.DegradationNone)
	lead.Spouse = spouse
	lead.GoogleAddress = formatted

	first, last := toks[1], toks[0]
	var (
		skipOut   *skipengine.Output
		peopleOut *endato.Person
		g         errgroup.Group
	)
	g.Go(func() error {
		out, err := e.skipTrace.Lookup(ctx, skipengine.Request{
			FName:    first,
			LName:    last,
			Address1: addr.Street,
			City:     addr.City,
			State:    addr.State,
			Zip:      addr.Zip,
		})
		if err != nil {
			log.Warn("enrich: skip trace failed", zap.Error(err))
			return nil
		}
		skipOut = out
		return nil
	})
	g.Go(func() error {
		p, err := e.people.Enrich(ctx, endato.Request{
			FirstName: first,
			LastName:  last,
			Address: endato.Address{
				AddressLine1: addr.Street,
				AddressLine2: addr.City + ", " + addr.State,
			},
		})
		if err != nil {
			log.Warn("enrich: people search failed", zap.Error(err))
			return nil
		}
		peopleOut = p
		return nil
	})
	_ = g.Wait()

	ApplySkipTrace(&lead, skipOut)
	ApplyPeopleSearch(&lead, peopleOut)
	return lead
}

// EnrichAll enriches every match concurrently and returns leads in input
// order.
func (e *Enricher) EnrichAll(ctx context.Context, matches []model.OwnershipMatch) []model.EnrichedLead {
	leads := make([]model.EnrichedLead, len(matches))

	var g errgroup.Group
	if e.concurrency > 0 {
		g.SetLimit(e.concurrency)
	}
	for i, m := range matches {
		g.Go(func() error {
			leads[i] = e.Enrich(ctx, m)
			return nil
		})
	}
	_ = g.Wait()

	zap.L().Info("enrich: batch complete", zap.Int("leads", len(leads)))
	return leads
}
