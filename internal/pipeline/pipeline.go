// Package pipeline runs the process phase: property matching, enrichment,
// phone reconciliation and publishing for one batch.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/estate-leads/internal/metrics"
	"github.com/sells-group/estate-leads/internal/model"
	"github.com/sells-group/estate-leads/internal/phone"
	"github.com/sells-group/estate-leads/internal/store"
)

// Matcher links deceased records to property records.
type Matcher interface {
	MatchAll(ctx context.Context, records []model.DeceasedRecord) []model.OwnershipMatch
}

// Enricher turns matches into enriched leads, one per match, in order.
type Enricher interface {
	EnrichAll(ctx context.Context, matches []model.OwnershipMatch) []model.EnrichedLead
}

// Publisher writes leads out and returns the folded counters.
type Publisher interface {
	PublishAll(ctx context.Context, leads []model.EnrichedLead) model.Counters
}

// Pipeline wires the process stages to the run ledger.
type Pipeline struct {
	store     store.Store
	matcher   Matcher
	enricher  Enricher
	publisher Publisher
	sink      metrics.Sink
	now       func() time.Time
}

// New creates a Pipeline.
func New(st store.Store, m Matcher, e Enricher, p Publisher, sink metrics.Sink) *Pipeline {
	return &Pipeline{
		store:     st,
		matcher:   m,
		enricher:  e,
		publisher: p,
		sink:      sink,
		now:       time.Now,
	}
}

// Run processes one batch. It only fails when the run cannot be recorded or
// ctx is cancelled; per-lead problems degrade that lead.
func (p *Pipeline) Run(ctx context.Context, batch model.Batch) (*model.RunReport, error) {
	start := p.now()

	run, err := p.store.CreateRun(ctx, batch.NumberOfNamesExtracted)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: create run")
	}
	return p.process(ctx, run.ID, batch, start)
}

// Resume processes a batch for a run that was already recorded, as the
// HTTP intake does.
func (p *Pipeline) Resume(ctx context.Context, runID string, batch model.Batch) (*model.RunReport, error) {
	return p.process(ctx, runID, batch, p.now())
}

func (p *Pipeline) process(ctx context.Context, runID string, batch model.Batch, start time.Time) (*model.RunReport, error) {
	log := zap.L().With(zap.String("run_id", runID))
	bookkeeping := context.WithoutCancel(ctx)

	setStatus := func(status model.RunStatus) {
		if err := p.store.UpdateRunStatus(bookkeeping, runID, status); err != nil {
			log.Warn("pipeline: failed to update status", zap.Error(err))
		}
	}

	records := batch.Records()
	log.Info("pipeline: starting run",
		zap.Int("names_extracted", batch.NumberOfNamesExtracted),
		zap.Int("records", len(records)),
	)

	setStatus(model.RunStatusMatching)
	matches := p.matcher.MatchAll(ctx, records)
	log.Info("pipeline: property matching complete", zap.Int("homes_found", len(matches)))

	setStatus(model.RunStatusEnriching)
	leads := p.enricher.EnrichAll(ctx, matches)
	phone.ApplyAll(leads)

	setStatus(model.RunStatusPublishing)
	counters := p.publisher.PublishAll(ctx, leads)
	counters.HomesFound = len(matches)
	counters.LeadsExtracted = batch.NumberOfNamesExtracted

	if err := p.store.SaveLeads(bookkeeping, runID, leads); err != nil {
		log.Warn("pipeline: failed to save leads", zap.Error(err))
	}
	if err := p.sink.Emit(bookkeeping, runID, counters); err != nil {
		log.Warn("pipeline: failed to emit metrics", zap.Error(err))
	}

	report := &model.RunReport{
		RunID:    runID,
		Counters: counters,
		Leads:    leads,
		Elapsed:  p.now().Sub(start),
	}

	if err := ctx.Err(); err != nil {
		if failErr := p.store.FailRun(bookkeeping, runID, err.Error()); failErr != nil {
			log.Warn("pipeline: failed to record failure", zap.Error(failErr))
		}
		return report, eris.Wrap(err, "pipeline: run interrupted")
	}

	setStatus(model.RunStatusComplete)
	LogSummary(log, batch.NumberOfNamesExtracted, report)
	return report, nil
}

// LogSummary writes the end-of-run totals.
func LogSummary(log *zap.Logger, namesExtracted int, r *model.RunReport) {
	log.Info("pipeline: run complete",
		zap.Int("names_extracted", namesExtracted),
		zap.Int("homes_found", r.Counters.HomesFound),
		zap.Int("texts_sent", r.Counters.TextsSent),
		zap.Int("contacts_created", r.Counters.ContactsCreated),
		zap.Int("deals_created", r.Counters.DealsCreated),
		zap.String("elapsed", FormatElapsed(r.Elapsed)),
	)
}

// FormatElapsed renders d as "Xm Ys".
func FormatElapsed(d time.Duration) string {
	d = d.Round(time.Second)
	m := int(d / time.Minute)
	s := int((d % time.Minute) / time.Second)
	return fmt.Sprintf("%dm %ds", m, s)
}
