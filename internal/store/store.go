// Package store is the run ledger: one row per process run with its
// status, counters and enriched leads.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/estate-leads/internal/model"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = eris.New("store: not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// DefaultListLimit caps ListRuns when the filter has no limit.
const DefaultListLimit = 100

// Store defines the persistence interface for process runs.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, namesExtracted int) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	FailRun(ctx context.Context, runID string, reason string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Counters and leads
	RecordMetrics(ctx context.Context, runID string, c model.Counters) error
	SaveLeads(ctx context.Context, runID string, leads []model.EnrichedLead) error
	ListLeads(ctx context.Context, runID string) ([]model.EnrichedLead, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

func limitOf(f RunFilter) int {
	if f.Limit <= 0 {
		return DefaultListLimit
	}
	return f.Limit
}
