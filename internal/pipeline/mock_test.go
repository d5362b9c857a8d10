package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/estate-leads/internal/model"
	"github.com/sells-group/estate-leads/internal/store"
)

// --- Store Mock ---

type mockStore struct {
	mock.Mock
}

func (m *mockStore) CreateRun(ctx context.Context, namesExtracted int) (*model.Run, error) {
	args := m.Called(ctx, namesExtracted)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Run), args.Error(1)
}

func (m *mockStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	return m.Called(ctx, runID, status).Error(0)
}

func (m *mockStore) FailRun(ctx context.Context, runID string, reason string) error {
	return m.Called(ctx, runID, reason).Error(0)
}

func (m *mockStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Run), args.Error(1)
}

func (m *mockStore) ListRuns(ctx context.Context, filter store.RunFilter) ([]model.Run, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Run), args.Error(1)
}

func (m *mockStore) RecordMetrics(ctx context.Context, runID string, c model.Counters) error {
	return m.Called(ctx, runID, c).Error(0)
}

func (m *mockStore) SaveLeads(ctx context.Context, runID string, leads []model.EnrichedLead) error {
	return m.Called(ctx, runID, leads).Error(0)
}

func (m *mockStore) ListLeads(ctx context.Context, runID string) ([]model.EnrichedLead, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.EnrichedLead), args.Error(1)
}

func (m *mockStore) Migrate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockStore) Close() error {
	return m.Called().Error(0)
}

// --- Stage Mocks ---

type mockMatcher struct {
	mock.Mock
}

func (m *mockMatcher) MatchAll(ctx context.Context, records []model.DeceasedRecord) []model.OwnershipMatch {
	return m.Called(ctx, records).Get(0).([]model.OwnershipMatch)
}

type mockEnricher struct {
	mock.Mock
}

func (m *mockEnricher) EnrichAll(ctx context.Context, matches []model.OwnershipMatch) []model.EnrichedLead {
	return m.Called(ctx, matches).Get(0).([]model.EnrichedLead)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishAll(ctx context.Context, leads []model.EnrichedLead) model.Counters {
	return m.Called(ctx, leads).Get(0).(model.Counters)
}

type mockSink struct {
	mock.Mock
}

func (m *mockSink) Emit(ctx context.Context, runID string, c model.Counters) error {
	return m.Called(ctx, runID, c).Error(0)
}
