// Package metrics emits the per-run lead counters.
package metrics

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/estate-leads/internal/model"
)

// Sink receives the counters of a finished run.
type Sink interface {
	Emit(ctx context.Context, runID string, c model.Counters) error
}

// LogSink writes counters to the global logger.
type LogSink struct{}

// Emit implements Sink.
func (LogSink) Emit(_ context.Context, runID string, c model.Counters) error {
	fields := []zap.Field{zap.String("run_id", runID)}
	for _, name := range Names {
		fields = append(fields, zap.Int(name, c.Named()[name]))
	}
	zap.L().Info("metrics: run counters", fields...)
	return nil
}

// Names lists the counters in emission order.
var Names = []string{"HomesFound", "LeadsExtracted", "TextsSent", "ContactsCreated", "DealsCreated"}

// Recorder persists run counters.
type Recorder interface {
	RecordMetrics(ctx context.Context, runID string, c model.Counters) error
}

// StoreSink writes counters to the run ledger.
type StoreSink struct {
	Recorder Recorder
}

// Emit implements Sink.
func (s StoreSink) Emit(ctx context.Context, runID string, c model.Counters) error {
	if err := s.Recorder.RecordMetrics(ctx, runID, c); err != nil {
		return eris.Wrap(err, "metrics: record")
	}
	return nil
}

// Multi fans counters out to every sink. Every sink is tried; their errors
// are joined.
type Multi []Sink

// Emit implements Sink.
func (m Multi) Emit(ctx context.Context, runID string, c model.Counters) error {
	var errs []error
	for _, s := range m {
		if err := s.Emit(ctx, runID, c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
