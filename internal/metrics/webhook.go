package metrics

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/estate-leads/internal/model"
)

// Payload is the JSON body a WebhookSink posts.
type Payload struct {
	RunID     string         `json:"run_id"`
	Namespace string         `json:"namespace"`
	Metrics   map[string]int `json:"metrics"`
	Timestamp time.Time      `json:"timestamp"`
}

// WebhookSink posts counters to an HTTP endpoint.
type WebhookSink struct {
	url       string
	namespace string
	client    *http.Client
}

// NewWebhookSink creates a WebhookSink. An empty url disables it.
func NewWebhookSink(url, namespace string) *WebhookSink {
	return &WebhookSink{
		url:       url,
		namespace: namespace,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Emit implements Sink.
func (w *WebhookSink) Emit(ctx context.Context, runID string, c model.Counters) error {
	if w.url == "" {
		return nil
	}

	payload, err := json.Marshal(Payload{
		RunID:     runID,
		Namespace: w.namespace,
		Metrics:   c.Named(),
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return eris.Wrap(err, "metrics: marshal payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "metrics: create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "metrics: webhook request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		return eris.Errorf("metrics: webhook returned status %d", resp.StatusCode)
	}
	zap.L().Debug("metrics: webhook delivered", zap.String("run_id", runID))
	return nil
}
