package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/estate-leads/internal/browser"
	"github.com/sells-group/estate-leads/internal/config"
	"github.com/sells-group/estate-leads/internal/metrics"
)

func withConfig(t *testing.T, c *config.Config) {
	t.Helper()
	prev := cfg
	cfg = c
	t.Cleanup(func() { cfg = prev })
}

func TestInitStore_SQLite(t *testing.T) {
	withConfig(t, &config.Config{Store: config.StoreConfig{
		Driver:      "sqlite",
		DatabaseURL: filepath.Join(t.TempDir(), "ledger.db"),
	}})

	st, err := openStore(context.Background())
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck

	run, err := st.CreateRun(context.Background(), 1)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
}

func TestInitStore_UnsupportedDriver(t *testing.T) {
	withConfig(t, &config.Config{Store: config.StoreConfig{Driver: "mysql"}})

	_, err := initStore(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store driver: mysql")
}

func TestPropertySession(t *testing.T) {
	withConfig(t, &config.Config{Browser: config.BrowserConfig{PropertyDriver: "firecrawl"}})
	sess, err := propertySession()
	require.NoError(t, err)
	assert.IsType(t, &browser.FirecrawlSession{}, sess)

	cfg.Browser.PropertyDriver = "jina"
	sess, err = propertySession()
	require.NoError(t, err)
	assert.IsType(t, &browser.ReaderSession{}, sess)

	cfg.Browser.PropertyDriver = "chrome"
	_, err = propertySession()
	require.Error(t, err)
}

func TestInitSink(t *testing.T) {
	withConfig(t, &config.Config{})
	st := newTestStore(t)

	sink, ok := initSink(st).(metrics.Multi)
	require.True(t, ok)
	assert.Len(t, sink, 2)

	cfg.Metrics = config.MetricsConfig{WebhookURL: "https://hooks.example.com/metrics", Namespace: "re-lead-gen"}
	sink, ok = initSink(st).(metrics.Multi)
	require.True(t, ok)
	assert.Len(t, sink, 3)
}

func TestInitPublisher_Template(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.tmpl")
	bad := filepath.Join(dir, "bad.tmpl")
	require.NoError(t, os.WriteFile(good, []byte("Hello about {{.FirstName}}, {{.Sender}}"), 0o600))
	require.NoError(t, os.WriteFile(bad, []byte("Hello {{.FirstName"), 0o600))

	withConfig(t, &config.Config{
		SMS:     config.SMSConfig{Sender: "Jane", TemplatePath: good},
		Publish: config.PublishConfig{Concurrency: 2},
	})
	p, err := initPublisher(nil)
	require.NoError(t, err)
	require.NotNil(t, p)

	cfg.SMS.TemplatePath = bad
	_, err = initPublisher(nil)
	require.Error(t, err)

	cfg.SMS.TemplatePath = filepath.Join(dir, "missing.tmpl")
	_, err = initPublisher(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read sms template")
}

func TestInitSalesforce_MissingKey(t *testing.T) {
	withConfig(t, &config.Config{Salesforce: config.SalesforceConfig{
		ClientID: "client",
		KeyPath:  filepath.Join(t.TempDir(), "server.key"),
	}})

	_, err := initSalesforce()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read salesforce JWT private key")
}

func TestSeconds(t *testing.T) {
	assert.Equal(t, 5*time.Second, seconds(5))
	assert.Equal(t, time.Duration(0), seconds(0))
}
