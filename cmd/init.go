package main

import (
	"context"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/estate-leads/internal/browser"
	"github.com/sells-group/estate-leads/internal/crm"
	"github.com/sells-group/estate-leads/internal/deathindex"
	"github.com/sells-group/estate-leads/internal/enrich"
	"github.com/sells-group/estate-leads/internal/metrics"
	"github.com/sells-group/estate-leads/internal/pipeline"
	"github.com/sells-group/estate-leads/internal/property"
	"github.com/sells-group/estate-leads/internal/publish"
	"github.com/sells-group/estate-leads/internal/store"
	"github.com/sells-group/estate-leads/pkg/endato"
	"github.com/sells-group/estate-leads/pkg/firecrawl"
	"github.com/sells-group/estate-leads/pkg/geocode"
	"github.com/sells-group/estate-leads/pkg/jina"
	sfpkg "github.com/sells-group/estate-leads/pkg/salesforce"
	"github.com/sells-group/estate-leads/pkg/skipengine"
	"github.com/sells-group/estate-leads/pkg/twilio"
)

// processEnv holds the ledger and the wired pipeline used by the process and
// serve commands.
type processEnv struct {
	Store    store.Store
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the environment.
func (e *processEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// openStore connects to the ledger and applies its schema.
func openStore(ctx context.Context) (store.Store, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

func initSalesforce() (sfpkg.Client, error) {
	pemData, err := os.ReadFile(cfg.Salesforce.KeyPath)
	if err != nil {
		return nil, eris.Wrap(err, "read salesforce JWT private key")
	}

	return sfpkg.Connect(sfpkg.Credentials{
		LoginURL:    cfg.Salesforce.LoginURL,
		Username:    cfg.Salesforce.Username,
		ConsumerKey: cfg.Salesforce.ClientID,
		PrivateKey:  string(pemData),
	}, sfpkg.WithRateLimit(cfg.Salesforce.RateLimit))
}

func initCRM() (*crm.Salesforce, error) {
	sf, err := initSalesforce()
	if err != nil {
		return nil, err
	}
	return crm.NewSalesforce(sf, crm.Settings{
		OwnerID:     cfg.Salesforce.OwnerID,
		Stage:       cfg.Salesforce.Stage,
		CloseInDays: cfg.Salesforce.CloseInDays,
	}), nil
}

func newFirecrawl() firecrawl.Client {
	var opts []firecrawl.Option
	if cfg.Firecrawl.BaseURL != "" {
		opts = append(opts, firecrawl.WithBaseURL(cfg.Firecrawl.BaseURL))
	}
	return firecrawl.NewClient(cfg.Firecrawl.Key, opts...)
}

// propertySession picks the renderer for the assessor site. The site only
// needs GET navigation, so the Jina reader can stand in for Firecrawl.
func propertySession() (browser.Session, error) {
	switch cfg.Browser.PropertyDriver {
	case "firecrawl":
		return browser.NewFirecrawlSession(newFirecrawl()), nil
	case "jina":
		var opts []jina.Option
		if cfg.Jina.BaseURL != "" {
			opts = append(opts, jina.WithBaseURL(cfg.Jina.BaseURL))
		}
		return browser.NewReaderSession(jina.NewClient(cfg.Jina.Key, opts...), cfg.Browser.WaitForSelector), nil
	default:
		return nil, eris.Errorf("unsupported property driver: %s", cfg.Browser.PropertyDriver)
	}
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// initScanner builds the death index scanner. The registry form needs clicks
// and typing, so it always runs through Firecrawl.
func initScanner() *deathindex.Scanner {
	src := deathindex.NewRegistry(browser.NewFirecrawlSession(newFirecrawl()), deathindex.RegistryConfig{
		URL:          cfg.Scan.RegistryURL,
		SearchSettle: seconds(cfg.Scan.SearchSettleSecs),
		PageSettle:   seconds(cfg.Scan.PageSettleSecs),
	})
	return deathindex.NewScanner(src, deathindex.WithMaxPages(cfg.Scan.MaxPages))
}

func initEnricher() *enrich.Enricher {
	geoOpts := []geocode.Option{geocode.WithRateLimit(cfg.Google.RateLimit)}
	if cfg.Google.BaseURL != "" {
		geoOpts = append(geoOpts, geocode.WithBaseURL(cfg.Google.BaseURL))
	}
	skipOpts := []skipengine.Option{skipengine.WithRateLimit(cfg.SkipEngine.RateLimit)}
	if cfg.SkipEngine.BaseURL != "" {
		skipOpts = append(skipOpts, skipengine.WithBaseURL(cfg.SkipEngine.BaseURL))
	}
	endatoOpts := []endato.Option{endato.WithRateLimit(cfg.Endato.RateLimit)}
	if cfg.Endato.BaseURL != "" {
		endatoOpts = append(endatoOpts, endato.WithBaseURL(cfg.Endato.BaseURL))
	}

	return enrich.New(
		geocode.NewClient(cfg.Google.Key, geoOpts...),
		skipengine.NewClient(cfg.SkipEngine.Key, skipOpts...),
		endato.NewClient(cfg.Endato.APName, cfg.Endato.APPassword, endatoOpts...),
		enrich.WithConcurrency(cfg.Enrich.Concurrency),
	)
}

func initPublisher(c publish.CRM) (*publish.Publisher, error) {
	twOpts := []twilio.Option{twilio.WithRateLimit(cfg.Twilio.RateLimit)}
	if cfg.Twilio.BaseURL != "" {
		twOpts = append(twOpts, twilio.WithBaseURL(cfg.Twilio.BaseURL))
	}
	sms := twilio.NewClient(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.MessagingServiceSID, twOpts...)

	opts := []publish.Option{
		publish.WithSender(cfg.SMS.Sender),
		publish.WithConcurrency(cfg.Publish.Concurrency),
	}
	if cfg.SMS.TemplatePath != "" {
		text, err := os.ReadFile(cfg.SMS.TemplatePath)
		if err != nil {
			return nil, eris.Wrap(err, "read sms template")
		}
		tmpl, err := publish.ParseTemplate(string(text))
		if err != nil {
			return nil, err
		}
		opts = append(opts, publish.WithTemplate(tmpl))
	}
	return publish.New(c, sms, opts...), nil
}

// initSink fans run counters out to the log, the ledger and the optional
// webhook.
func initSink(st store.Store) metrics.Sink {
	sinks := metrics.Multi{metrics.LogSink{}, metrics.StoreSink{Recorder: st}}
	if cfg.Metrics.WebhookURL != "" {
		sinks = append(sinks, metrics.NewWebhookSink(cfg.Metrics.WebhookURL, cfg.Metrics.Namespace))
	}
	return sinks
}

// initProcess sets up the ledger, all provider clients and the pipeline.
// Callers should defer env.Close().
func initProcess(ctx context.Context) (*processEnv, error) {
	if err := cfg.Validate("process"); err != nil {
		return nil, err
	}

	sess, err := propertySession()
	if err != nil {
		return nil, err
	}
	matcher := property.NewMatcher(property.NewSpatialest(sess, cfg.Browser.PropertyURL, seconds(cfg.Browser.PropertySettleSecs)))

	sfCRM, err := initCRM()
	if err != nil {
		return nil, err
	}
	publisher, err := initPublisher(sfCRM)
	if err != nil {
		return nil, err
	}

	st, err := openStore(ctx)
	if err != nil {
		return nil, err
	}

	zap.L().Info("process environment ready",
		zap.String("store", cfg.Store.Driver),
		zap.String("property_driver", cfg.Browser.PropertyDriver),
		zap.Bool("metrics_webhook", cfg.Metrics.WebhookURL != ""),
	)

	return &processEnv{
		Store:    st,
		Pipeline: pipeline.New(st, matcher, initEnricher(), publisher, initSink(st)),
	}, nil
}
