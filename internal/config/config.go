package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Scan       ScanConfig       `yaml:"scan" mapstructure:"scan"`
	Browser    BrowserConfig    `yaml:"browser" mapstructure:"browser"`
	Firecrawl  FirecrawlConfig  `yaml:"firecrawl" mapstructure:"firecrawl"`
	Jina       JinaConfig       `yaml:"jina" mapstructure:"jina"`
	Google     GoogleConfig     `yaml:"google" mapstructure:"google"`
	SkipEngine SkipEngineConfig `yaml:"skipengine" mapstructure:"skipengine"`
	Endato     EndatoConfig     `yaml:"endato" mapstructure:"endato"`
	Salesforce SalesforceConfig `yaml:"salesforce" mapstructure:"salesforce"`
	Twilio     TwilioConfig     `yaml:"twilio" mapstructure:"twilio"`
	SMS        SMSConfig        `yaml:"sms" mapstructure:"sms"`
	Publish    PublishConfig    `yaml:"publish" mapstructure:"publish"`
	Enrich     EnrichConfig     `yaml:"enrich" mapstructure:"enrich"`
	Metrics    MetricsConfig    `yaml:"metrics" mapstructure:"metrics"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// StoreConfig configures the run ledger backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ServerConfig configures the batch intake server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// ScanConfig configures the death index scan.
type ScanConfig struct {
	RegistryURL      string `yaml:"registry_url" mapstructure:"registry_url"`
	MaxPages         int    `yaml:"max_pages" mapstructure:"max_pages"`
	SearchSettleSecs int    `yaml:"search_settle_secs" mapstructure:"search_settle_secs"`
	PageSettleSecs   int    `yaml:"page_settle_secs" mapstructure:"page_settle_secs"`
	SubmitURL        string `yaml:"submit_url" mapstructure:"submit_url"`
}

// BrowserConfig selects how the assessor site is rendered.
type BrowserConfig struct {
	PropertyDriver     string `yaml:"property_driver" mapstructure:"property_driver"`
	PropertyURL        string `yaml:"property_url" mapstructure:"property_url"`
	PropertySettleSecs int    `yaml:"property_settle_secs" mapstructure:"property_settle_secs"`
	WaitForSelector    string `yaml:"wait_for_selector" mapstructure:"wait_for_selector"`
}

// FirecrawlConfig holds Firecrawl API settings.
type FirecrawlConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// JinaConfig holds Jina AI Reader settings.
type JinaConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// GoogleConfig holds Google Geocoding API settings.
type GoogleConfig struct {
	Key       string  `yaml:"key" mapstructure:"key"`
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// SkipEngineConfig holds skip-trace API settings.
type SkipEngineConfig struct {
	Key       string  `yaml:"key" mapstructure:"key"`
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// EndatoConfig holds people-search API settings.
type EndatoConfig struct {
	APName     string  `yaml:"ap_name" mapstructure:"ap_name"`
	APPassword string  `yaml:"ap_password" mapstructure:"ap_password"`
	BaseURL    string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit  float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// SalesforceConfig holds Salesforce JWT auth and record defaults.
type SalesforceConfig struct {
	ClientID    string  `yaml:"client_id" mapstructure:"client_id"`
	Username    string  `yaml:"username" mapstructure:"username"`
	KeyPath     string  `yaml:"key_path" mapstructure:"key_path"`
	LoginURL    string  `yaml:"login_url" mapstructure:"login_url"`
	OwnerID     string  `yaml:"owner_id" mapstructure:"owner_id"`
	Stage       string  `yaml:"stage" mapstructure:"stage"`
	CloseInDays int     `yaml:"close_in_days" mapstructure:"close_in_days"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// TwilioConfig holds Twilio messaging credentials.
type TwilioConfig struct {
	AccountSID          string  `yaml:"account_sid" mapstructure:"account_sid"`
	AuthToken           string  `yaml:"auth_token" mapstructure:"auth_token"`
	MessagingServiceSID string  `yaml:"messaging_service_sid" mapstructure:"messaging_service_sid"`
	BaseURL             string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit           float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// SMSConfig configures the outreach message.
type SMSConfig struct {
	Sender       string `yaml:"sender" mapstructure:"sender"`
	TemplatePath string `yaml:"template_path" mapstructure:"template_path"`
}

// PublishConfig configures the publish stage.
type PublishConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// EnrichConfig configures the enrichment stage.
type EnrichConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// MetricsConfig configures where run counters are sent.
type MetricsConfig struct {
	Namespace  string `yaml:"namespace" mapstructure:"namespace"`
	WebhookURL string `yaml:"webhook_url" mapstructure:"webhook_url"`
}

// Load reads configuration from .env, the config file and the environment.
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ESTATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "estate-leads.db")
	v.SetDefault("store.max_conns", 4)
	v.SetDefault("store.min_conns", 1)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("scan.max_pages", 500)
	v.SetDefault("scan.search_settle_secs", 5)
	v.SetDefault("scan.page_settle_secs", 3)
	v.SetDefault("browser.property_driver", "firecrawl")
	v.SetDefault("browser.property_settle_secs", 5)
	v.SetDefault("firecrawl.base_url", "https://api.firecrawl.dev/v2")
	v.SetDefault("jina.base_url", "https://r.jina.ai")
	v.SetDefault("google.rate_limit", 10)
	v.SetDefault("skipengine.rate_limit", 5)
	v.SetDefault("endato.rate_limit", 5)
	v.SetDefault("salesforce.login_url", "https://login.salesforce.com")
	v.SetDefault("salesforce.stage", "Prospecting")
	v.SetDefault("salesforce.close_in_days", 90)
	v.SetDefault("salesforce.rate_limit", 10)
	v.SetDefault("twilio.rate_limit", 1)
	v.SetDefault("sms.sender", "The Estate Team")
	v.SetDefault("publish.concurrency", 5)
	v.SetDefault("enrich.concurrency", 10)
	v.SetDefault("metrics.namespace", "re-lead-gen")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// loadDotEnv loads path into the environment when it exists. Variables
// already set are not overridden.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return eris.Wrapf(err, "config: load %s", path)
	}
	return nil
}

// Validate checks that the settings required by mode are present. Modes are
// "scan", "process" and "serve".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Sprintf("store.driver %q is not supported", c.Store.Driver))
	}
	if c.Store.DatabaseURL == "" {
		errs = append(errs, "store.database_url is required")
	}

	switch mode {
	case "scan":
		errs = append(errs, c.validateScan()...)
	case "process":
		errs = append(errs, c.validateProcess()...)
	case "serve":
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
		errs = append(errs, c.validateProcess()...)
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateScan() []string {
	var errs []string
	if c.Firecrawl.Key == "" {
		errs = append(errs, "firecrawl.key is required")
	}
	if c.Scan.MaxPages < 1 {
		errs = append(errs, "scan.max_pages must be >= 1")
	}
	return errs
}

func (c *Config) validateProcess() []string {
	var errs []string
	switch c.Browser.PropertyDriver {
	case "firecrawl":
		if c.Firecrawl.Key == "" {
			errs = append(errs, "firecrawl.key is required")
		}
	case "jina":
	default:
		errs = append(errs, fmt.Sprintf("browser.property_driver %q is not supported", c.Browser.PropertyDriver))
	}

	required := []struct {
		name, value string
	}{
		{"google.key", c.Google.Key},
		{"skipengine.key", c.SkipEngine.Key},
		{"endato.ap_name", c.Endato.APName},
		{"endato.ap_password", c.Endato.APPassword},
		{"salesforce.client_id", c.Salesforce.ClientID},
		{"salesforce.username", c.Salesforce.Username},
		{"salesforce.key_path", c.Salesforce.KeyPath},
		{"twilio.account_sid", c.Twilio.AccountSID},
		{"twilio.auth_token", c.Twilio.AuthToken},
		{"twilio.messaging_service_sid", c.Twilio.MessagingServiceSID},
	}
	for _, r := range required {
		if r.value == "" {
			errs = append(errs, r.name+" is required")
		}
	}

	if c.Publish.Concurrency < 1 || c.Publish.Concurrency > 50 {
		errs = append(errs, "publish.concurrency must be between 1 and 50")
	}
	// 0 fans out over the whole batch.
	if c.Enrich.Concurrency < 0 || c.Enrich.Concurrency > 100 {
		errs = append(errs, "enrich.concurrency must be between 0 and 100")
	}
	return errs
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
