package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	App       AppConfig
	DB        DBConfig
	Mail      MailConfig
	Form      FormConfig
	Relay     RelayConfig
	Pricing   PricingConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Env         string `envconfig:"APP_ENV" default:"dev"`
	Port        string `envconfig:"PORT" default:"5000"`
	FrontendURL string `envconfig:"FRONTEND_URL" default:"http://localhost:3000"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat   string `envconfig:"LOG_FORMAT" default:"json"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	Path string `envconfig:"DB_PATH" default:"./helousound.db"`
}

// MailConfig configures the Resend email transport.
type MailConfig struct {
	ResendAPIKey string        `envconfig:"RESEND_API_KEY"`
	From         string        `envconfig:"QUOTE_FROM_EMAIL" default:"quotes@helousound.com"`
	To           string        `envconfig:"QUOTE_TO_EMAIL" default:"helousound@gmail.com"`
	Timeout      time.Duration `envconfig:"TRANSPORT_TIMEOUT" default:"15s"`
}

// FormConfig configures the form-backend transport used when no mail key is set.
type FormConfig struct {
	Endpoint string `envconfig:"FORM_ENDPOINT"`
	Name     string `envconfig:"FORM_NAME" default:"quote-request"`
}

// RelayConfig points at another quote relay that forwards requests on our behalf.
type RelayConfig struct {
	URL string `envconfig:"QUOTE_RELAY_URL"`
}

type PricingConfig struct {
	SeedIncluded bool `envconfig:"PRICING_SEED_INCLUDED" default:"false"`
	StrictAddons bool `envconfig:"PRICING_STRICT_ADDONS" default:"false"`
}

// RedisConfig is optional; rate limiting is disabled without a URL.
type RedisConfig struct {
	URL string `envconfig:"REDIS_URL"`
}

type RateLimitConfig struct {
	Window time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1h"`
	Max    int           `envconfig:"RATE_LIMIT_MAX" default:"10"`
	// TrustProxy honours X-Forwarded-For; enable only behind a reverse proxy.
	TrustProxy bool `envconfig:"RATE_LIMIT_TRUST_PROXY" default:"false"`
}

// Load reads a local .env file when present and then the process environment.
// Variables already set in the environment win over the file.
func Load() (*Config, error) {
	// Best-effort: production injects real environment variables.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Warnings lists configuration gaps that degrade but do not block startup.
func (c *Config) Warnings() []string {
	var warnings []string
	if c.Mail.ResendAPIKey == "" && c.Relay.URL == "" && c.Form.Endpoint == "" {
		warnings = append(warnings, "none of RESEND_API_KEY, QUOTE_RELAY_URL or FORM_ENDPOINT is set; quote requests will fail")
	}
	if c.Redis.URL == "" {
		warnings = append(warnings, "REDIS_URL is not set; quote request rate limiting is disabled")
	}
	return warnings
}
