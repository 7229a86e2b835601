package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the environment-driven settings shared by the CLI.
type Config struct {
	APIKey string `envconfig:"API_KEY"`
	APIURL string `envconfig:"API_URL"`
	Debug  bool   `envconfig:"DEBUG" default:"false"`

	SentryDSN         string `envconfig:"SENTRY_DSN"`
	SentryEnvironment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`

	SearchTimeout   time.Duration `envconfig:"SEARCH_TIMEOUT" default:"10s"`
	BatchTimeout    time.Duration `envconfig:"BATCH_TIMEOUT" default:"30s"`
	ClickTimeout    time.Duration `envconfig:"CLICK_TIMEOUT" default:"5s"`
	FeedbackTimeout time.Duration `envconfig:"FEEDBACK_TIMEOUT" default:"10s"`
}

// Load reads ADTOKENS_* environment variables, after loading .env if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("ADTOKENS", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

// MustLoad is Load for program startup; it exits on failure.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// HasSentry reports whether error telemetry is configured.
func (c *Config) HasSentry() bool {
	return c.SentryDSN != ""
}
