// Package telemetry provides optional Sentry error reporting for the CLI.
package telemetry

import (
	"log"
	"time"

	"github.com/getsentry/sentry-go"
)

const serviceName = "adtokens-cli"

// Config holds the configuration for Sentry initialization.
type Config struct {
	DSN         string
	Environment string
	Debug       bool
}

// Init initializes Sentry. Returns a shutdown function that flushes pending
// events. If DSN is empty, reporting is disabled and the shutdown function is
// a no-op.
func Init(cfg Config) (func(), error) {
	if cfg.DSN == "" {
		return func() {}, nil
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Debug:       cfg.Debug,
		ServerName:  serviceName,
	})
	if err != nil {
		log.Printf("sentry: failed to initialize (continuing without reporting): %v", err)
		return func() {}, nil
	}

	shutdown := func() {
		sentry.Flush(2 * time.Second)
	}

	return shutdown, nil
}

// CaptureError reports an error if Sentry is initialized.
func CaptureError(err error) {
	if err == nil {
		return
	}
	sentry.CaptureException(err)
}
