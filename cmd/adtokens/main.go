package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pa-arth/adtokens-go/internal/cli"
	"github.com/pa-arth/adtokens-go/internal/cli/client"
	"github.com/pa-arth/adtokens-go/internal/config"
	"github.com/pa-arth/adtokens-go/internal/telemetry"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "adtokens",
		Short: "AdTokens CLI - Contextual product recommendations",
		Long: `AdTokens CLI searches the AdTokens product-recommendation API, tracks
click attribution, and submits relevance feedback.

Environment variables:
  ADTOKENS_API_KEY   API key for authentication (required)
  ADTOKENS_API_URL   API base URL (default: https://api.ad-tokens.com)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-key", "", "API key for authentication (overrides env and config)")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.SearchCmd())
	rootCmd.AddCommand(client.BatchCmd())
	rootCmd.AddCommand(client.StreamCmd())
	rootCmd.AddCommand(client.ClickCmd())
	rootCmd.AddCommand(client.FeedbackCmd())
	rootCmd.AddCommand(client.AuthCmd())

	cfg := config.MustLoad()

	shutdown, _ := telemetry.Init(telemetry.Config{
		DSN:         cfg.SentryDSN,
		Environment: cfg.SentryEnvironment,
		Debug:       cfg.Debug,
	})
	defer shutdown()

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		telemetry.CaptureError(err)
		fmt.Fprintln(os.Stderr, err)
		shutdown()
		os.Exit(1)
	}
}
