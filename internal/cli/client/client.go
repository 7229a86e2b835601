// Package client implements the adtokens CLI commands.
package client

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	adtokens "github.com/pa-arth/adtokens-go"
	"github.com/pa-arth/adtokens-go/internal/config"
)

const (
	envAPIKey = "ADTOKENS_API_KEY"
	envAPIURL = "ADTOKENS_API_URL"
)

// newAPIClient builds an adtokens.Client with the credential cascade:
// flag -> env -> global config -> default base URL.
func newAPIClient(cmd *cobra.Command) (*adtokens.Client, error) {
	_ = godotenv.Load()

	var apiKey, baseURL string
	if cmd != nil {
		if flagKey, err := cmd.Flags().GetString("api-key"); err == nil && flagKey != "" {
			apiKey = flagKey
		}
		if flagURL, err := cmd.Flags().GetString("api-url"); err == nil && flagURL != "" {
			baseURL = flagURL
		}
	}

	if apiKey == "" {
		apiKey = os.Getenv(envAPIKey)
	}
	if baseURL == "" {
		baseURL = os.Getenv(envAPIURL)
	}

	if apiKey == "" || baseURL == "" {
		globalConfig, err := LoadGlobalConfig()
		if err != nil {
			return nil, err
		}
		if globalConfig != nil {
			if apiKey == "" && globalConfig.APIKey != "" {
				apiKey = globalConfig.APIKey
			}
			if baseURL == "" && globalConfig.APIURL != "" {
				baseURL = globalConfig.APIURL
			}
		}
	}

	if apiKey == "" {
		return nil, fmt.Errorf("%s not set (run 'adtokens auth login' or set environment variable)", envAPIKey)
	}

	opts := []adtokens.Option{}
	if baseURL != "" {
		opts = append(opts, adtokens.WithBaseURL(baseURL))
	}

	if cfg, err := config.Load(); err == nil {
		opts = append(opts, adtokens.WithTimeouts(adtokens.Timeouts{
			Search:   cfg.SearchTimeout,
			Batch:    cfg.BatchTimeout,
			Click:    cfg.ClickTimeout,
			Feedback: cfg.FeedbackTimeout,
		}))
	}

	return adtokens.NewClient(apiKey, opts...)
}

func printJSON(v interface{}) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(output))
	return nil
}

func printProducts(products []adtokens.Product) {
	for i, p := range products {
		fmt.Printf("%d. %s\n", i+1, p.Title)
		fmt.Printf("   Price: %s\n", p.Price)
		fmt.Printf("   Merchant: %s\n", p.Merchant)
		fmt.Printf("   Relevance: %.2f%%\n", p.RelevanceScore*100)
		if p.RelevanceExplanation != "" {
			fmt.Printf("   Explanation: %s\n", p.RelevanceExplanation)
		}
		fmt.Printf("   URL: %s\n", p.URL)
		fmt.Printf("   Impression ID: %s\n", p.ImpressionID)
		fmt.Println()
	}
	if len(products) > 0 && products[0].DisclosureText != "" {
		fmt.Println(products[0].DisclosureText)
	}
}
