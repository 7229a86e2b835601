package client

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	adtokens "github.com/pa-arth/adtokens-go"
)

// SearchCmd creates the search command.
func SearchCmd() *cobra.Command {
	var (
		limit     int
		sessionID string
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search for product recommendations",
		Long:  "Searches the AdTokens catalog for products matching a user intent.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runSearch(cmd, args[0], limit, sessionID, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 3, "Number of results (1-10)")
	cmd.Flags().StringVar(&sessionID, "session", "", "Session ID from a previous search")

	return cmd
}

func runSearch(cmd *cobra.Command, query string, limit int, sessionID string, outputJSON bool) error {
	if limit < 1 || limit > 10 {
		return fmt.Errorf("limit must be between 1 and 10")
	}

	api, err := newAPIClient(cmd)
	if err != nil {
		return err
	}

	resp, err := api.SearchWithOptions(context.Background(), query, limit, adtokens.SearchOptions{
		SessionID: sessionID,
	})
	if err != nil {
		return err
	}

	if outputJSON {
		return printJSON(resp)
	}

	fmt.Printf("Found %d products\n", len(resp.Results))
	fmt.Printf("Request ID: %s\n\n", resp.RequestID)
	printProducts(resp.Results)

	if resp.Metadata.TotalMatches > 0 {
		fmt.Printf("Total matches: %d\n", resp.Metadata.TotalMatches)
	}
	if resp.Metadata.SessionID != "" {
		fmt.Printf("Session ID: %s\n", resp.Metadata.SessionID)
	}

	return nil
}
