package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	adtokens "github.com/pa-arth/adtokens-go"
)

// BatchCmd creates the batch search command.
func BatchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "batch <query>...",
		Short: "Search several queries in one request",
		Long:  "Runs multiple product searches in a single batch request. Results come back in query order.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runBatch(cmd, args, limit, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 3, "Number of results per query (1-10)")

	return cmd
}

func runBatch(cmd *cobra.Command, queries []string, limit int, outputJSON bool) error {
	if limit < 1 || limit > 10 {
		return fmt.Errorf("limit must be between 1 and 10")
	}

	api, err := newAPIClient(cmd)
	if err != nil {
		return err
	}

	batch := make([]adtokens.BatchQuery, 0, len(queries))
	for _, q := range queries {
		batch = append(batch, adtokens.BatchQuery{Query: q, Limit: limit})
	}

	resp, err := api.BatchSearch(context.Background(), batch)
	if err != nil {
		return err
	}

	if outputJSON {
		return printJSON(resp)
	}

	for i, result := range resp.Results {
		fmt.Printf("Query %d: %s\n", i+1, queries[i])
		fmt.Printf("Found %d products\n\n", len(result.Results))
		printProducts(result.Results)
		if i < len(resp.Results)-1 {
			fmt.Println(strings.Repeat("-", 40))
		}
	}

	if resp.Metadata.TotalQueries > 0 {
		fmt.Printf("Processed %d queries", resp.Metadata.TotalQueries)
		if resp.Metadata.TotalTimeMS > 0 {
			fmt.Printf(" in %.2fms", resp.Metadata.TotalTimeMS)
		}
		fmt.Println()
	}

	return nil
}
