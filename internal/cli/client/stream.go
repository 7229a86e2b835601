package client

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// StreamCmd creates the streaming search command.
func StreamCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "stream <query>",
		Short: "Search with streamed results",
		Long:  "Runs a product search over server-sent events and prints products as they arrive.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStream(cmd, args[0], limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "Number of results (1-10)")

	return cmd
}

func runStream(cmd *cobra.Command, query string, limit int) error {
	if limit < 1 || limit > 10 {
		return fmt.Errorf("limit must be between 1 and 10")
	}

	api, err := newAPIClient(cmd)
	if err != nil {
		return err
	}

	stream, err := api.StreamSearch(context.Background(), query, limit)
	if err != nil {
		return err
	}
	defer stream.Close()

	fmt.Printf("Streaming search for: %s\n\n", query)

	received := 0
	for stream.Next() {
		p := stream.Product()
		received++
		fmt.Printf("Product %d: %s\n", received, p.Title)
		fmt.Printf("   Price: %s\n", p.Price)
		fmt.Printf("   Relevance: %.2f%%\n\n", p.RelevanceScore*100)
	}
	if err := stream.Err(); err != nil {
		return err
	}

	if meta := stream.Metadata(); meta != nil && meta.TotalMatches > 0 {
		fmt.Printf("Total matches: %d\n", meta.TotalMatches)
	}
	fmt.Printf("Received %d products via streaming\n", received)
	if skipped := stream.Skipped(); skipped > 0 {
		fmt.Printf("Warning: %d undecodable frames skipped\n", skipped)
	}

	return nil
}
