package client

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// ClickCmd creates the click tracking command.
func ClickCmd() *cobra.Command {
	var requestID string

	cmd := &cobra.Command{
		Use:   "click <impression-id>",
		Short: "Track a product click",
		Long: `Records a click on a product impression for attribution compliance.

Tracking is best-effort: a failure is reported as a warning and the command
still exits successfully, so it can be wired into redirect flows safely.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runClick(cmd, args[0], requestID, outputJSON)
		},
	}

	cmd.Flags().StringVar(&requestID, "request-id", "", "Request ID from the originating search")

	return cmd
}

func runClick(cmd *cobra.Command, impressionID, requestID string, outputJSON bool) error {
	api, err := newAPIClient(cmd)
	if err != nil {
		return err
	}

	result := api.TrackClick(context.Background(), impressionID, requestID)

	if outputJSON {
		out := map[string]interface{}{"tracked": result.Tracked}
		if result.Timestamp != "" {
			out["timestamp"] = result.Timestamp
		}
		if result.Err != nil {
			out["warning"] = result.Err.Error()
		}
		return printJSON(out)
	}

	if !result.Tracked {
		fmt.Printf("Warning: failed to track click: %v\n", result.Err)
		return nil
	}

	fmt.Println("Click tracked successfully")
	if result.Timestamp != "" {
		fmt.Printf("Timestamp: %s\n", result.Timestamp)
	}

	return nil
}
