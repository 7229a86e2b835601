package client

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	adtokens "github.com/pa-arth/adtokens-go"
)

// FeedbackCmd creates the relevance feedback command.
func FeedbackCmd() *cobra.Command {
	var (
		notRelevant bool
		reason      string
		clicked     bool
	)

	cmd := &cobra.Command{
		Use:   "feedback <request-id> <product-id>",
		Short: "Submit relevance feedback for a product",
		Long:  "Reports whether a recommended product was relevant to the user's intent. Feedback improves future recommendations.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			opts := adtokens.FeedbackOptions{Reason: reason}
			if cmd.Flags().Changed("clicked") {
				opts.UserClicked = &clicked
			}

			return runFeedback(cmd, args[0], args[1], !notRelevant, opts, outputJSON)
		},
	}

	cmd.Flags().BoolVar(&notRelevant, "not-relevant", false, "Mark the product as not relevant")
	cmd.Flags().StringVar(&reason, "reason", "", "Why the product was or wasn't relevant")
	cmd.Flags().BoolVar(&clicked, "clicked", false, "Whether the user clicked the product")

	return cmd
}

func runFeedback(cmd *cobra.Command, requestID, productID string, relevant bool, opts adtokens.FeedbackOptions, outputJSON bool) error {
	api, err := newAPIClient(cmd)
	if err != nil {
		return err
	}

	conf, err := api.SubmitFeedback(context.Background(), requestID, productID, relevant, opts)
	if err != nil {
		return err
	}

	if outputJSON {
		return printJSON(conf)
	}

	fmt.Println("Feedback submitted successfully")
	if conf.FeedbackID != "" {
		fmt.Printf("Feedback ID: %s\n", conf.FeedbackID)
	}
	if conf.Message != "" {
		fmt.Printf("Message: %s\n", conf.Message)
	}

	return nil
}
