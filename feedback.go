package adtokens

import (
	"context"
	"fmt"
)

// FeedbackOptions carries the optional parts of a feedback submission.
type FeedbackOptions struct {
	// Reason explains why the product was or wasn't relevant.
	Reason string
	// UserClicked reports whether the user clicked the product. Leave nil
	// to omit the field.
	UserClicked *bool
}

// FeedbackConfirmation acknowledges a stored feedback submission.
type FeedbackConfirmation struct {
	FeedbackID string `json:"feedback_id"`
	Message    string `json:"message,omitempty"`
}

type feedbackRequest struct {
	RequestID   string `json:"request_id"`
	ProductID   string `json:"product_id"`
	Relevant    bool   `json:"relevant"`
	Reason      string `json:"reason,omitempty"`
	UserClicked *bool  `json:"user_clicked,omitempty"`
}

// SubmitFeedback reports whether a recommended product was relevant to the
// user's intent. requestID is the request_id of the originating search and
// productID identifies the product within it. Unlike TrackClick, failures
// propagate to the caller.
func (c *Client) SubmitFeedback(ctx context.Context, requestID, productID string, relevant bool, opts FeedbackOptions) (*FeedbackConfirmation, error) {
	req := feedbackRequest{
		RequestID:   requestID,
		ProductID:   productID,
		Relevant:    relevant,
		Reason:      opts.Reason,
		UserClicked: opts.UserClicked,
	}

	var conf FeedbackConfirmation
	if err := c.post(ctx, "/feedback", req, &conf, c.timeouts.Feedback); err != nil {
		return nil, fmt.Errorf("feedback submission failed: %w", err)
	}

	return &conf, nil
}
