package adtokens

import (
	"context"
	"net/url"
)

// ClickResult is the outcome of a click-tracking call. Tracking is
// best-effort: a failure is reported through Err, never as a Go error, so it
// can never interrupt the caller's primary flow (displaying the product,
// redirecting the user).
type ClickResult struct {
	Tracked   bool
	Timestamp string
	// Err holds the transport or API failure that prevented tracking.
	// It is informational only.
	Err error
}

type clickTrackRequest struct {
	RequestID string `json:"request_id,omitempty"`
}

type clickConfirmation struct {
	Status    string `json:"status,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// TrackClick records a user click on the product behind impressionID, for
// attribution compliance. requestID is the request_id of the originating
// search and may be empty. Call this before redirecting the user to the
// product URL.
func (c *Client) TrackClick(ctx context.Context, impressionID, requestID string) ClickResult {
	var conf clickConfirmation
	err := c.post(ctx, "/clicks/"+url.PathEscape(impressionID), clickTrackRequest{RequestID: requestID}, &conf, c.timeouts.Click)
	if err != nil {
		c.logger.WithError(err).WithField("impression_id", impressionID).
			Warn("adtokens: failed to track click")
		return ClickResult{Err: err}
	}

	return ClickResult{
		Tracked:   true,
		Timestamp: conf.Timestamp,
	}
}
