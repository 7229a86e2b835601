package adtokens

import (
	"context"
	"fmt"
)

// Message is one turn of conversation context sent with a search to improve
// relevance. Role is "user" or "assistant".
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Product is a single recommendation.
type Product struct {
	ProductID            string  `json:"product_id"`
	ImpressionID         string  `json:"impression_id"`
	Title                string  `json:"title"`
	Price                string  `json:"price"`
	Merchant             string  `json:"merchant"`
	URL                  string  `json:"url"`
	RelevanceScore       float64 `json:"relevance_score"`
	RelevanceExplanation string  `json:"relevance_explanation"`
	DisclosureText       string  `json:"disclosure_text,omitempty"`
}

// SearchMetadata is the metadata block of a search response. All fields are
// optional on the wire.
type SearchMetadata struct {
	TotalMatches int     `json:"total_matches,omitempty"`
	SessionID    string  `json:"session_id,omitempty"`
	TotalTimeMS  float64 `json:"total_time_ms,omitempty"`
}

// SearchResponse is the result of a single search. Results arrive in the
// server's relevance order.
type SearchResponse struct {
	RequestID string         `json:"request_id"`
	Results   []Product      `json:"results"`
	Metadata  SearchMetadata `json:"metadata,omitempty"`
}

// SearchOptions carries the optional parts of a search request.
type SearchOptions struct {
	// SessionID overrides the session tracked by the Client.
	SessionID string
	// ConversationContext is prior conversation turns, oldest first.
	ConversationContext []Message
}

type searchRequest struct {
	Query               string    `json:"query"`
	Limit               int       `json:"limit"`
	SessionID           string    `json:"session_id,omitempty"`
	ConversationContext []Message `json:"conversation_context,omitempty"`
	Stream              bool      `json:"stream,omitempty"`
}

// Search performs a product search. Limit must be in 1-10; the client sends
// it as given and lets the server reject out-of-range values.
func (c *Client) Search(ctx context.Context, query string, limit int) (*SearchResponse, error) {
	return c.SearchWithOptions(ctx, query, limit, SearchOptions{})
}

// SearchWithOptions performs a product search with conversation context or an
// explicit session. On success the session_id from the response metadata, if
// any, is remembered and attached to subsequent calls from this Client.
func (c *Client) SearchWithOptions(ctx context.Context, query string, limit int, opts SearchOptions) (*SearchResponse, error) {
	req := searchRequest{
		Query:               query,
		Limit:               limit,
		SessionID:           opts.SessionID,
		ConversationContext: opts.ConversationContext,
	}
	if req.SessionID == "" {
		req.SessionID = c.SessionID()
	}

	var searchResp SearchResponse
	if err := c.post(ctx, "/search", req, &searchResp, c.timeouts.Search); err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	c.setSessionID(searchResp.Metadata.SessionID)

	return &searchResp, nil
}

// BatchQuery is one entry of a batch search.
type BatchQuery struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

// BatchMetadata is the metadata block of a batch response.
type BatchMetadata struct {
	TotalQueries int     `json:"total_queries,omitempty"`
	TotalTimeMS  float64 `json:"total_time_ms,omitempty"`
}

// BatchSearchResponse holds one SearchResponse per input query, in the same
// order the queries were submitted.
type BatchSearchResponse struct {
	Results  []SearchResponse `json:"results"`
	Metadata BatchMetadata    `json:"metadata,omitempty"`
}

type batchSearchRequest struct {
	Queries []BatchQuery `json:"queries"`
}

// BatchSearch runs several searches in one request. Results come back in
// input order.
func (c *Client) BatchSearch(ctx context.Context, queries []BatchQuery) (*BatchSearchResponse, error) {
	if len(queries) == 0 {
		return nil, fmt.Errorf("at least one query is required")
	}

	var batchResp BatchSearchResponse
	if err := c.post(ctx, "/search/batch", batchSearchRequest{Queries: queries}, &batchResp, c.timeouts.Batch); err != nil {
		return nil, fmt.Errorf("batch search failed: %w", err)
	}

	return &batchResp, nil
}
