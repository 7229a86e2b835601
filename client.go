// Package adtokens is the Go client for the AdTokens contextual
// product-recommendation API.
//
// A Client issues single, batch, and streaming product searches, reports
// click attribution, and submits relevance feedback. Every call carries the
// account API key in the x-api-key header and performs exactly one outbound
// request.
package adtokens

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultBaseURL is the production AdTokens API endpoint.
const DefaultBaseURL = "https://api.ad-tokens.com"

// Default per-operation timeouts, applied only when the caller's context
// carries no deadline of its own.
const (
	DefaultSearchTimeout   = 10 * time.Second
	DefaultBatchTimeout    = 30 * time.Second
	DefaultClickTimeout    = 5 * time.Second
	DefaultFeedbackTimeout = 10 * time.Second
)

// Timeouts holds the per-operation request deadlines. A zero field disables
// the built-in deadline for that operation.
type Timeouts struct {
	Search   time.Duration
	Batch    time.Duration
	Click    time.Duration
	Feedback time.Duration
}

// DefaultTimeouts returns the timeouts used by NewClient.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Search:   DefaultSearchTimeout,
		Batch:    DefaultBatchTimeout,
		Click:    DefaultClickTimeout,
		Feedback: DefaultFeedbackTimeout,
	}
}

// Client talks to the AdTokens API. The zero value is not usable; construct
// one with NewClient.
//
// A Client tracks the session_id the server hands back in search metadata and
// attaches it to subsequent requests from the same instance. Session tracking
// is last-write-wins across concurrent calls; everything else on the Client
// is immutable after construction, so a single Client may be shared between
// goroutines.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logrus.Logger
	timeouts   Timeouts

	mu        sync.Mutex
	sessionID string
}

// Option customizes a Client at construction time.
type Option func(*Client)

// WithBaseURL points the client at a non-production deployment.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient replaces the underlying HTTP client. The supplied client
// should not set a global Timeout; that would cut streaming reads short.
// Per-operation deadlines are applied through the request context instead.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger replaces the logger used for non-fatal warnings (stream decode
// failures, click-tracking errors).
func WithLogger(logger *logrus.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeouts overrides the per-operation deadlines.
func WithTimeouts(t Timeouts) Option {
	return func(c *Client) {
		c.timeouts = t
	}
}

// NewClient creates a Client for the given API key.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	c := &Client{
		baseURL:  DefaultBaseURL,
		apiKey:   apiKey,
		logger:   logrus.StandardLogger(),
		timeouts: DefaultTimeouts(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		// No http.Client.Timeout on purpose: deadlines come from the
		// request context so streaming responses stay open.
		c.httpClient = &http.Client{}
	}

	return c, nil
}

// SessionID returns the session identifier most recently issued by the
// server, or "" if none has been seen.
func (c *Client) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

func (c *Client) setSessionID(id string) {
	if id == "" {
		return
	}
	c.mu.Lock()
	c.sessionID = id
	c.mu.Unlock()
}

// withDeadline applies the operation timeout unless the caller already set
// a deadline.
func withDeadline(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// post sends a JSON POST and decodes the JSON response into out. A non-2xx
// status is returned as *APIError carrying the status code and body text;
// failures to reach the server come back wrapped as transport errors.
func (c *Client) post(ctx context.Context, path string, body, out interface{}, timeout time.Duration) error {
	ctx, cancel := withDeadline(ctx, timeout)
	defer cancel()

	resp, err := c.send(ctx, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}

// send performs the HTTP exchange without consuming the response body.
// Callers own resp.Body.
func (c *Client) send(ctx context.Context, path string, body interface{}) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	return resp, nil
}
