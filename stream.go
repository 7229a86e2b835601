package adtokens

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// ProductStream delivers products from a streaming search as they arrive.
// Iterate with Next, in the style of bufio.Scanner:
//
//	stream, err := client.StreamSearch(ctx, "podcast microphone", 5)
//	if err != nil { ... }
//	defer stream.Close()
//	for stream.Next() {
//	    p := stream.Product()
//	    ...
//	}
//	if err := stream.Err(); err != nil { ... }
//
// The stream is finite and not restartable; it ends when the server closes
// the connection. Frames whose JSON payload cannot be decoded are skipped
// with a logged warning and do not terminate the stream.
type ProductStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	client  *Client

	event   string
	pending []Product
	current Product
	meta    *SearchMetadata
	err     error
	skipped int
	closed  bool
}

// maxFrameSize caps how large a single SSE line may grow.
const maxFrameSize = 1 << 20

// streamFrame is the payload of one SSE data line. A frame carries results,
// metadata, or both.
type streamFrame struct {
	Results  []Product       `json:"results"`
	Metadata *SearchMetadata `json:"metadata"`
}

// StreamSearch opens a streaming search over server-sent events. The request
// is the same as Search with stream enabled; the connection stays open until
// the server has delivered all results or ctx is cancelled.
func (c *Client) StreamSearch(ctx context.Context, query string, limit int) (*ProductStream, error) {
	req := searchRequest{
		Query:     query,
		Limit:     limit,
		SessionID: c.SessionID(),
		Stream:    true,
	}

	resp, err := c.send(ctx, "/search", req)
	if err != nil {
		return nil, fmt.Errorf("stream search failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("stream search failed: %w", &APIError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
		})
	}

	scanner := bufio.NewScanner(resp.Body)
	// A data line can carry several products with unbounded explanation
	// text; the default 64KiB token limit is too small for that.
	scanner.Buffer(make([]byte, 0, 64*1024), maxFrameSize)

	return &ProductStream{
		body:    resp.Body,
		scanner: scanner,
		client:  c,
	}, nil
}

// Next advances to the next product, reading frames from the connection as
// needed. It returns false when the stream ends; check Err afterwards to
// distinguish normal completion from a read failure.
func (s *ProductStream) Next() bool {
	if len(s.pending) > 0 {
		s.current = s.pending[0]
		s.pending = s.pending[1:]
		return true
	}

	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if line == "" {
			// Frame terminator.
			continue
		}

		if event, ok := strings.CutPrefix(line, "event: "); ok {
			s.event = event
			continue
		}

		data, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}

		var frame streamFrame
		if err := json.Unmarshal([]byte(data), &frame); err != nil {
			s.skipped++
			s.client.logger.WithError(err).WithField("event", s.event).
				Warn("adtokens: skipping undecodable stream frame")
			continue
		}

		if frame.Metadata != nil {
			s.meta = frame.Metadata
			s.client.setSessionID(frame.Metadata.SessionID)
		}

		if len(frame.Results) > 0 {
			s.current = frame.Results[0]
			s.pending = frame.Results[1:]
			return true
		}
	}

	if err := s.scanner.Err(); err != nil && s.err == nil {
		s.err = fmt.Errorf("stream read failed: %w", err)
	}
	return false
}

// Product returns the product Next advanced to.
func (s *ProductStream) Product() Product {
	return s.current
}

// Metadata returns the most recent metadata frame seen, or nil.
func (s *ProductStream) Metadata() *SearchMetadata {
	return s.meta
}

// Skipped reports how many data frames were dropped because their JSON could
// not be decoded.
func (s *ProductStream) Skipped() int {
	return s.skipped
}

// Err returns the first read error encountered, if any. A stream that ends
// because the server closed the connection returns nil.
func (s *ProductStream) Err() error {
	return s.err
}

// Close releases the underlying connection. It is safe to call Close before
// the stream is exhausted and more than once.
func (s *ProductStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}
