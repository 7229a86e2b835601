// Package adtokenstest provides an in-process stub of the AdTokens API for
// testing code built on the adtokens client. It implements the /search,
// /search/batch, /clicks/{impression_id} and /feedback endpoints with
// scripted products, including SSE framing for streaming searches. It does
// no ranking, auth enforcement beyond header presence, or persistence.
package adtokenstest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Recorded is one request the server received, kept for assertions.
type Recorded struct {
	Method string
	Path   string
	APIKey string
	Body   json.RawMessage
}

// Server is a stub AdTokens API backed by httptest.Server.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	products map[string][]map[string]interface{}
	session  string
	recorded []Recorded
	clicks   []string
	feedback []json.RawMessage
}

// NewServer starts a stub server. Call Close when done.
func NewServer() *Server {
	s := &Server{
		products: make(map[string][]map[string]interface{}),
	}

	r := chi.NewRouter()
	r.Post("/search", s.handleSearch)
	r.Post("/search/batch", s.handleBatchSearch)
	r.Post("/clicks/{impressionID}", s.handleClick)
	r.Post("/feedback", s.handleFeedback)

	s.Server = httptest.NewServer(r)
	return s
}

// StubProducts scripts the products returned for a query. Impression IDs are
// generated per response; titles and the rest come back as given.
func (s *Server) StubProducts(query string, titles ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := make([]map[string]interface{}, 0, len(titles))
	for i, title := range titles {
		products = append(products, map[string]interface{}{
			"product_id":            fmt.Sprintf("prod-%s-%d", uuid.NewString()[:8], i+1),
			"title":                 title,
			"price":                 "$49.99",
			"merchant":              "Example Store",
			"url":                   "https://example.com/p/" + uuid.NewString()[:8],
			"relevance_score":       0.9 - float64(i)*0.1,
			"relevance_explanation": "Matches the query " + query,
			"disclosure_text":       "Sponsored results. We may earn a commission.",
		})
	}
	s.products[query] = products
}

// IssueSession makes subsequent search responses carry the given session_id
// in their metadata.
func (s *Server) IssueSession(sessionID string) {
	s.mu.Lock()
	s.session = sessionID
	s.mu.Unlock()
}

// Requests returns everything the server has received, in arrival order.
func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Recorded(nil), s.recorded...)
}

// ClickedImpressions returns the impression IDs of tracked clicks.
func (s *Server) ClickedImpressions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.clicks...)
}

// FeedbackBodies returns the raw bodies of received feedback submissions.
func (s *Server) FeedbackBodies() []json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]json.RawMessage(nil), s.feedback...)
}

func (s *Server) record(r *http.Request, body json.RawMessage) {
	s.mu.Lock()
	s.recorded = append(s.recorded, Recorded{
		Method: r.Method,
		Path:   r.URL.Path,
		APIKey: r.Header.Get("x-api-key"),
		Body:   body,
	})
	s.mu.Unlock()
}

func (s *Server) resultsFor(query string, limit int) []map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := s.products[query]
	if limit > 0 && limit < len(products) {
		products = products[:limit]
	}

	// Fresh impression IDs on every response, like the real API.
	out := make([]map[string]interface{}, 0, len(products))
	for _, p := range products {
		clone := make(map[string]interface{}, len(p)+1)
		for k, v := range p {
			clone[k] = v
		}
		clone["impression_id"] = "imp_" + uuid.NewString()
		out = append(out, clone)
	}
	return out
}

func (s *Server) searchResponse(query string, limit int) map[string]interface{} {
	results := s.resultsFor(query, limit)

	metadata := map[string]interface{}{
		"total_matches": len(results),
		"total_time_ms": 12.5,
	}
	s.mu.Lock()
	if s.session != "" {
		metadata["session_id"] = s.session
	}
	s.mu.Unlock()

	return map[string]interface{}{
		"request_id": "req_" + uuid.NewString(),
		"results":    results,
		"metadata":   metadata,
	}
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query  string `json:"query"`
		Limit  int    `json:"limit"`
		Stream bool   `json:"stream"`
	}
	raw, ok := decode(w, r, &req)
	if !ok {
		return
	}
	s.record(r, raw)

	if !requireAPIKey(w, r) {
		return
	}
	if req.Limit < 1 || req.Limit > 10 {
		writeError(w, http.StatusBadRequest, "limit must be between 1 and 10")
		return
	}

	if req.Stream {
		s.streamSearch(w, req.Query, req.Limit)
		return
	}

	writeJSON(w, http.StatusOK, s.searchResponse(req.Query, req.Limit))
}

// streamSearch writes one SSE result frame per product followed by a
// metadata frame.
func (s *Server) streamSearch(w http.ResponseWriter, query string, limit int) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	results := s.resultsFor(query, limit)

	for _, p := range results {
		data, _ := json.Marshal(map[string]interface{}{
			"results": []map[string]interface{}{p},
		})
		fmt.Fprintf(w, "event: result\ndata: %s\n\n", data)
		if flusher != nil {
			flusher.Flush()
		}
	}

	meta := map[string]interface{}{
		"total_matches": len(results),
	}
	s.mu.Lock()
	if s.session != "" {
		meta["session_id"] = s.session
	}
	s.mu.Unlock()
	data, _ := json.Marshal(map[string]interface{}{"metadata": meta})
	fmt.Fprintf(w, "event: done\ndata: %s\n\n", data)
	if flusher != nil {
		flusher.Flush()
	}
}

func (s *Server) handleBatchSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Queries []struct {
			Query string `json:"query"`
			Limit int    `json:"limit"`
		} `json:"queries"`
	}
	raw, ok := decode(w, r, &req)
	if !ok {
		return
	}
	s.record(r, raw)

	if !requireAPIKey(w, r) {
		return
	}
	if len(req.Queries) == 0 {
		writeError(w, http.StatusBadRequest, "queries must not be empty")
		return
	}

	start := time.Now()
	results := make([]map[string]interface{}, 0, len(req.Queries))
	for _, q := range req.Queries {
		results = append(results, s.searchResponse(q.Query, q.Limit))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
		"metadata": map[string]interface{}{
			"total_queries": len(req.Queries),
			"total_time_ms": float64(time.Since(start).Microseconds()) / 1000.0,
		},
	})
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RequestID string `json:"request_id"`
	}
	raw, ok := decode(w, r, &req)
	if !ok {
		return
	}
	s.record(r, raw)

	if !requireAPIKey(w, r) {
		return
	}

	impressionID := chi.URLParam(r, "impressionID")
	s.mu.Lock()
	s.clicks = append(s.clicks, impressionID)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "tracked",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RequestID string `json:"request_id"`
		ProductID string `json:"product_id"`
	}
	raw, ok := decode(w, r, &req)
	if !ok {
		return
	}
	s.record(r, raw)

	if !requireAPIKey(w, r) {
		return
	}
	if req.RequestID == "" || req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "request_id and product_id are required")
		return
	}

	s.mu.Lock()
	s.feedback = append(s.feedback, raw)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"feedback_id": "fb_" + uuid.NewString(),
		"message":     "feedback recorded",
	})
}

// requireAPIKey rejects requests without an x-api-key header, like every
// endpoint of the real API.
func requireAPIKey(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get("x-api-key") == "" {
		writeError(w, http.StatusUnauthorized, "missing API key")
		return false
	}
	return true
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) (json.RawMessage, bool) {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return nil, false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request shape")
		return nil, false
	}
	return raw, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
