package adtokens

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/pa-arth/adtokens-go/adtokenstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sseHandler(t *testing.T, frames []string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req searchRequest
		require.NoError(t, json.Unmarshal(body, &req))
		assert.True(t, req.Stream, "streaming search must set stream: true")

		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, frame := range frames {
			io.WriteString(w, frame)
			flusher.Flush()
		}
	}
}

func TestStreamSearch_DeliversProductsAcrossFrames(t *testing.T) {
	client, _ := newTestClient(t, sseHandler(t, []string{
		"event: result\ndata: {\"results\":[{\"product_id\":\"p-1\",\"title\":\"Keychron K8\"}]}\n\n",
		"event: result\ndata: {\"results\":[{\"product_id\":\"p-2\",\"title\":\"NuPhy Air75\"},{\"product_id\":\"p-3\",\"title\":\"Logitech MX Keys\"}]}\n\n",
		"event: done\ndata: {\"metadata\":{\"total_matches\":3}}\n\n",
	}))

	stream, err := client.StreamSearch(context.Background(), "mechanical keyboard", 5)
	require.NoError(t, err)
	defer stream.Close()

	var ids []string
	for stream.Next() {
		ids = append(ids, stream.Product().ProductID)
	}
	require.NoError(t, stream.Err())

	assert.Equal(t, []string{"p-1", "p-2", "p-3"}, ids)
	require.NotNil(t, stream.Metadata())
	assert.Equal(t, 3, stream.Metadata().TotalMatches)
	assert.Zero(t, stream.Skipped())
}

func TestStreamSearch_MalformedFrameDoesNotStopStream(t *testing.T) {
	client, _ := newTestClient(t, sseHandler(t, []string{
		"event: result\ndata: {\"results\":[{\"product_id\":\"p-1\"}]}\n\n",
		"event: result\ndata: {not json at all\n\n",
		"event: result\ndata: {\"results\":[{\"product_id\":\"p-2\"}]}\n\n",
	}))

	stream, err := client.StreamSearch(context.Background(), "keyboard", 5)
	require.NoError(t, err)
	defer stream.Close()

	var ids []string
	for stream.Next() {
		ids = append(ids, stream.Product().ProductID)
	}
	require.NoError(t, stream.Err())

	// Valid frames on both sides of the bad one still arrive; the total
	// equals the count of valid results entries.
	assert.Equal(t, []string{"p-1", "p-2"}, ids)
	assert.Equal(t, 1, stream.Skipped())
}

func TestStreamSearch_HandlesFramesLargerThanScannerDefault(t *testing.T) {
	// A single data line well past bufio.Scanner's default 64KiB token
	// limit must not abort the stream.
	bigExplanation := strings.Repeat("matches the query because ", 3000) // ~75KiB
	bigFrame := fmt.Sprintf(
		"event: result\ndata: {\"results\":[{\"product_id\":\"p-1\",\"relevance_explanation\":%q}]}\n\n",
		bigExplanation,
	)

	client, _ := newTestClient(t, sseHandler(t, []string{
		bigFrame,
		"event: result\ndata: {\"results\":[{\"product_id\":\"p-2\"}]}\n\n",
	}))

	stream, err := client.StreamSearch(context.Background(), "keyboard", 5)
	require.NoError(t, err)
	defer stream.Close()

	var ids []string
	for stream.Next() {
		ids = append(ids, stream.Product().ProductID)
	}
	require.NoError(t, stream.Err())

	assert.Equal(t, []string{"p-1", "p-2"}, ids)
	assert.Zero(t, stream.Skipped())
}

func TestStreamSearch_HTTPStatusError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":"invalid API key"}`))
	})

	_, err := client.StreamSearch(context.Background(), "keyboard", 5)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "invalid API key")
}

func TestStreamSearch_RecordsSessionFromMetadata(t *testing.T) {
	client, _ := newTestClient(t, sseHandler(t, []string{
		"event: done\ndata: {\"metadata\":{\"session_id\":\"sess-stream\"}}\n\n",
	}))

	stream, err := client.StreamSearch(context.Background(), "keyboard", 5)
	require.NoError(t, err)
	defer stream.Close()

	for stream.Next() {
	}
	require.NoError(t, stream.Err())
	assert.Equal(t, "sess-stream", client.SessionID())
}

func TestStreamSearch_AgainstStubServer(t *testing.T) {
	srv := adtokenstest.NewServer()
	defer srv.Close()
	srv.StubProducts("mechanical keyboard", "Keychron K8", "NuPhy Air75", "Logitech MX Keys")

	client, err := NewClient("at_test_key", WithBaseURL(srv.URL))
	require.NoError(t, err)

	stream, err := client.StreamSearch(context.Background(), "mechanical keyboard", 5)
	require.NoError(t, err)
	defer stream.Close()

	var titles []string
	for stream.Next() {
		titles = append(titles, stream.Product().Title)
	}
	require.NoError(t, stream.Err())
	assert.Equal(t, []string{"Keychron K8", "NuPhy Air75", "Logitech MX Keys"}, titles)
}
