package client

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pa-arth/adtokens-go/adtokenstest"
)

func setupStub(t *testing.T) *adtokenstest.Server {
	t.Helper()
	srv := adtokenstest.NewServer()
	t.Cleanup(srv.Close)

	t.Setenv(envAPIKey, "at_test_0123456789abcdef")
	t.Setenv(envAPIURL, srv.URL)

	return srv
}

func TestSearchCmd_AgainstStub(t *testing.T) {
	srv := setupStub(t)
	srv.StubProducts("wireless headphones", "Sony WH-1000XM5", "Bose QC45")

	cmd := SearchCmd()
	cmd.SetArgs([]string{"wireless headphones", "--limit", "2"})
	require.NoError(t, cmd.Execute())

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/search", reqs[0].Path)
	assert.Equal(t, "at_test_0123456789abcdef", reqs[0].APIKey)

	var body struct {
		Query string `json:"query"`
		Limit int    `json:"limit"`
	}
	require.NoError(t, json.Unmarshal(reqs[0].Body, &body))
	assert.Equal(t, "wireless headphones", body.Query)
	assert.Equal(t, 2, body.Limit)
}

func TestSearchCmd_RejectsBadLimit(t *testing.T) {
	setupStub(t)

	cmd := SearchCmd()
	cmd.SetArgs([]string{"headphones", "--limit", "11"})
	require.Error(t, cmd.Execute())
}

func TestBatchCmd_AgainstStub(t *testing.T) {
	srv := setupStub(t)
	srv.StubProducts("mechanical keyboard", "Keychron K8")
	srv.StubProducts("gaming mouse", "Logitech G Pro")

	cmd := BatchCmd()
	cmd.SetArgs([]string{"mechanical keyboard", "gaming mouse"})
	require.NoError(t, cmd.Execute())

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/search/batch", reqs[0].Path)
}

func TestStreamCmd_AgainstStub(t *testing.T) {
	srv := setupStub(t)
	srv.StubProducts("podcast microphone", "Shure MV7", "Blue Yeti")

	cmd := StreamCmd()
	cmd.SetArgs([]string{"podcast microphone"})
	require.NoError(t, cmd.Execute())
}

func TestClickCmd_NeverFailsOnTrackingError(t *testing.T) {
	t.Setenv(envAPIKey, "at_test_0123456789abcdef")
	t.Setenv(envAPIURL, "http://127.0.0.1:1") // nothing listening

	cmd := ClickCmd()
	cmd.SetArgs([]string{"imp-123"})
	assert.NoError(t, cmd.Execute())
}

func TestClickCmd_AgainstStub(t *testing.T) {
	srv := setupStub(t)

	cmd := ClickCmd()
	cmd.SetArgs([]string{"imp-123", "--request-id", "req-1"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, []string{"imp-123"}, srv.ClickedImpressions())
}

func TestFeedbackCmd_AgainstStub(t *testing.T) {
	srv := setupStub(t)

	cmd := FeedbackCmd()
	cmd.SetArgs([]string{"req-1", "p-1", "--reason", "good match", "--clicked"})
	require.NoError(t, cmd.Execute())

	bodies := srv.FeedbackBodies()
	require.Len(t, bodies, 1)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(bodies[0], &body))
	assert.Equal(t, "req-1", body["request_id"])
	assert.Equal(t, "p-1", body["product_id"])
	assert.Equal(t, true, body["relevant"])
	assert.Equal(t, "good match", body["reason"])
	assert.Equal(t, true, body["user_clicked"])
}

func TestFeedbackCmd_NotRelevant(t *testing.T) {
	srv := setupStub(t)

	cmd := FeedbackCmd()
	cmd.SetArgs([]string{"req-1", "p-1", "--not-relevant"})
	require.NoError(t, cmd.Execute())

	bodies := srv.FeedbackBodies()
	require.Len(t, bodies, 1)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(bodies[0], &body))
	assert.Equal(t, false, body["relevant"])
	assert.NotContains(t, body, "user_clicked")
}
