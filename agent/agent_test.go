package agent

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	adtokens "github.com/pa-arth/adtokens-go"
)

type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) SearchWithOptions(ctx context.Context, query string, limit int, opts adtokens.SearchOptions) (*adtokens.SearchResponse, error) {
	args := m.Called(ctx, query, limit, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*adtokens.SearchResponse), args.Error(1)
}

func toolCall(name, arguments string) openai.ToolCall {
	return openai.ToolCall{
		Type: openai.ToolTypeFunction,
		Function: openai.FunctionCall{
			Name:      name,
			Arguments: arguments,
		},
	}
}

func TestHandleToolCall_SearchesAndFormats(t *testing.T) {
	searcher := new(MockSearcher)
	searcher.On("SearchWithOptions", mock.Anything, "podcast microphone", 3, mock.Anything).Return(&adtokens.SearchResponse{
		RequestID: "req-1",
		Results: []adtokens.Product{
			{
				Title:                "Shure MV7",
				Price:                "$249",
				Merchant:             "Shure",
				URL:                  "https://example.com/mv7",
				RelevanceExplanation: "Purpose-built podcast mic",
				DisclosureText:       "Sponsored results.",
			},
		},
	}, nil)

	a := New(searcher)
	out, err := a.HandleToolCall(context.Background(), toolCall(SearchToolName, `{"query":"podcast microphone","limit":3}`))
	require.NoError(t, err)

	assert.Contains(t, out, "**Shure MV7**")
	assert.Contains(t, out, "Price: $249")
	assert.Contains(t, out, "[View Product](https://example.com/mv7)")
	assert.Contains(t, out, "Sponsored results.")
	searcher.AssertExpectations(t)
}

func TestHandleToolCall_DefaultsAndClampsLimit(t *testing.T) {
	searcher := new(MockSearcher)
	searcher.On("SearchWithOptions", mock.Anything, "keyboard", 3, mock.Anything).Return(&adtokens.SearchResponse{}, nil).Once()
	searcher.On("SearchWithOptions", mock.Anything, "keyboard", 10, mock.Anything).Return(&adtokens.SearchResponse{}, nil).Once()

	a := New(searcher)

	_, err := a.HandleToolCall(context.Background(), toolCall(SearchToolName, `{"query":"keyboard"}`))
	require.NoError(t, err)

	_, err = a.HandleToolCall(context.Background(), toolCall(SearchToolName, `{"query":"keyboard","limit":50}`))
	require.NoError(t, err)

	searcher.AssertExpectations(t)
}

func TestHandleToolCall_Rejections(t *testing.T) {
	a := New(new(MockSearcher))

	_, err := a.HandleToolCall(context.Background(), toolCall("other_tool", `{}`))
	require.Error(t, err)

	_, err = a.HandleToolCall(context.Background(), toolCall(SearchToolName, `{not json`))
	require.Error(t, err)

	_, err = a.HandleToolCall(context.Background(), toolCall(SearchToolName, `{"limit":3}`))
	require.Error(t, err)
}

func TestHandleToolCall_PropagatesSearchError(t *testing.T) {
	searcher := new(MockSearcher)
	searcher.On("SearchWithOptions", mock.Anything, "keyboard", 3, mock.Anything).Return(nil, errors.New("boom"))

	a := New(searcher)
	_, err := a.HandleToolCall(context.Background(), toolCall(SearchToolName, `{"query":"keyboard"}`))
	require.Error(t, err)
}

func TestSearchProducts_PassesConversationContext(t *testing.T) {
	conversation := []adtokens.Message{
		{Role: "user", Content: "I need a microphone"},
		{Role: "assistant", Content: "What will you be using it for?"},
		{Role: "user", Content: "Recording podcasts"},
	}

	searcher := new(MockSearcher)
	searcher.On("SearchWithOptions", mock.Anything, "podcast microphone", 3,
		adtokens.SearchOptions{ConversationContext: conversation}).Return(&adtokens.SearchResponse{}, nil)

	a := New(searcher)
	_, err := a.SearchProducts(context.Background(), "podcast microphone", 0, conversation)
	require.NoError(t, err)
	searcher.AssertExpectations(t)
}

func TestSearchTool_Definition(t *testing.T) {
	tool := SearchTool()
	assert.Equal(t, openai.ToolTypeFunction, tool.Type)
	require.NotNil(t, tool.Function)
	assert.Equal(t, SearchToolName, tool.Function.Name)
}

func TestFormatProducts_Empty(t *testing.T) {
	assert.Equal(t, "No products found.", FormatProducts(nil))
}
