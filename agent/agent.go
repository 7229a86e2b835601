// Package agent integrates AdTokens product search with LLM agents.
//
// It exposes the search operation as an OpenAI function-calling tool and
// formats results so an agent can drop them straight into a response.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	adtokens "github.com/pa-arth/adtokens-go"
)

const (
	// SearchToolName is the function name advertised to the model.
	SearchToolName = "search_products"

	defaultLimit = 3
	maxLimit     = 10
)

// Searcher is the slice of the adtokens client the agent needs.
type Searcher interface {
	SearchWithOptions(ctx context.Context, query string, limit int, opts adtokens.SearchOptions) (*adtokens.SearchResponse, error)
}

// Agent bridges an AdTokens client and an LLM tool-calling loop.
type Agent struct {
	searcher Searcher
}

// New creates an Agent on top of an AdTokens client.
func New(searcher Searcher) *Agent {
	return &Agent{searcher: searcher}
}

// SearchProducts searches with optional conversation history. Session
// continuity across turns is handled by the underlying client.
func (a *Agent) SearchProducts(ctx context.Context, query string, limit int, conversation []adtokens.Message) (*adtokens.SearchResponse, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	return a.searcher.SearchWithOptions(ctx, query, limit, adtokens.SearchOptions{
		ConversationContext: conversation,
	})
}

// SearchTool returns the OpenAI tool definition for product search, for use
// in chat completion requests.
func SearchTool() openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        SearchToolName,
			Description: "Search for contextual product recommendations",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"query": map[string]interface{}{
						"type":        "string",
						"description": "User intent or product query",
					},
					"limit": map[string]interface{}{
						"type":        "integer",
						"description": "Number of results (1-10)",
						"default":     defaultLimit,
					},
				},
				"required": []string{"query"},
			},
		},
	}
}

type searchToolArgs struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

// HandleToolCall executes a search_products tool call and returns the
// formatted product list to feed back to the model as the tool result.
func (a *Agent) HandleToolCall(ctx context.Context, call openai.ToolCall) (string, error) {
	if call.Function.Name != SearchToolName {
		return "", fmt.Errorf("unsupported tool: %s", call.Function.Name)
	}

	var args searchToolArgs
	if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
		return "", fmt.Errorf("failed to parse tool arguments: %w", err)
	}
	if args.Query == "" {
		return "", fmt.Errorf("tool call is missing a query")
	}
	if args.Limit <= 0 {
		args.Limit = defaultLimit
	}
	if args.Limit > maxLimit {
		args.Limit = maxLimit
	}

	resp, err := a.SearchProducts(ctx, args.Query, args.Limit, nil)
	if err != nil {
		return "", err
	}

	return FormatProducts(resp.Results), nil
}

// FormatProducts renders products as a markdown list an agent can include in
// its reply, followed by the sponsor disclosure when present.
func FormatProducts(products []adtokens.Product) string {
	if len(products) == 0 {
		return "No products found."
	}

	var b strings.Builder
	b.WriteString("Here are some product recommendations:\n\n")

	for i, p := range products {
		fmt.Fprintf(&b, "%d. **%s**\n", i+1, p.Title)
		fmt.Fprintf(&b, "   - Price: %s\n", p.Price)
		fmt.Fprintf(&b, "   - Merchant: %s\n", p.Merchant)
		fmt.Fprintf(&b, "   - %s\n", p.RelevanceExplanation)
		fmt.Fprintf(&b, "   - [View Product](%s)\n\n", p.URL)
	}

	if products[0].DisclosureText != "" {
		fmt.Fprintf(&b, "\n%s\n", products[0].DisclosureText)
	}

	return b.String()
}
