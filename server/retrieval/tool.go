package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hrygo/finsense/plugin/ai/agent"
)

// SearchTool exposes the retriever to the agent as its search tool. A miss
// is rendered as the data-not-found sentinel the agent instructions key on;
// everywhere else the miss stays a structured Outcome.
type SearchTool struct {
	retriever *Retriever
}

// NewSearchTool wraps a retriever as an agent tool.
func NewSearchTool(retriever *Retriever) *SearchTool {
	return &SearchTool{retriever: retriever}
}

func (t *SearchTool) Name() string {
	return agent.ToolNameSearch
}

func (t *SearchTool) Description() string {
	return "Search and answer basic information from the stored quarterly financial reports."
}

func (t *SearchTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "The question the user asked",
			},
		},
		"required": []string{"query"},
	}
}

// Run parses the tool arguments and performs the retrieval.
func (t *SearchTool) Run(ctx context.Context, arguments string) (string, error) {
	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("invalid tool arguments: %w", err)
	}
	if strings.TrimSpace(args.Query) == "" {
		return "", fmt.Errorf("query argument is required")
	}

	outcome, err := t.retriever.Retrieve(ctx, args.Query)
	if err != nil {
		return "", err
	}
	if !outcome.Found {
		return agent.DataNotFoundSentinel, nil
	}
	return outcome.Text, nil
}

var _ agent.Tool = (*SearchTool)(nil)
