package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hrygo/finsense/plugin/ai"
)

// Oracle is the decision-making node. It builds the instruction block,
// invokes the LLM with the retrieval tool bound, and returns the model's
// response as an assistant message that may carry tool calls.
type Oracle struct {
	llm   ai.LLMService
	tools *ToolRegistry
}

// NewOracle creates a new Oracle.
func NewOracle(llm ai.LLMService, tools *ToolRegistry) (*Oracle, error) {
	if llm == nil {
		return nil, fmt.Errorf("llm cannot be nil")
	}
	if tools == nil {
		tools = NewToolRegistry()
	}
	return &Oracle{llm: llm, tools: tools}, nil
}

// Decide invokes the model over the pruned-and-summarized history. Failures
// propagate to the caller; no retries beyond the provider layer.
func (o *Oracle) Decide(ctx context.Context, state *State) (Message, error) {
	wire := make([]ai.Message, 0, len(state.Messages)+1)
	wire = append(wire, ai.SystemPrompt(Instructions(state.Summary)))
	wire = append(wire, toWire(state.Messages)...)

	resp, err := o.llm.ChatWithTools(ctx, wire, o.schemas())
	if err != nil {
		return Message{}, fmt.Errorf("oracle model call: %w", err)
	}

	toolCalls := make([]ToolCall, 0, len(resp.ToolCalls))
	for _, tc := range resp.ToolCalls {
		toolCalls = append(toolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Name,
			Arguments: tc.Arguments,
		})
	}

	slog.Debug("oracle decided",
		slog.Int("tool_calls", len(toolCalls)),
		slog.Int("content_length", len(resp.Content)))

	return NewAssistantMessage(resp.Content, toolCalls), nil
}

func (o *Oracle) schemas() []ai.ToolSchema {
	schemas := make([]ai.ToolSchema, 0, o.tools.Count())
	for _, name := range o.tools.List() {
		tool, _ := o.tools.Get(name)
		schemas = append(schemas, ai.ToolSchema{
			Name:        tool.Name(),
			Description: tool.Description(),
			Parameters:  tool.Schema(),
		})
	}
	return schemas
}

// toWire converts conversation messages to the provider wire format,
// flattening structured content parts.
func toWire(messages []Message) []ai.Message {
	wire := make([]ai.Message, 0, len(messages))
	for i := range messages {
		m := &messages[i]
		wm := ai.Message{
			Role:       string(m.Role),
			Content:    m.Text(),
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			wm.ToolCalls = append(wm.ToolCalls, ai.ToolCall{
				ID:        tc.ID,
				Name:      tc.Name,
				Arguments: tc.Arguments,
			})
		}
		wire = append(wire, wm)
	}
	return wire
}
