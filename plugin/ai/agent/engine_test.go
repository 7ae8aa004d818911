package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/finsense/plugin/ai"
)

// scriptedLLM replays a fixed sequence of responses and records every
// request it receives.
type scriptedLLM struct {
	responses []ai.Message
	requests  [][]ai.Message
	err       error
}

func (s *scriptedLLM) Chat(ctx context.Context, messages []ai.Message) (string, error) {
	resp, err := s.next(messages)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func (s *scriptedLLM) ChatWithTools(ctx context.Context, messages []ai.Message, tools []ai.ToolSchema) (*ai.Message, error) {
	return s.next(messages)
}

func (s *scriptedLLM) next(messages []ai.Message) (*ai.Message, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.requests = append(s.requests, messages)
	if len(s.responses) == 0 {
		return nil, errors.New("scripted LLM exhausted")
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return &resp, nil
}

// recordingTool returns a canned result and records its inputs.
type recordingTool struct {
	name    string
	result  string
	queries []string
}

func (t *recordingTool) Name() string        { return t.name }
func (t *recordingTool) Description() string { return "test tool" }
func (t *recordingTool) Schema() map[string]any {
	return map[string]any{"type": "object"}
}

func (t *recordingTool) Run(ctx context.Context, arguments string) (string, error) {
	t.queries = append(t.queries, arguments)
	return t.result, nil
}

func newTestEngine(t *testing.T, llm ai.LLMService, tools ...Tool) *Engine {
	t.Helper()
	registry := NewToolRegistry()
	for _, tool := range tools {
		require.NoError(t, registry.Register(tool))
	}
	oracle, err := NewOracle(llm, registry)
	require.NoError(t, err)
	memory := NewMemoryManager(&stubSummarizer{result: "summary"})
	engine, err := NewEngine(memory, oracle, registry)
	require.NoError(t, err)
	return engine
}

func TestRoute(t *testing.T) {
	// Empty tool-call list terminates the turn.
	state := NewState()
	state.Append(NewAssistantMessage("final answer", nil))
	assert.Equal(t, TransitionTerminate, Route(state))

	state = NewState()
	state.Append(NewAssistantMessage("final answer", []ToolCall{}))
	assert.Equal(t, TransitionTerminate, Route(state))

	// A tool call routes to tool execution.
	state = NewState()
	state.Append(NewAssistantMessage("", []ToolCall{
		{ID: "call_1", Name: "fast_search_engine", Arguments: `{"query":"x"}`},
	}))
	assert.Equal(t, TransitionTools, Route(state))
}

func TestRouteEmptyState(t *testing.T) {
	assert.Equal(t, TransitionTerminate, Route(NewState()))
}

func TestTurnDirectAnswer(t *testing.T) {
	llm := &scriptedLLM{responses: []ai.Message{
		ai.AssistantMessage("Alphabet's Q3 revenue was $96.5B."),
	}}
	engine := newTestEngine(t, llm)

	state := NewState()
	answer, err := engine.Turn(context.Background(), state, "What was Q3 revenue?")
	require.NoError(t, err)
	assert.Equal(t, "Alphabet's Q3 revenue was $96.5B.", answer)

	// user message + assistant answer
	require.Len(t, state.Messages, 2)
	assert.Equal(t, RoleUser, state.Messages[0].Role)
	assert.Equal(t, RoleAssistant, state.Messages[1].Role)
}

func TestTurnWithToolLoop(t *testing.T) {
	llm := &scriptedLLM{responses: []ai.Message{
		{
			Role: "assistant",
			ToolCalls: []ai.ToolCall{
				{ID: "call_1", Name: "fast_search_engine", Arguments: `{"query":"Q3 revenue"}`},
			},
		},
		ai.AssistantMessage("Revenue was $96.5B."),
	}}
	search := &recordingTool{name: ToolNameSearch, result: "Q3 revenue was $96.5B"}
	engine := newTestEngine(t, llm, search)

	state := NewState()
	answer, err := engine.Turn(context.Background(), state, "What was Q3 revenue?")
	require.NoError(t, err)
	assert.Equal(t, "Revenue was $96.5B.", answer)

	// user, assistant(tool call), tool result, assistant(answer)
	require.Len(t, state.Messages, 4)
	assert.Equal(t, RoleTool, state.Messages[2].Role)
	assert.Equal(t, "call_1", state.Messages[2].ToolCallID)
	assert.Equal(t, "Q3 revenue was $96.5B", state.Messages[2].Content)
	require.Len(t, search.queries, 1)
	assert.JSONEq(t, `{"query":"Q3 revenue"}`, search.queries[0])
}

func TestTurnDataNotFoundNoRequery(t *testing.T) {
	// The tool reports not-found; the scripted model then answers the user
	// without a second search. The turn must contain exactly one tool
	// message carrying the sentinel.
	llm := &scriptedLLM{responses: []ai.Message{
		{
			Role: "assistant",
			ToolCalls: []ai.ToolCall{
				{ID: "call_1", Name: ToolNameSearch, Arguments: `{"query":"2030 revenue"}`},
			},
		},
		ai.AssistantMessage("I could not find that information in the current records."),
	}}
	search := &recordingTool{name: ToolNameSearch, result: DataNotFoundSentinel}
	engine := newTestEngine(t, llm, search)

	state := NewState()
	answer, err := engine.Turn(context.Background(), state, "What is the 2030 revenue?")
	require.NoError(t, err)
	assert.Contains(t, answer, "could not find")

	var toolMessages int
	for _, m := range state.Messages {
		if m.Role == RoleTool {
			toolMessages++
			assert.Equal(t, DataNotFoundSentinel, m.Content)
		}
	}
	assert.Equal(t, 1, toolMessages)
	assert.Len(t, search.queries, 1)
}

func TestTurnLoopGuard(t *testing.T) {
	// A model that always requests a tool must trip the loop guard.
	toolCallResponse := ai.Message{
		Role: "assistant",
		ToolCalls: []ai.ToolCall{
			{ID: "call_n", Name: ToolNameSearch, Arguments: `{"query":"x"}`},
		},
	}
	llm := &scriptedLLM{responses: []ai.Message{
		toolCallResponse, toolCallResponse, toolCallResponse, toolCallResponse, toolCallResponse,
	}}
	search := &recordingTool{name: ToolNameSearch, result: "snippet"}
	engine := newTestEngine(t, llm, search)

	_, err := engine.Turn(context.Background(), NewState(), "query")
	require.Error(t, err)
	assert.True(t, IsLoopGuard(err))
}

func TestTurnUnknownToolBecomesToolResult(t *testing.T) {
	llm := &scriptedLLM{responses: []ai.Message{
		{
			Role: "assistant",
			ToolCalls: []ai.ToolCall{
				{ID: "call_1", Name: "no_such_tool", Arguments: `{}`},
			},
		},
		ai.AssistantMessage("done"),
	}}
	engine := newTestEngine(t, llm)

	state := NewState()
	answer, err := engine.Turn(context.Background(), state, "query")
	require.NoError(t, err)
	assert.Equal(t, "done", answer)
	assert.Contains(t, state.Messages[2].Content, "tool not found")
}

func TestTurnEmptyAnswerFails(t *testing.T) {
	llm := &scriptedLLM{responses: []ai.Message{
		ai.AssistantMessage("   "),
	}}
	engine := newTestEngine(t, llm)

	_, err := engine.Turn(context.Background(), NewState(), "query")
	assert.ErrorIs(t, err, ErrEmptyAnswer)
}

func TestTurnModelFailurePropagates(t *testing.T) {
	llm := &scriptedLLM{err: errors.New("provider unreachable")}
	engine := newTestEngine(t, llm)

	_, err := engine.Turn(context.Background(), NewState(), "query")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider unreachable")
}

func TestTurnCompressesHistoryFirst(t *testing.T) {
	llm := &scriptedLLM{responses: []ai.Message{
		ai.AssistantMessage("answer"),
	}}
	engine := newTestEngine(t, llm)

	// Ten messages already present; the incoming user message makes eleven
	// and triggers compression before the oracle runs.
	state := stateWithUserMessages(10)
	_, err := engine.Turn(context.Background(), state, "m10")
	require.NoError(t, err)

	assert.Equal(t, "summary", state.Summary)
	// 11 - 5 compressed + 1 assistant answer
	assert.Len(t, state.Messages, 7)

	// The oracle saw the summary in its instruction block.
	require.NotEmpty(t, llm.requests)
	systemPrompt := llm.requests[0][0]
	assert.Equal(t, "system", systemPrompt.Role)
	assert.Contains(t, systemPrompt.Content, "[Conversation Summary]")
	assert.True(t, strings.Contains(systemPrompt.Content, "summary"))
}
