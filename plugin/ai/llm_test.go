package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewLLMService tests service creation.
func TestNewLLMService(t *testing.T) {
	tests := []struct {
		name        string
		cfg         *LLMConfig
		expectError bool
	}{
		{
			name: "OpenAI config",
			cfg: &LLMConfig{
				Provider:    "openai",
				Model:       "gpt-4o-mini",
				APIKey:      "test-key",
				BaseURL:     "https://api.openai.com/v1",
				MaxTokens:   2048,
				Temperature: 0.2,
			},
			expectError: false,
		},
		{
			name: "DeepSeek config",
			cfg: &LLMConfig{
				Provider:    "deepseek",
				Model:       "deepseek-chat",
				APIKey:      "test-key",
				BaseURL:     "https://api.deepseek.com",
				MaxTokens:   2048,
				Temperature: 0.7,
			},
			expectError: false,
		},
		{
			name: "Ollama config",
			cfg: &LLMConfig{
				Provider: "ollama",
				Model:    "llama3",
				BaseURL:  "http://localhost:11434",
			},
			expectError: false,
		},
		{
			name: "Unsupported provider",
			cfg: &LLMConfig{
				Provider: "unsupported",
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLLMService(tt.cfg)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConvertMessagesRoundTrip(t *testing.T) {
	messages := []Message{
		SystemPrompt("be helpful"),
		UserMessage("what was Q3 revenue?"),
		{
			Role: "assistant",
			ToolCalls: []ToolCall{
				{ID: "call_1", Name: "fast_search_engine", Arguments: `{"query":"Q3 revenue"}`},
			},
		},
		ToolMessage("call_1", "revenue was $96.5B"),
	}

	converted := convertMessages(messages)
	require.Len(t, converted, 4)

	assert.Equal(t, "system", converted[0].Role)
	assert.Equal(t, "user", converted[1].Role)

	require.Len(t, converted[2].ToolCalls, 1)
	assert.Equal(t, "call_1", converted[2].ToolCalls[0].ID)
	assert.Equal(t, "fast_search_engine", converted[2].ToolCalls[0].Function.Name)
	assert.Equal(t, `{"query":"Q3 revenue"}`, converted[2].ToolCalls[0].Function.Arguments)

	assert.Equal(t, "tool", converted[3].Role)
	assert.Equal(t, "call_1", converted[3].ToolCallID)
}

func TestMessageHelpers(t *testing.T) {
	assert.Equal(t, Message{Role: "system", Content: "a"}, SystemPrompt("a"))
	assert.Equal(t, Message{Role: "user", Content: "b"}, UserMessage("b"))
	assert.Equal(t, Message{Role: "assistant", Content: "c"}, AssistantMessage("c"))
	assert.Equal(t, Message{Role: "tool", Content: "d", ToolCallID: "id"}, ToolMessage("id", "d"))
}
