package ai

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Message represents a chat message on the provider wire.
type Message struct {
	Role       string // system, user, assistant, tool
	Content    string
	ToolCalls  []ToolCall // set on assistant messages requesting tool execution
	ToolCallID string     // set on tool messages answering a call
}

// ToolCall represents a single tool invocation requested by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string // raw JSON arguments
}

// ToolSchema describes a callable tool exposed to the model.
type ToolSchema struct {
	Name        string
	Description string
	Parameters  map[string]any // JSON schema for the arguments object
}

// LLMService is the LLM service interface.
type LLMService interface {
	// Chat performs synchronous chat and returns the response text.
	Chat(ctx context.Context, messages []Message) (string, error)

	// ChatWithTools performs chat with the given tools bound. The returned
	// assistant message may carry tool calls instead of (or alongside) text.
	ChatWithTools(ctx context.Context, messages []Message, tools []ToolSchema) (*Message, error)
}

type llmService struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	maxRetries  int
}

// NewLLMService creates a new LLMService.
func NewLLMService(cfg *LLMConfig) (LLMService, error) {
	var clientConfig openai.ClientConfig

	switch cfg.Provider {
	case "openai", "deepseek", "siliconflow":
		// DeepSeek and SiliconFlow are compatible with the OpenAI API
		clientConfig = openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientConfig.BaseURL = cfg.BaseURL
		}

	case "ollama":
		clientConfig = openai.DefaultConfig("")
		clientConfig.BaseURL = cfg.BaseURL + "/v1"

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2048
	}

	return &llmService{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
		maxRetries:  maxRetries,
	}, nil
}

func (s *llmService) Chat(ctx context.Context, messages []Message) (string, error) {
	resp, err := s.complete(ctx, messages, nil)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func (s *llmService) ChatWithTools(ctx context.Context, messages []Message, tools []ToolSchema) (*Message, error) {
	return s.complete(ctx, messages, tools)
}

func (s *llmService) complete(ctx context.Context, messages []Message, tools []ToolSchema) (*Message, error) {
	req := openai.ChatCompletionRequest{
		Model:       s.model,
		Messages:    convertMessages(messages),
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	}
	for _, t := range tools {
		req.Tools = append(req.Tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}

	var result *Message
	err := s.doWithRetry(ctx, func() error {
		resp, err := s.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("empty chat response")
		}
		result = convertResponseMessage(resp.Choices[0].Message)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	return result, nil
}

// doWithRetry retries transient provider failures with exponential backoff.
func (s *llmService) doWithRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(); err != nil {
			lastErr = err
			backoff := time.Duration(math.Pow(2, float64(attempt))) * time.Second
			slog.Warn("LLM request failed, retrying",
				slog.Int("attempt", attempt+1),
				slog.Duration("backoff", backoff),
				slog.String("error", err.Error()))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			continue
		}
		return nil
	}
	return lastErr
}

func convertMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		msg := openai.ChatCompletionMessage{
			Role:       m.Role,
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}
		out[i] = msg
	}
	return out
}

func convertResponseMessage(m openai.ChatCompletionMessage) *Message {
	result := &Message{
		Role:    m.Role,
		Content: m.Content,
	}
	for _, tc := range m.ToolCalls {
		result.ToolCalls = append(result.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return result
}

// SystemPrompt creates a system message.
func SystemPrompt(content string) Message {
	return Message{Role: "system", Content: content}
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}

// AssistantMessage creates an assistant message.
func AssistantMessage(content string) Message {
	return Message{Role: "assistant", Content: content}
}

// ToolMessage creates a tool result message answering the given call.
func ToolMessage(callID, content string) Message {
	return Message{Role: "tool", Content: content, ToolCallID: callID}
}
