package agent

import (
	"context"
	"strings"

	"github.com/hrygo/finsense/plugin/ai"
	"github.com/hrygo/finsense/plugin/ai/timeout"
)

// llmSummarizer implements Summarizer on top of the LLM service.
type llmSummarizer struct {
	llm ai.LLMService
}

// NewLLMSummarizer creates a Summarizer backed by the LLM service.
func NewLLMSummarizer(llm ai.LLMService) Summarizer {
	return &llmSummarizer{llm: llm}
}

func (s *llmSummarizer) Summarize(ctx context.Context, currentSummary, newLines string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout.SummarizeTimeout)
	defer cancel()

	resp, err := s.llm.Chat(ctx, []ai.Message{
		ai.UserMessage(SummarizePrompt(currentSummary, newLines)),
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp), nil
}
