package ai

import (
	"testing"

	"github.com/hrygo/finsense/internal/profile"
)

// TestNewConfigFromProfile_OpenAI tests OpenAI configuration.
func TestNewConfigFromProfile_OpenAI(t *testing.T) {
	prof := &profile.Profile{
		AIEmbeddingProvider: "openai",
		AIEmbeddingModel:    "text-embedding-3-small",
		AIEmbeddingDims:     1536,
		AIOpenAIAPIKey:      "openai-key",
		AIOpenAIBaseURL:     "https://api.openai.com/v1",
		AILLMProvider:       "openai",
		AILLMModel:          "gpt-4o-mini",
	}

	cfg := NewConfigFromProfile(prof)

	if cfg.Embedding.Provider != "openai" {
		t.Errorf("Expected Embedding.Provider=openai, got %s", cfg.Embedding.Provider)
	}
	if cfg.Embedding.Model != "text-embedding-3-small" {
		t.Errorf("Expected Embedding.Model=text-embedding-3-small, got %s", cfg.Embedding.Model)
	}
	if cfg.Embedding.APIKey != "openai-key" {
		t.Errorf("Expected Embedding.APIKey=openai-key, got %s", cfg.Embedding.APIKey)
	}
	if cfg.Embedding.Dimensions != 1536 {
		t.Errorf("Expected Embedding.Dimensions=1536, got %d", cfg.Embedding.Dimensions)
	}
	if cfg.LLM.Provider != "openai" {
		t.Errorf("Expected LLM.Provider=openai, got %s", cfg.LLM.Provider)
	}
	if cfg.LLM.APIKey != "openai-key" {
		t.Errorf("Expected LLM.APIKey=openai-key, got %s", cfg.LLM.APIKey)
	}
	if cfg.LLM.MaxTokens != 2048 {
		t.Errorf("Expected LLM.MaxTokens=2048, got %d", cfg.LLM.MaxTokens)
	}
}

// TestNewConfigFromProfile_DeepSeek tests DeepSeek LLM configuration.
func TestNewConfigFromProfile_DeepSeek(t *testing.T) {
	prof := &profile.Profile{
		AIEmbeddingProvider: "siliconflow",
		AIEmbeddingModel:    "BAAI/bge-m3",
		AIEmbeddingDims:     1024,
		AISiliconFlowAPIKey: "sf-key",
		AISiliconFlowBaseURL: "https://api.siliconflow.cn/v1",
		AILLMProvider:       "deepseek",
		AILLMModel:          "deepseek-chat",
		AIDeepSeekAPIKey:    "deepseek-key",
		AIDeepSeekBaseURL:   "https://api.deepseek.com",
	}

	cfg := NewConfigFromProfile(prof)

	if cfg.Embedding.Provider != "siliconflow" {
		t.Errorf("Expected Embedding.Provider=siliconflow, got %s", cfg.Embedding.Provider)
	}
	if cfg.Embedding.APIKey != "sf-key" {
		t.Errorf("Expected Embedding.APIKey=sf-key, got %s", cfg.Embedding.APIKey)
	}
	if cfg.LLM.Provider != "deepseek" {
		t.Errorf("Expected LLM.Provider=deepseek, got %s", cfg.LLM.Provider)
	}
	if cfg.LLM.APIKey != "deepseek-key" {
		t.Errorf("Expected LLM.APIKey=deepseek-key, got %s", cfg.LLM.APIKey)
	}
	if cfg.LLM.BaseURL != "https://api.deepseek.com" {
		t.Errorf("Expected LLM.BaseURL=https://api.deepseek.com, got %s", cfg.LLM.BaseURL)
	}
}

// TestConfigValidate tests configuration validation.
func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		cfg         *Config
		expectError bool
	}{
		{
			name: "valid config",
			cfg: &Config{
				Embedding: EmbeddingConfig{Provider: "openai", APIKey: "key"},
				LLM:       LLMConfig{Provider: "openai", APIKey: "key"},
			},
			expectError: false,
		},
		{
			name: "missing embedding provider",
			cfg: &Config{
				LLM: LLMConfig{Provider: "openai", APIKey: "key"},
			},
			expectError: true,
		},
		{
			name: "missing embedding API key",
			cfg: &Config{
				Embedding: EmbeddingConfig{Provider: "openai"},
				LLM:       LLMConfig{Provider: "openai", APIKey: "key"},
			},
			expectError: true,
		},
		{
			name: "missing LLM API key",
			cfg: &Config{
				Embedding: EmbeddingConfig{Provider: "openai", APIKey: "key"},
				LLM:       LLMConfig{Provider: "openai"},
			},
			expectError: true,
		},
		{
			name: "ollama needs no API key",
			cfg: &Config{
				Embedding: EmbeddingConfig{Provider: "ollama", BaseURL: "http://localhost:11434"},
				LLM:       LLMConfig{Provider: "ollama", BaseURL: "http://localhost:11434"},
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.expectError && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}
