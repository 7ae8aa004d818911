package profile

import (
	"os"
	"testing"
)

func TestProfileDefaults(t *testing.T) {
	clearEnvVars()

	profile := &Profile{}
	profile.FromEnv()

	tests := []struct {
		name     string
		expected string
		actual   string
	}{
		{"AILLMProvider default", "openai", profile.AILLMProvider},
		{"AILLMModel default", "gpt-4o-mini", profile.AILLMModel},
		{"AIEmbeddingProvider default", "openai", profile.AIEmbeddingProvider},
		{"AIEmbeddingModel default", "text-embedding-3-small", profile.AIEmbeddingModel},
		{"AIOpenAIBaseURL default", "https://api.openai.com/v1", profile.AIOpenAIBaseURL},
		{"AIDeepSeekBaseURL default", "https://api.deepseek.com", profile.AIDeepSeekBaseURL},
		{"AISiliconFlowBaseURL default", "https://api.siliconflow.cn/v1", profile.AISiliconFlowBaseURL},
		{"AIOllamaBaseURL default", "http://localhost:11434", profile.AIOllamaBaseURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.actual != tt.expected {
				t.Errorf("%s: expected %q, got %q", tt.name, tt.expected, tt.actual)
			}
		})
	}

	if profile.AgentMaxIterations != 5 {
		t.Errorf("AgentMaxIterations: expected 5, got %d", profile.AgentMaxIterations)
	}
	if profile.AgentMemoryThreshold != 10 {
		t.Errorf("AgentMemoryThreshold: expected 10, got %d", profile.AgentMemoryThreshold)
	}
	if profile.AgentCompressCount != 5 {
		t.Errorf("AgentCompressCount: expected 5, got %d", profile.AgentCompressCount)
	}
}

func TestProfileFromEnv(t *testing.T) {
	clearEnvVars()

	tests := []struct {
		name     string
		envVar   string
		envValue string
		field    func(*Profile) string
		expected string
	}{
		{
			name:     "FINSENSE_AI_LLM_PROVIDER",
			envVar:   "FINSENSE_AI_LLM_PROVIDER",
			envValue: "deepseek",
			field:    func(p *Profile) string { return p.AILLMProvider },
			expected: "deepseek",
		},
		{
			name:     "FINSENSE_AI_LLM_MODEL",
			envVar:   "FINSENSE_AI_LLM_MODEL",
			envValue: "deepseek-chat",
			field:    func(p *Profile) string { return p.AILLMModel },
			expected: "deepseek-chat",
		},
		{
			name:     "FINSENSE_AI_OPENAI_API_KEY",
			envVar:   "FINSENSE_AI_OPENAI_API_KEY",
			envValue: "openai-key",
			field:    func(p *Profile) string { return p.AIOpenAIAPIKey },
			expected: "openai-key",
		},
		{
			name:     "FINSENSE_AI_OPENAI_BASE_URL",
			envVar:   "FINSENSE_AI_OPENAI_BASE_URL",
			envValue: "https://custom.openai.proxy/v1",
			field:    func(p *Profile) string { return p.AIOpenAIBaseURL },
			expected: "https://custom.openai.proxy/v1",
		},
		{
			name:     "FINSENSE_AI_EMBEDDING_MODEL",
			envVar:   "FINSENSE_AI_EMBEDDING_MODEL",
			envValue: "custom-embedding-model",
			field:    func(p *Profile) string { return p.AIEmbeddingModel },
			expected: "custom-embedding-model",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnvVars()
			os.Setenv(tt.envVar, tt.envValue)

			profile := &Profile{}
			profile.FromEnv()

			actual := tt.field(profile)
			if actual != tt.expected {
				t.Errorf("%s: expected %q, got %q", tt.name, tt.expected, actual)
			}
		})
	}
}

func TestProfileFromEnvAgentSettings(t *testing.T) {
	clearEnvVars()
	os.Setenv("FINSENSE_AGENT_MAX_ITERATIONS", "8")
	os.Setenv("FINSENSE_AGENT_MEMORY_THRESHOLD", "20")
	defer clearEnvVars()

	profile := &Profile{}
	profile.FromEnv()

	if profile.AgentMaxIterations != 8 {
		t.Errorf("AgentMaxIterations: expected 8, got %d", profile.AgentMaxIterations)
	}
	if profile.AgentMemoryThreshold != 20 {
		t.Errorf("AgentMemoryThreshold: expected 20, got %d", profile.AgentMemoryThreshold)
	}
}

func TestIsAIEnabled(t *testing.T) {
	tests := []struct {
		name           string
		setup          func(*Profile)
		expectedResult bool
	}{
		{
			name:           "no API key should return false",
			setup:          func(p *Profile) {},
			expectedResult: false,
		},
		{
			name: "OpenAI API key should return true",
			setup: func(p *Profile) {
				p.AIOpenAIAPIKey = "test-key"
			},
			expectedResult: true,
		},
		{
			name: "DeepSeek API key should return true",
			setup: func(p *Profile) {
				p.AIDeepSeekAPIKey = "test-key"
			},
			expectedResult: true,
		},
		{
			name: "Ollama base URL should return true",
			setup: func(p *Profile) {
				p.AIOllamaBaseURL = "http://localhost:11434"
			},
			expectedResult: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := &Profile{}
			tt.setup(profile)
			result := profile.IsAIEnabled()
			if result != tt.expectedResult {
				t.Errorf("IsAIEnabled(): expected %v, got %v", tt.expectedResult, result)
			}
		})
	}
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	profile := &Profile{Mode: "dev", Driver: "mysql"}
	if err := profile.Validate(); err == nil {
		t.Error("Validate(): expected error for unsupported driver")
	}
}

func clearEnvVars() {
	envVars := []string{
		"FINSENSE_AI_LLM_PROVIDER",
		"FINSENSE_AI_LLM_MODEL",
		"FINSENSE_AI_EMBEDDING_PROVIDER",
		"FINSENSE_AI_EMBEDDING_MODEL",
		"FINSENSE_AI_EMBEDDING_DIMENSIONS",
		"FINSENSE_AI_OPENAI_API_KEY",
		"FINSENSE_AI_OPENAI_BASE_URL",
		"FINSENSE_AI_DEEPSEEK_API_KEY",
		"FINSENSE_AI_DEEPSEEK_BASE_URL",
		"FINSENSE_AI_SILICONFLOW_API_KEY",
		"FINSENSE_AI_SILICONFLOW_BASE_URL",
		"FINSENSE_AI_OLLAMA_BASE_URL",
		"FINSENSE_AGENT_MAX_ITERATIONS",
		"FINSENSE_AGENT_MEMORY_THRESHOLD",
		"FINSENSE_AGENT_COMPRESS_COUNT",
	}
	for _, envVar := range envVars {
		os.Unsetenv(envVar)
	}
}
