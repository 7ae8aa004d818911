package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration to start main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where finsense stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string

	// AI Configuration
	AILLMProvider        string // FINSENSE_AI_LLM_PROVIDER (default: openai)
	AILLMModel           string // FINSENSE_AI_LLM_MODEL (default: gpt-4o-mini)
	AIEmbeddingProvider  string // FINSENSE_AI_EMBEDDING_PROVIDER (default: openai)
	AIEmbeddingModel     string // FINSENSE_AI_EMBEDDING_MODEL (default: text-embedding-3-small)
	AIEmbeddingDims      int    // FINSENSE_AI_EMBEDDING_DIMENSIONS (default: 1536)
	AIOpenAIAPIKey       string // FINSENSE_AI_OPENAI_API_KEY
	AIOpenAIBaseURL      string // FINSENSE_AI_OPENAI_BASE_URL (default: https://api.openai.com/v1)
	AIDeepSeekAPIKey     string // FINSENSE_AI_DEEPSEEK_API_KEY
	AIDeepSeekBaseURL    string // FINSENSE_AI_DEEPSEEK_BASE_URL (default: https://api.deepseek.com)
	AISiliconFlowAPIKey  string // FINSENSE_AI_SILICONFLOW_API_KEY
	AISiliconFlowBaseURL string // FINSENSE_AI_SILICONFLOW_BASE_URL (default: https://api.siliconflow.cn/v1)
	AIOllamaBaseURL      string // FINSENSE_AI_OLLAMA_BASE_URL (default: http://localhost:11434)

	// Agent Configuration
	AgentMaxIterations   int // FINSENSE_AGENT_MAX_ITERATIONS (default: 5)
	AgentMemoryThreshold int // FINSENSE_AGENT_MEMORY_THRESHOLD (default: 10)
	AgentCompressCount   int // FINSENSE_AGENT_COMPRESS_COUNT (default: 5)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if at least one API key or base URL is configured.
func (p *Profile) IsAIEnabled() bool {
	return p.AIOpenAIAPIKey != "" || p.AIDeepSeekAPIKey != "" || p.AISiliconFlowAPIKey != "" || p.AIOllamaBaseURL != ""
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnvOrDefault returns the environment variable parsed as int or the default value.
func getIntEnvOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("invalid integer environment variable, using default",
			slog.String("key", key), slog.String("value", value))
		return defaultValue
	}
	return parsed
}

// FromEnv loads configuration from FINSENSE_* environment variables.
func (p *Profile) FromEnv() {
	p.AILLMProvider = getEnvOrDefault("FINSENSE_AI_LLM_PROVIDER", "openai")
	p.AILLMModel = getEnvOrDefault("FINSENSE_AI_LLM_MODEL", "gpt-4o-mini")
	p.AIEmbeddingProvider = getEnvOrDefault("FINSENSE_AI_EMBEDDING_PROVIDER", "openai")
	p.AIEmbeddingModel = getEnvOrDefault("FINSENSE_AI_EMBEDDING_MODEL", "text-embedding-3-small")
	p.AIEmbeddingDims = getIntEnvOrDefault("FINSENSE_AI_EMBEDDING_DIMENSIONS", 1536)
	p.AIOpenAIAPIKey = os.Getenv("FINSENSE_AI_OPENAI_API_KEY")
	p.AIOpenAIBaseURL = getEnvOrDefault("FINSENSE_AI_OPENAI_BASE_URL", "https://api.openai.com/v1")
	p.AIDeepSeekAPIKey = os.Getenv("FINSENSE_AI_DEEPSEEK_API_KEY")
	p.AIDeepSeekBaseURL = getEnvOrDefault("FINSENSE_AI_DEEPSEEK_BASE_URL", "https://api.deepseek.com")
	p.AISiliconFlowAPIKey = os.Getenv("FINSENSE_AI_SILICONFLOW_API_KEY")
	p.AISiliconFlowBaseURL = getEnvOrDefault("FINSENSE_AI_SILICONFLOW_BASE_URL", "https://api.siliconflow.cn/v1")
	p.AIOllamaBaseURL = getEnvOrDefault("FINSENSE_AI_OLLAMA_BASE_URL", "http://localhost:11434")

	p.AgentMaxIterations = getIntEnvOrDefault("FINSENSE_AGENT_MAX_ITERATIONS", 5)
	p.AgentMemoryThreshold = getIntEnvOrDefault("FINSENSE_AGENT_MEMORY_THRESHOLD", 10)
	p.AgentCompressCount = getIntEnvOrDefault("FINSENSE_AGENT_COMPRESS_COUNT", 5)
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Driver != "sqlite" && p.Driver != "postgres" {
		return errors.Errorf("unsupported database driver %q", p.Driver)
	}

	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("dsn is required for the postgres driver")
	}

	if p.Driver == "sqlite" {
		dataDir, err := checkDataDir(p.Data)
		if err != nil {
			slog.Error("failed to check data dir", slog.String("data", p.Data), slog.String("error", err.Error()))
			return err
		}
		p.Data = dataDir
		if p.DSN == "" {
			dbFile := fmt.Sprintf("finsense_%s.db", p.Mode)
			p.DSN = filepath.Join(dataDir, dbFile)
		}
	}

	if p.AgentMaxIterations <= 0 {
		p.AgentMaxIterations = 5
	}
	if p.AgentMemoryThreshold <= 0 {
		p.AgentMemoryThreshold = 10
	}
	if p.AgentCompressCount <= 0 || p.AgentCompressCount > p.AgentMemoryThreshold {
		p.AgentCompressCount = 5
	}

	return nil
}
