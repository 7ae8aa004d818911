// Package timeout defines centralized timeout constants for AI operations.
package timeout

import "time"

const (
	// TurnTimeout is the timeout for one full agent turn.
	TurnTimeout = 2 * time.Minute

	// ToolExecutionTimeout is the timeout for individual tool execution.
	ToolExecutionTimeout = 30 * time.Second

	// EmbeddingTimeout is the timeout for embedding generation.
	EmbeddingTimeout = 30 * time.Second

	// SummarizeTimeout is the timeout for history summarization.
	SummarizeTimeout = 30 * time.Second

	// MaxIterations is the default maximum number of oracle/tool loop
	// iterations per turn.
	MaxIterations = 5

	// MaxTruncateLength is the maximum length for truncating strings in logs.
	MaxTruncateLength = 200
)
