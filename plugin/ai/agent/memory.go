package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

const (
	// DefaultMemoryThreshold is the non-system message count above which the
	// oldest slice of history is compressed into the summary.
	DefaultMemoryThreshold = 10

	// DefaultCompressCount is how many of the oldest messages are compressed
	// per run.
	DefaultCompressCount = 5
)

// Summarizer folds a batch of conversation text into the rolling summary.
type Summarizer interface {
	Summarize(ctx context.Context, currentSummary, newLines string) (string, error)
}

// SummarizerFunc adapts a function to the Summarizer interface.
type SummarizerFunc func(ctx context.Context, currentSummary, newLines string) (string, error)

func (f SummarizerFunc) Summarize(ctx context.Context, currentSummary, newLines string) (string, error) {
	return f(ctx, currentSummary, newLines)
}

// MemoryManager compresses the oldest slice of conversation history into the
// rolling summary once the history grows past a threshold.
type MemoryManager struct {
	summarizer    Summarizer
	threshold     int
	compressCount int
}

// MemoryOption configures a MemoryManager.
type MemoryOption func(*MemoryManager)

// WithThreshold overrides the compression trigger threshold.
func WithThreshold(n int) MemoryOption {
	return func(m *MemoryManager) {
		if n > 0 {
			m.threshold = n
		}
	}
}

// WithCompressCount overrides how many messages are compressed per run.
func WithCompressCount(n int) MemoryOption {
	return func(m *MemoryManager) {
		if n > 0 {
			m.compressCount = n
		}
	}
}

// NewMemoryManager creates a new MemoryManager.
func NewMemoryManager(summarizer Summarizer, opts ...MemoryOption) *MemoryManager {
	m := &MemoryManager{
		summarizer:    summarizer,
		threshold:     DefaultMemoryThreshold,
		compressCount: DefaultCompressCount,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Manage inspects the state and, when the non-system history exceeds the
// threshold, summarizes the oldest messages and emits deletion markers for
// them. The input state is not mutated; the caller applies the update.
//
// System messages are excluded from both the count and the selection: the
// oracle reconstructs its instruction block fresh on every invocation, so
// they are not conversational history.
func (m *MemoryManager) Manage(ctx context.Context, state *State) (Update, error) {
	chat := make([]Message, 0, len(state.Messages))
	for _, msg := range state.Messages {
		if msg.Role != RoleSystem {
			chat = append(chat, msg)
		}
	}

	if len(chat) <= m.threshold {
		return Update{}, nil
	}

	oldest := chat[:m.compressCount]

	deletions := make([]string, 0, len(oldest))
	lines := make([]string, 0, len(oldest))
	for _, msg := range oldest {
		if msg.ID == "" {
			return Update{}, fmt.Errorf("%w: cannot target message for deletion", ErrMissingMessageID)
		}
		deletions = append(deletions, msg.ID)
		lines = append(lines, msg.Text())
	}

	newSummary, err := m.summarizer.Summarize(ctx, state.Summary, strings.Join(lines, "\n"))
	if err != nil {
		return Update{}, fmt.Errorf("summarize history: %w", err)
	}

	slog.Debug("compressed conversation history",
		slog.Int("compressed", len(oldest)),
		slog.Int("remaining", len(chat)-len(oldest)),
		slog.Int("summary_length", len(newSummary)))

	return Update{
		Summary:   &newSummary,
		Deletions: deletions,
	}, nil
}
