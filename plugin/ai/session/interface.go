// Package session persists per-session conversation state and serializes
// concurrent turns on the same session.
package session

import (
	"context"

	"github.com/hrygo/finsense/plugin/ai/agent"
)

// Service defines the session persistence service interface.
type Service interface {
	// LoadState loads the conversation state. Returns nil for a new session.
	LoadState(ctx context.Context, sessionID string) (*agent.State, error)

	// SaveState saves the conversation state.
	SaveState(ctx context.Context, sessionID string, state *agent.State) error

	// ListSessions lists recent sessions, most recently active first.
	ListSessions(ctx context.Context, limit int) ([]Summary, error)

	// DeleteSession removes a session. Deleting an unknown session is a no-op.
	DeleteSession(ctx context.Context, sessionID string) error

	// CleanupExpired removes sessions idle for more than retentionDays.
	// Returns the number of sessions removed.
	CleanupExpired(ctx context.Context, retentionDays int) (int64, error)
}

// Summary describes one stored session.
type Summary struct {
	SessionID   string `json:"session_id"`
	LastMessage string `json:"last_message"`
	UpdatedAt   int64  `json:"updated_at"`
}
