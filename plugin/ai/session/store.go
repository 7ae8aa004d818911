package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hrygo/finsense/plugin/ai/agent"
	"github.com/hrygo/finsense/plugin/ai/cache"
	"github.com/hrygo/finsense/store"
)

const (
	cachePrefix = "session:"
	cacheTTL    = 30 * time.Minute
)

// sessionStore implements Service with database persistence and a
// read-through cache.
type sessionStore struct {
	store *store.Store
	cache cache.CacheService
}

// NewSessionStore creates a new session store. The cache is optional.
func NewSessionStore(s *store.Store, c cache.CacheService) Service {
	return &sessionStore{
		store: s,
		cache: c,
	}
}

// SaveState saves the conversation state.
func (s *sessionStore) SaveState(ctx context.Context, sessionID string, state *agent.State) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal session state: %w", err)
	}

	now := time.Now().Unix()
	if _, err := s.store.UpsertSessionState(ctx, &store.SessionState{
		SessionID: sessionID,
		Payload:   payload,
		CreatedTs: now,
		UpdatedTs: now,
	}); err != nil {
		return fmt.Errorf("failed to save session state: %w", err)
	}

	s.updateCache(ctx, sessionID, payload)
	return nil
}

// LoadState loads the conversation state. Returns nil for a new session.
func (s *sessionStore) LoadState(ctx context.Context, sessionID string) (*agent.State, error) {
	if cached := s.loadFromCache(ctx, sessionID); cached != nil {
		return cached, nil
	}

	record, err := s.store.GetSessionState(ctx, &store.FindSessionState{SessionID: &sessionID})
	if err != nil {
		return nil, fmt.Errorf("failed to load session state: %w", err)
	}
	if record == nil {
		return nil, nil
	}

	var state agent.State
	if err := json.Unmarshal(record.Payload, &state); err != nil {
		// A corrupt payload must not brick the session; start fresh.
		slog.Warn("failed to unmarshal session state, starting fresh",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()))
		return agent.NewState(), nil
	}

	s.updateCache(ctx, sessionID, record.Payload)
	return &state, nil
}

// ListSessions lists recent sessions.
func (s *sessionStore) ListSessions(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 20
	}

	records, err := s.store.ListSessionStates(ctx, &store.FindSessionState{Limit: &limit})
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	summaries := make([]Summary, 0, len(records))
	for _, record := range records {
		var state agent.State
		var lastMessage string
		if err := json.Unmarshal(record.Payload, &state); err == nil {
			if last := state.LastMessage(); last != nil {
				lastMessage = last.Text()
			}
		}

		summaries = append(summaries, Summary{
			SessionID:   record.SessionID,
			LastMessage: lastMessage,
			UpdatedAt:   record.UpdatedTs,
		})
	}

	return summaries, nil
}

// DeleteSession removes a session.
func (s *sessionStore) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.store.DeleteSessionState(ctx, &store.DeleteSessionState{SessionID: sessionID}); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	s.invalidateCache(ctx, sessionID)
	return nil
}

// CleanupExpired removes sessions idle for more than retentionDays.
func (s *sessionStore) CleanupExpired(ctx context.Context, retentionDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays).Unix()
	deleted, err := s.store.DeleteSessionStatesBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup expired sessions: %w", err)
	}
	return deleted, nil
}

func (s *sessionStore) updateCache(ctx context.Context, sessionID string, payload []byte) {
	if s.cache == nil {
		return
	}
	key := cachePrefix + sessionID
	if err := s.cache.Set(ctx, key, payload, cacheTTL); err != nil {
		slog.Warn("failed to update session cache", slog.String("key", key), slog.String("error", err.Error()))
	}
}

func (s *sessionStore) loadFromCache(ctx context.Context, sessionID string) *agent.State {
	if s.cache == nil {
		return nil
	}

	payload, ok := s.cache.Get(ctx, cachePrefix+sessionID)
	if !ok {
		return nil
	}

	var state agent.State
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil
	}
	return &state
}

func (s *sessionStore) invalidateCache(ctx context.Context, sessionID string) {
	if s.cache == nil {
		return
	}
	key := cachePrefix + sessionID
	if err := s.cache.Invalidate(ctx, key); err != nil {
		slog.Warn("failed to invalidate session cache", slog.String("key", key), slog.String("error", err.Error()))
	}
}

var _ Service = (*sessionStore)(nil)
