package store

import "context"

// SessionState is the persisted conversation state of one chat session,
// stored as an opaque JSON payload.
type SessionState struct {
	SessionID string
	Payload   []byte
	CreatedTs int64
	UpdatedTs int64
}

// FindSessionState filters session state queries.
type FindSessionState struct {
	SessionID *string
	Limit     *int
}

// DeleteSessionState removes one session.
type DeleteSessionState struct {
	SessionID string
}

func (s *Store) UpsertSessionState(ctx context.Context, upsert *SessionState) (*SessionState, error) {
	return s.driver.UpsertSessionState(ctx, upsert)
}

func (s *Store) GetSessionState(ctx context.Context, find *FindSessionState) (*SessionState, error) {
	return s.driver.GetSessionState(ctx, find)
}

func (s *Store) ListSessionStates(ctx context.Context, find *FindSessionState) ([]*SessionState, error) {
	return s.driver.ListSessionStates(ctx, find)
}

func (s *Store) DeleteSessionState(ctx context.Context, delete *DeleteSessionState) error {
	return s.driver.DeleteSessionState(ctx, delete)
}

func (s *Store) DeleteSessionStatesBefore(ctx context.Context, cutoffTs int64) (int64, error) {
	return s.driver.DeleteSessionStatesBefore(ctx, cutoffTs)
}
