package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/finsense/store"
)

// UpsertSessionState inserts or updates a session state payload.
func (d *DB) UpsertSessionState(ctx context.Context, upsert *store.SessionState) (*store.SessionState, error) {
	stmt := `
		INSERT INTO session_state (session_id, payload, created_ts, updated_ts)
		VALUES (` + placeholders(4) + `)
		ON CONFLICT (session_id)
		DO UPDATE SET
			payload = EXCLUDED.payload,
			updated_ts = EXCLUDED.updated_ts
	`

	if _, err := d.db.ExecContext(ctx, stmt,
		upsert.SessionID,
		string(upsert.Payload),
		upsert.CreatedTs,
		upsert.UpdatedTs,
	); err != nil {
		return nil, errors.Wrap(err, "failed to upsert session state")
	}

	query := `SELECT created_ts FROM session_state WHERE session_id = ?`
	if err := d.db.QueryRowContext(ctx, query, upsert.SessionID).Scan(&upsert.CreatedTs); err != nil {
		return nil, errors.Wrap(err, "failed to read back session state")
	}

	return upsert, nil
}

// GetSessionState returns one session state, or nil when the session is new.
func (d *DB) GetSessionState(ctx context.Context, find *store.FindSessionState) (*store.SessionState, error) {
	if find.SessionID == nil {
		return nil, errors.New("session id is required")
	}

	query := `SELECT session_id, payload, created_ts, updated_ts FROM session_state WHERE session_id = ?`

	var state store.SessionState
	var payload string
	err := d.db.QueryRowContext(ctx, query, *find.SessionID).Scan(
		&state.SessionID,
		&payload,
		&state.CreatedTs,
		&state.UpdatedTs,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get session state")
	}

	state.Payload = []byte(payload)
	return &state, nil
}

// ListSessionStates lists session states, most recently updated first.
func (d *DB) ListSessionStates(ctx context.Context, find *store.FindSessionState) ([]*store.SessionState, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.SessionID != nil {
		where, args = append(where, "session_id = ?"), append(args, *find.SessionID)
	}

	query := `
		SELECT session_id, payload, created_ts, updated_ts
		FROM session_state
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY updated_ts DESC
	`
	if find.Limit != nil {
		query += " LIMIT ?"
		args = append(args, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list session states")
	}
	defer rows.Close()

	list := []*store.SessionState{}
	for rows.Next() {
		var state store.SessionState
		var payload string
		if err := rows.Scan(&state.SessionID, &payload, &state.CreatedTs, &state.UpdatedTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan session state")
		}
		state.Payload = []byte(payload)
		list = append(list, &state)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

// DeleteSessionState deletes a session state.
func (d *DB) DeleteSessionState(ctx context.Context, delete *store.DeleteSessionState) error {
	stmt := `DELETE FROM session_state WHERE session_id = ?`
	if _, err := d.db.ExecContext(ctx, stmt, delete.SessionID); err != nil {
		return errors.Wrap(err, "failed to delete session state")
	}
	return nil
}

// DeleteSessionStatesBefore removes sessions last updated before cutoffTs.
func (d *DB) DeleteSessionStatesBefore(ctx context.Context, cutoffTs int64) (int64, error) {
	stmt := `DELETE FROM session_state WHERE updated_ts < ?`
	result, err := d.db.ExecContext(ctx, stmt, cutoffTs)
	if err != nil {
		return 0, errors.Wrap(err, "failed to delete expired session states")
	}
	return result.RowsAffected()
}
