package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// ReportChunk model related methods.
	CreateReportChunk(ctx context.Context, create *ReportChunk) (*ReportChunk, error)
	ListReportChunks(ctx context.Context, find *FindReportChunk) ([]*ReportChunk, error)
	DeleteReportChunks(ctx context.Context, delete *DeleteReportChunk) error

	// SearchReportChunksByVector performs semantic search using vector similarity.
	SearchReportChunksByVector(ctx context.Context, opts *VectorSearchOptions) ([]*ReportChunkWithScore, error)

	// SessionState model related methods.
	UpsertSessionState(ctx context.Context, upsert *SessionState) (*SessionState, error)
	GetSessionState(ctx context.Context, find *FindSessionState) (*SessionState, error)
	ListSessionStates(ctx context.Context, find *FindSessionState) ([]*SessionState, error)
	DeleteSessionState(ctx context.Context, delete *DeleteSessionState) error
	DeleteSessionStatesBefore(ctx context.Context, cutoffTs int64) (int64, error)
}
