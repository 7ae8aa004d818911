package store

import "context"

// ReportChunk is one embedded slice of an ingested financial report.
type ReportChunk struct {
	ID         int32
	ReportID   string
	ChunkIndex int32
	Content    string
	Embedding  []float32
	Model      string
	CreatedTs  int64
}

// FindReportChunk filters report chunk queries.
type FindReportChunk struct {
	ReportID *string
	Limit    *int
}

// DeleteReportChunk removes all chunks of a report, so a report can be
// re-ingested without duplicates.
type DeleteReportChunk struct {
	ReportID string
}

// VectorSearchOptions parameterizes a similarity search over report chunks.
type VectorSearchOptions struct {
	Vector []float32
	Model  string
	Limit  int
}

// ReportChunkWithScore pairs a chunk with its cosine similarity score.
type ReportChunkWithScore struct {
	Chunk *ReportChunk
	Score float32
}

func (s *Store) CreateReportChunk(ctx context.Context, create *ReportChunk) (*ReportChunk, error) {
	return s.driver.CreateReportChunk(ctx, create)
}

func (s *Store) ListReportChunks(ctx context.Context, find *FindReportChunk) ([]*ReportChunk, error) {
	return s.driver.ListReportChunks(ctx, find)
}

func (s *Store) DeleteReportChunks(ctx context.Context, delete *DeleteReportChunk) error {
	return s.driver.DeleteReportChunks(ctx, delete)
}

func (s *Store) SearchReportChunksByVector(ctx context.Context, opts *VectorSearchOptions) ([]*ReportChunkWithScore, error) {
	return s.driver.SearchReportChunksByVector(ctx, opts)
}
