package postgres

import (
	"context"
	"strings"

	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	"github.com/hrygo/finsense/store"
)

// CreateReportChunk inserts or replaces one chunk of an ingested report.
func (d *DB) CreateReportChunk(ctx context.Context, create *store.ReportChunk) (*store.ReportChunk, error) {
	stmt := `
		INSERT INTO report_chunk (report_id, chunk_index, content, embedding, model, created_ts)
		VALUES (` + placeholders(6) + `)
		ON CONFLICT (report_id, chunk_index, model)
		DO UPDATE SET
			content = EXCLUDED.content,
			embedding = EXCLUDED.embedding,
			created_ts = EXCLUDED.created_ts
		RETURNING id
	`

	vector := pgvector.NewVector(create.Embedding)
	err := d.db.QueryRowContext(ctx, stmt,
		create.ReportID,
		create.ChunkIndex,
		create.Content,
		vector,
		create.Model,
		create.CreatedTs,
	).Scan(&create.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create report chunk")
	}

	return create, nil
}

// ListReportChunks lists report chunks.
func (d *DB) ListReportChunks(ctx context.Context, find *store.FindReportChunk) ([]*store.ReportChunk, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ReportID != nil {
		where, args = append(where, "report_id = "+placeholder(len(args)+1)), append(args, *find.ReportID)
	}

	query := `
		SELECT id, report_id, chunk_index, content, embedding, model, created_ts
		FROM report_chunk
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY report_id, chunk_index
	`
	if find.Limit != nil {
		query += " LIMIT " + placeholder(len(args)+1)
		args = append(args, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list report chunks")
	}
	defer rows.Close()

	list := []*store.ReportChunk{}
	for rows.Next() {
		var chunk store.ReportChunk
		var vector pgvector.Vector
		err := rows.Scan(
			&chunk.ID,
			&chunk.ReportID,
			&chunk.ChunkIndex,
			&chunk.Content,
			&vector,
			&chunk.Model,
			&chunk.CreatedTs,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan report chunk")
		}
		chunk.Embedding = vector.Slice()
		list = append(list, &chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

// DeleteReportChunks deletes all chunks of a report.
func (d *DB) DeleteReportChunks(ctx context.Context, delete *store.DeleteReportChunk) error {
	stmt := `DELETE FROM report_chunk WHERE report_id = ` + placeholder(1)
	if _, err := d.db.ExecContext(ctx, stmt, delete.ReportID); err != nil {
		return errors.Wrap(err, "failed to delete report chunks")
	}
	return nil
}

// SearchReportChunksByVector performs vector similarity search using pgvector.
// The <=> operator computes cosine distance, so ascending distance order
// yields the most similar chunks first.
func (d *DB) SearchReportChunksByVector(ctx context.Context, opts *store.VectorSearchOptions) ([]*store.ReportChunkWithScore, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT
			id, report_id, chunk_index, content, model, created_ts,
			1 - (embedding <=> ` + placeholder(1) + `) AS score
		FROM report_chunk
		WHERE model = ` + placeholder(2) + `
		ORDER BY embedding <=> ` + placeholder(3) + `
		LIMIT ` + placeholder(4)

	vector := pgvector.NewVector(opts.Vector)
	rows, err := d.db.QueryContext(ctx, query, vector, opts.Model, vector, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to vector search report chunks")
	}
	defer rows.Close()

	results := []*store.ReportChunkWithScore{}
	for rows.Next() {
		var result store.ReportChunkWithScore
		var chunk store.ReportChunk

		err := rows.Scan(
			&chunk.ID,
			&chunk.ReportID,
			&chunk.ChunkIndex,
			&chunk.Content,
			&chunk.Model,
			&chunk.CreatedTs,
			&result.Score,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan vector search result")
		}

		result.Chunk = &chunk
		results = append(results, &result)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}
