package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/finsense/store"
)

// CreateReportChunk inserts or replaces one chunk of an ingested report.
// Embeddings are stored as JSON text; they round-trip but cannot be searched.
func (d *DB) CreateReportChunk(ctx context.Context, create *store.ReportChunk) (*store.ReportChunk, error) {
	embedding, err := json.Marshal(create.Embedding)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal embedding")
	}

	stmt := `
		INSERT INTO report_chunk (report_id, chunk_index, content, embedding, model, created_ts)
		VALUES (` + placeholders(6) + `)
		ON CONFLICT (report_id, chunk_index, model)
		DO UPDATE SET
			content = EXCLUDED.content,
			embedding = EXCLUDED.embedding,
			created_ts = EXCLUDED.created_ts
	`

	if _, err := d.db.ExecContext(ctx, stmt,
		create.ReportID,
		create.ChunkIndex,
		create.Content,
		string(embedding),
		create.Model,
		create.CreatedTs,
	); err != nil {
		return nil, errors.Wrap(err, "failed to create report chunk")
	}

	query := `SELECT id FROM report_chunk WHERE report_id = ? AND chunk_index = ? AND model = ?`
	if err := d.db.QueryRowContext(ctx, query, create.ReportID, create.ChunkIndex, create.Model).Scan(&create.ID); err != nil {
		return nil, errors.Wrap(err, "failed to read back report chunk id")
	}

	return create, nil
}

// ListReportChunks lists report chunks.
func (d *DB) ListReportChunks(ctx context.Context, find *store.FindReportChunk) ([]*store.ReportChunk, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ReportID != nil {
		where, args = append(where, "report_id = ?"), append(args, *find.ReportID)
	}

	query := `
		SELECT id, report_id, chunk_index, content, embedding, model, created_ts
		FROM report_chunk
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY report_id, chunk_index
	`
	if find.Limit != nil {
		query += " LIMIT ?"
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
		var embedding sql.NullString
		err := rows.Scan(
			&chunk.ID,
			&chunk.ReportID,
			&chunk.ChunkIndex,
			&chunk.Content,
			&embedding,
			&chunk.Model,
			&chunk.CreatedTs,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan report chunk")
		}
		if embedding.Valid && embedding.String != "" {
			if err := json.Unmarshal([]byte(embedding.String), &chunk.Embedding); err != nil {
				return nil, errors.Wrap(err, "failed to unmarshal embedding")
			}
		}
		list = append(list, &chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

// DeleteReportChunks deletes all chunks of a report.
func (d *DB) DeleteReportChunks(ctx context.Context, delete *store.DeleteReportChunk) error {
	stmt := `DELETE FROM report_chunk WHERE report_id = ?`
	if _, err := d.db.ExecContext(ctx, stmt, delete.ReportID); err != nil {
		return errors.Wrap(err, "failed to delete report chunks")
	}
	return nil
}

// SearchReportChunksByVector is not available on SQLite.
func (d *DB) SearchReportChunksByVector(_ context.Context, _ *store.VectorSearchOptions) ([]*store.ReportChunkWithScore, error) {
	return nil, errors.New("vector search is not supported by the sqlite driver, use postgres")
}
