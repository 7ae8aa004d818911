package ai

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	aiplugin "github.com/hrygo/finsense/plugin/ai"
	"github.com/hrygo/finsense/server/internal/observability"
	"github.com/hrygo/finsense/store"
)

// embedBatchSize bounds one embedding API request.
const embedBatchSize = 16

// Ingester chunks report text, embeds each chunk, and writes the result to
// the store. Re-ingesting a report replaces its previous chunks.
type Ingester struct {
	embedding aiplugin.EmbeddingService
	store     *store.Store
	model     string
}

// NewIngester creates a new report ingester.
func NewIngester(embedding aiplugin.EmbeddingService, s *store.Store, model string) *Ingester {
	return &Ingester{
		embedding: embedding,
		store:     s,
		model:     model,
	}
}

// IngestReport splits the report into chunks, embeds them, and persists
// them under reportID. Returns the number of chunks stored.
func (ing *Ingester) IngestReport(ctx context.Context, reportID, content string) (count int, err error) {
	if reportID == "" {
		return 0, errors.New("report id is empty")
	}
	if content == "" {
		return 0, errors.New("report content is empty")
	}

	metrics := observability.GlobalMetrics()
	metrics.RecordRequest(observability.OpIngest)
	start := time.Now()
	defer func() {
		metrics.RecordDuration(observability.OpIngest, time.Since(start))
		if err != nil {
			metrics.RecordFailure(observability.OpIngest)
		}
	}()

	chunks := ChunkDocument(content)

	embeddings := make([][]float32, 0, len(chunks))
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch, err := ing.embedding.EmbedBatch(ctx, chunks[start:end])
		if err != nil {
			return 0, errors.Wrapf(err, "failed to embed chunks %d..%d", start, end-1)
		}
		embeddings = append(embeddings, batch...)
	}
	if len(embeddings) != len(chunks) {
		return 0, errors.Errorf("embedding count mismatch: %d chunks, %d vectors", len(chunks), len(embeddings))
	}

	// Replace any previous ingestion of this report.
	if err := ing.store.DeleteReportChunks(ctx, &store.DeleteReportChunk{ReportID: reportID}); err != nil {
		return 0, errors.Wrap(err, "failed to clear previous chunks")
	}

	now := time.Now().Unix()
	for i, chunk := range chunks {
		if _, err := ing.store.CreateReportChunk(ctx, &store.ReportChunk{
			ReportID:   reportID,
			ChunkIndex: int32(i),
			Content:    chunk,
			Embedding:  embeddings[i],
			Model:      ing.model,
			CreatedTs:  now,
		}); err != nil {
			return 0, errors.Wrapf(err, "failed to store chunk %d", i)
		}
	}

	slog.Info("report ingested",
		slog.String("report_id", reportID),
		slog.Int("chunks", len(chunks)))

	return len(chunks), nil
}
