// Package retrieval answers report questions by embedding the query,
// ranking stored report chunks by vector similarity, and synthesizing an
// answer over the top matches.
package retrieval

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hrygo/finsense/plugin/ai"
	"github.com/hrygo/finsense/plugin/ai/cache"
	"github.com/hrygo/finsense/plugin/ai/timeout"
	apierrors "github.com/hrygo/finsense/server/internal/errors"
	"github.com/hrygo/finsense/server/internal/observability"
	"github.com/hrygo/finsense/store"
)

const (
	// DefaultTopK is the number of chunks retrieved per query.
	DefaultTopK = 5
	// DefaultMinScore is the similarity floor below which matches are
	// treated as noise.
	DefaultMinScore = 0.5
	// maxQueryLength bounds user-controlled query input.
	maxQueryLength = 1000

	answerCacheTTL = 10 * time.Minute
)

// Outcome is the structured result of one retrieval. Found distinguishes a
// real answer from an empty corpus match; callers decide how to render the
// miss.
type Outcome struct {
	Found bool
	Text  string
}

// ChunkSearcher is the slice of the store the retriever needs.
type ChunkSearcher interface {
	SearchReportChunksByVector(ctx context.Context, opts *store.VectorSearchOptions) ([]*store.ReportChunkWithScore, error)
}

// Retriever embeds queries, searches report chunks, and synthesizes answers.
type Retriever struct {
	searcher  ChunkSearcher
	embedding ai.EmbeddingService
	llm       ai.LLMService
	cache     cache.CacheService

	model    string
	topK     int
	minScore float32
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithTopK overrides the number of chunks retrieved per query.
func WithTopK(k int) Option {
	return func(r *Retriever) {
		if k > 0 {
			r.topK = k
		}
	}
}

// WithMinScore overrides the similarity floor.
func WithMinScore(score float32) Option {
	return func(r *Retriever) {
		r.minScore = score
	}
}

// WithCache enables answer caching for repeated queries.
func WithCache(c cache.CacheService) Option {
	return func(r *Retriever) {
		r.cache = c
	}
}

// NewRetriever creates a new retriever. model names the embedding model the
// chunks were ingested with.
func NewRetriever(searcher ChunkSearcher, embedding ai.EmbeddingService, llm ai.LLMService, model string, opts ...Option) *Retriever {
	r := &Retriever{
		searcher:  searcher,
		embedding: embedding,
		llm:       llm,
		model:     model,
		topK:      DefaultTopK,
		minScore:  DefaultMinScore,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve answers the query from the report corpus. A miss (no chunk above
// the similarity floor, or a vacuous synthesis) is a non-error Outcome with
// Found false.
func (r *Retriever) Retrieve(ctx context.Context, query string) (outcome *Outcome, err error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query is empty")
	}
	if len(query) > maxQueryLength {
		return nil, fmt.Errorf("query too long: %d characters (max %d)", len(query), maxQueryLength)
	}

	metrics := observability.GlobalMetrics()
	metrics.RecordRequest(observability.OpRetrieval)
	start := time.Now()
	defer func() {
		metrics.RecordDuration(observability.OpRetrieval, time.Since(start))
		if err != nil {
			metrics.RecordFailure(observability.OpRetrieval)
		}
	}()

	if cached := r.cachedAnswer(ctx, query); cached != nil {
		return cached, nil
	}

	embedCtx, cancel := context.WithTimeout(ctx, timeout.EmbeddingTimeout)
	vector, err := r.embedding.Embed(embedCtx, query)
	cancel()
	if err != nil {
		return nil, apierrors.RetrievalFailed("failed to embed query", err)
	}

	results, err := r.searcher.SearchReportChunksByVector(ctx, &store.VectorSearchOptions{
		Vector: vector,
		Model:  r.model,
		Limit:  r.topK,
	})
	if err != nil {
		return nil, apierrors.RetrievalFailed("failed to search report chunks", err)
	}

	snippets := make([]string, 0, len(results))
	for _, result := range results {
		if result.Score >= r.minScore {
			snippets = append(snippets, result.Chunk.Content)
		}
	}

	slog.Debug("retrieval completed",
		slog.Int("candidates", len(results)),
		slog.Int("above_floor", len(snippets)))

	if len(snippets) == 0 {
		return &Outcome{Found: false}, nil
	}

	answer, err := r.synthesize(ctx, query, snippets)
	if err != nil {
		return nil, apierrors.Wrap(err, apierrors.ErrCodeLLMUnavailable, "failed to synthesize answer")
	}
	if answer == "" || strings.Contains(strings.ToLower(answer), "empty response") {
		return &Outcome{Found: false}, nil
	}

	outcome = &Outcome{Found: true, Text: answer}
	r.cacheAnswer(ctx, query, outcome)
	return outcome, nil
}

// synthesize asks the model to answer strictly from the retrieved snippets.
func (r *Retriever) synthesize(ctx context.Context, query string, snippets []string) (string, error) {
	var sb strings.Builder
	sb.WriteString("Answer the question using only the context below, taken from quarterly financial reports. ")
	sb.WriteString("If the context does not contain the answer, reply with exactly: empty response\n\n")
	sb.WriteString("Context:\n")
	for i, snippet := range snippets {
		sb.WriteString(fmt.Sprintf("[%d] %s\n", i+1, snippet))
	}
	sb.WriteString("\nQuestion: ")
	sb.WriteString(query)

	answer, err := r.llm.Chat(ctx, []ai.Message{ai.UserMessage(sb.String())})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

func cacheKey(query string) string {
	sum := sha256.Sum256([]byte(query))
	return "answer:" + hex.EncodeToString(sum[:8])
}

func (r *Retriever) cachedAnswer(ctx context.Context, query string) *Outcome {
	if r.cache == nil {
		return nil
	}
	data, ok := r.cache.Get(ctx, cacheKey(query))
	if !ok {
		return nil
	}
	return &Outcome{Found: true, Text: string(data)}
}

func (r *Retriever) cacheAnswer(ctx context.Context, query string, outcome *Outcome) {
	if r.cache == nil || !outcome.Found {
		return
	}
	if err := r.cache.Set(ctx, cacheKey(query), []byte(outcome.Text), answerCacheTTL); err != nil {
		slog.Warn("failed to cache answer", slog.String("error", err.Error()))
	}
}
