// Package faq answers clinic questions from a small in-memory collection of
// documents ranked by cosine similarity of their embeddings.
package faq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/rhuss/clinicdesk/pkg/debug"
	"github.com/rhuss/clinicdesk/pkg/embedding"
	"github.com/rhuss/clinicdesk/pkg/observability"
)

var (
	// ErrNotLoaded is returned by Query before the first successful Load.
	ErrNotLoaded = errors.New("faq index not loaded")

	// ErrDimensionMismatch reports vectors whose length disagrees with the
	// rest of the index.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// ScoredResult pairs a document with its similarity to a query.
type ScoredResult struct {
	Document Document
	Score    float64
}

// snapshot is an immutable view of the loaded collection. docs[i] is
// embedded as vectors[i].
type snapshot struct {
	docs    []Document
	vectors [][]float64
	dims    int
}

// Index holds the FAQ documents and their embeddings. Query may run
// concurrently with Load; each query sees one complete snapshot.
type Index struct {
	provider embedding.Provider
	source   Source
	logger   *slog.Logger

	loadMu sync.Mutex
	snap   atomic.Pointer[snapshot]
}

// NewIndex creates an unloaded index.
func NewIndex(provider embedding.Provider, source Source, logger *slog.Logger) *Index {
	if logger == nil {
		logger = slog.Default()
	}
	return &Index{provider: provider, source: source, logger: logger}
}

// Load reads every document from the source, embeds all contents in one
// batch and publishes the result. On failure the previously loaded state,
// if any, is kept. Calling Load again rebuilds the index from the source.
func (ix *Index) Load(ctx context.Context) error {
	ix.loadMu.Lock()
	defer ix.loadMu.Unlock()

	docs, err := ix.source.Documents(ctx)
	if err != nil {
		return fmt.Errorf("loading FAQ documents: %w", err)
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Content
	}

	res, err := ix.provider.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding FAQ documents: %w", err)
	}
	if len(res.Vectors) != len(docs) {
		return fmt.Errorf("embedding FAQ documents: got %d vectors for %d documents", len(res.Vectors), len(docs))
	}

	dims := ix.provider.Dimensions()
	if len(res.Vectors) > 0 {
		dims = len(res.Vectors[0])
	}
	for i, v := range res.Vectors {
		if len(v) != dims {
			return fmt.Errorf("document %d: %w: got %d, expected %d", i, ErrDimensionMismatch, len(v), dims)
		}
	}

	if res.Degraded {
		ix.logger.Warn("FAQ index built from fallback embeddings",
			"class", string(res.Class), "reason", res.Reason)
	}

	ix.snap.Store(&snapshot{docs: docs, vectors: res.Vectors, dims: dims})
	observability.FAQDocuments.Set(float64(len(docs)))
	ix.logger.Info("FAQ index loaded", "documents", len(docs), "dimensions", dims, "provider", ix.provider.Name())
	return nil
}

// Loaded reports whether Load has succeeded at least once.
func (ix *Index) Loaded() bool {
	return ix.snap.Load() != nil
}

// Len returns the number of loaded documents.
func (ix *Index) Len() int {
	s := ix.snap.Load()
	if s == nil {
		return 0
	}
	return len(s.docs)
}

// Query returns the topK documents most similar to text, best first.
// Documents with equal scores keep their load order. The result has
// min(topK, documents) entries; an empty index yields an empty slice.
func (ix *Index) Query(ctx context.Context, text string, topK int) ([]ScoredResult, error) {
	s := ix.snap.Load()
	if s == nil {
		return nil, ErrNotLoaded
	}
	if len(s.docs) == 0 || topK <= 0 {
		return []ScoredResult{}, nil
	}

	res, err := ix.provider.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(res.Vectors) != 1 {
		return nil, fmt.Errorf("embedding query: got %d vectors", len(res.Vectors))
	}
	query := res.Vectors[0]
	if len(query) != s.dims {
		return nil, fmt.Errorf("query: %w: got %d, index has %d", ErrDimensionMismatch, len(query), s.dims)
	}
	if res.Degraded {
		debug.Log("faq", "query embedded with fallback", "class", string(res.Class))
	}

	scored := make([]ScoredResult, len(s.docs))
	for i, doc := range s.docs {
		scored[i] = ScoredResult{Document: doc, Score: CosineSimilarity(query, s.vectors[i])}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topK < len(scored) {
		scored = scored[:topK]
	}

	if debug.Enabled("faq") {
		for i, r := range scored {
			debug.Log("faq", "match", "rank", i+1, "title", r.Document.Title, "score", r.Score)
		}
	}
	return scored, nil
}

// CosineSimilarity returns dot(a, b) / (|a| |b|), or 0 when either vector
// has zero magnitude. Vectors are expected to have equal length; extra
// components of the longer one are ignored.
func CosineSimilarity(a, b []float64) float64 {
	n := min(len(a), len(b))
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
