package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rhuss/clinicdesk/pkg/observability"
)

// Embedder is the upstream call a Remote provider wraps. *Client satisfies it.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// Remote embeds through an upstream service and falls back to deterministic
// vectors on failure. Failed calls are not retried.
type Remote struct {
	upstream Embedder
	fallback *Deterministic
	dims     int
	logger   *slog.Logger
}

// Compile-time check that Remote implements Provider.
var _ Provider = (*Remote)(nil)

// NewRemote wraps upstream. Vectors whose length differs from dims are
// rejected and replaced by the fallback so the embedding space stays uniform.
func NewRemote(upstream Embedder, dims int, logger *slog.Logger) *Remote {
	if dims <= 0 {
		dims = DefaultDimensions
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Remote{
		upstream: upstream,
		fallback: NewDeterministic(dims),
		dims:     dims,
		logger:   logger,
	}
}

// Embed calls the upstream service. If ctx is done the call is abandoned and
// ctx's error returned. Every other failure produces a degraded Result
// holding deterministic vectors.
func (r *Remote) Embed(ctx context.Context, texts []string) (Result, error) {
	if len(texts) == 0 {
		return Result{}, nil
	}

	start := time.Now()
	vectors, err := r.upstream.Embed(ctx, texts)
	observability.EmbeddingLatency.WithLabelValues(r.Name()).Observe(time.Since(start).Seconds())

	if err == nil {
		err = r.checkDimensions(vectors)
	}
	if err == nil {
		observability.EmbeddingRequestsTotal.WithLabelValues(r.Name(), "ok").Inc()
		return Result{Vectors: vectors}, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return Result{}, ctxErr
	}

	class := Classify(err)
	observability.EmbeddingRequestsTotal.WithLabelValues(r.Name(), "degraded").Inc()
	observability.EmbeddingFallbacksTotal.WithLabelValues(string(class)).Inc()

	attrs := []any{"class", string(class), "texts", len(texts), "error", err}
	if class == FailurePermanent {
		r.logger.Error("embedding request failed, using deterministic embeddings", attrs...)
	} else {
		r.logger.Warn("embedding request failed, using deterministic embeddings", attrs...)
	}

	return Result{
		Vectors:  r.fallback.vectors(texts),
		Degraded: true,
		Reason:   err.Error(),
		Class:    class,
	}, nil
}

func (r *Remote) checkDimensions(vectors [][]float64) error {
	for i, v := range vectors {
		if len(v) != r.dims {
			return &RequestError{
				Message:   fmt.Sprintf("embedding %d has %d dimensions, expected %d", i, len(v), r.dims),
				Malformed: true,
			}
		}
	}
	return nil
}

// Dimensions returns the configured vector length.
func (r *Remote) Dimensions() int {
	return r.dims
}

// Name returns "remote".
func (r *Remote) Name() string {
	return "remote"
}
