package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"time"

	"github.com/rhuss/clinicdesk/pkg/observability"
)

// LCG constants for expanding the text hash into vector components.
const (
	lcgMultiplier = 1103515245
	lcgIncrement  = 12345
	lcgModulus    = 1 << 31
)

// Deterministic derives embeddings from a SHA-256 hash of the text. The same
// text always yields a bit-identical vector, across calls and restarts.
type Deterministic struct {
	dims int
}

// Compile-time check that Deterministic implements Provider.
var _ Provider = (*Deterministic)(nil)

// NewDeterministic creates a deterministic provider producing dims-length vectors.
func NewDeterministic(dims int) *Deterministic {
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &Deterministic{dims: dims}
}

// Embed returns one deterministic vector per text. It never degrades and
// does not consult ctx: the work is pure computation.
func (d *Deterministic) Embed(_ context.Context, texts []string) (Result, error) {
	if len(texts) == 0 {
		return Result{}, nil
	}
	start := time.Now()
	vectors := d.vectors(texts)
	observability.EmbeddingRequestsTotal.WithLabelValues(d.Name(), "ok").Inc()
	observability.EmbeddingLatency.WithLabelValues(d.Name()).Observe(time.Since(start).Seconds())
	return Result{Vectors: vectors}, nil
}

func (d *Deterministic) vectors(texts []string) [][]float64 {
	out := make([][]float64, len(texts))
	for i, text := range texts {
		out[i] = d.Vector(text)
	}
	return out
}

// Vector computes the embedding of a single text.
//
// The SHA-256 digest is read as a big-endian integer h. Component i is
// ((h+i)*1103515245 + 12345) mod 2^31, scaled to [0, 1) and then to [-1, 1).
// Only h mod 2^31 influences the result, so the low 31 bits of the digest are
// all that is kept.
func (d *Deterministic) Vector(text string) []float64 {
	sum := sha256.Sum256([]byte(text))
	low := uint64(binary.BigEndian.Uint32(sum[len(sum)-4:])) & (lcgModulus - 1)

	vec := make([]float64, d.dims)
	for i := range vec {
		seed := (low + uint64(i)) % lcgModulus
		v := (seed*lcgMultiplier + lcgIncrement) % lcgModulus
		vec[i] = (float64(v)/lcgModulus - 0.5) * 2
	}
	return vec
}

// Dimensions returns the vector length.
func (d *Deterministic) Dimensions() int {
	return d.dims
}

// Name returns "deterministic".
func (d *Deterministic) Name() string {
	return "deterministic"
}
