// Package embedding converts text into fixed-dimension vectors for the FAQ
// index.
//
// Two providers implement the Provider interface and are selected once at
// construction:
//
//   - Deterministic derives a reproducible vector from a SHA-256 hash of the
//     text. It needs no network and is the default.
//   - Remote calls an OpenAI-compatible /v1/embeddings endpoint. When the call
//     fails for any reason other than caller cancellation, it answers with
//     deterministic vectors instead and marks the Result as degraded.
//
// Degradation is reported through the Result value, logged, and counted in
// clinicdesk_embedding_fallbacks_total. It is never returned as an error.
package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultDimensions matches OpenAI's text-embedding-3-small.
const DefaultDimensions = 1536

// Provider embeds text.
type Provider interface {
	// Embed returns one vector per input text, in input order. An empty input
	// yields an empty Result. The error is non-nil only when ctx is done;
	// upstream failures are reported through Result.Degraded.
	Embed(ctx context.Context, texts []string) (Result, error)

	// Dimensions returns the length of every vector this provider produces.
	Dimensions() int

	// Name identifies the provider in logs and metrics.
	Name() string
}

// FailureClass categorizes why a remote call was abandoned.
type FailureClass string

const (
	// FailureNone means the vectors came from the configured provider.
	FailureNone FailureClass = ""
	// FailureTransient covers timeouts, connection errors, 429 and 5xx.
	FailureTransient FailureClass = "transient"
	// FailurePermanent covers rejected credentials, bad requests and
	// unusable responses. Retrying would not help.
	FailurePermanent FailureClass = "permanent"
)

// Result is the outcome of an Embed call.
type Result struct {
	Vectors [][]float64

	// Degraded is true when Vectors came from the deterministic fallback
	// rather than the configured provider.
	Degraded bool
	Reason   string
	Class    FailureClass
}

// Config selects and configures a Provider.
type Config struct {
	Provider   string // "deterministic" or "remote"
	URL        string
	APIKey     string
	Model      string
	Dimensions int
	Timeout    time.Duration
}

// New builds the Provider described by cfg. A remote provider without an API
// key is replaced by the deterministic one, with a warning.
func New(cfg Config, logger *slog.Logger) (Provider, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dims := cfg.Dimensions
	if dims <= 0 {
		dims = DefaultDimensions
	}

	switch cfg.Provider {
	case "", "deterministic":
		logger.Info("embedding provider selected", "provider", "deterministic", "dimensions", dims)
		return NewDeterministic(dims), nil
	case "remote":
		if cfg.APIKey == "" {
			logger.Warn("embedding API key not set, using deterministic embeddings",
				"url", cfg.URL, "model", cfg.Model)
			return NewDeterministic(dims), nil
		}
		client := NewClient(cfg.URL, cfg.APIKey, cfg.Model, cfg.Timeout)
		logger.Info("embedding provider selected", "provider", "remote",
			"url", cfg.URL, "model", cfg.Model, "dimensions", dims)
		return NewRemote(client, dims, logger), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}
