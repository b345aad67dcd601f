package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be > 0, got %d", c.Server.Port))
	}
	if c.Server.MaxBodySize <= 0 {
		errs = append(errs, fmt.Errorf("server.max_body_size must be > 0, got %d", c.Server.MaxBodySize))
	}

	switch c.Embedding.Provider {
	case EmbeddingDeterministic:
		// valid
	case EmbeddingRemote:
		if c.Embedding.URL == "" {
			errs = append(errs, fmt.Errorf("embedding.url is required when embedding.provider is %q", EmbeddingRemote))
		}
		if c.Embedding.Model == "" {
			errs = append(errs, fmt.Errorf("embedding.model is required when embedding.provider is %q", EmbeddingRemote))
		}
	default:
		errs = append(errs, fmt.Errorf("embedding.provider must be %q or %q, got %q",
			EmbeddingDeterministic, EmbeddingRemote, c.Embedding.Provider))
	}

	if c.Embedding.Dimensions <= 0 {
		errs = append(errs, fmt.Errorf("embedding.dimensions must be > 0, got %d", c.Embedding.Dimensions))
	}

	if !c.LLM.Mock && c.LLM.BackendURL == "" {
		errs = append(errs, fmt.Errorf("llm.backend_url is required when llm.mock is false"))
	}
	if c.LLM.MaxTokens < 0 {
		errs = append(errs, fmt.Errorf("llm.max_tokens must be >= 0, got %d", c.LLM.MaxTokens))
	}

	if c.FAQ.TopK <= 0 {
		errs = append(errs, fmt.Errorf("faq.top_k must be > 0, got %d", c.FAQ.TopK))
	}

	if c.FAQ.LoadTimeout <= 0 {
		errs = append(errs, fmt.Errorf("faq.load_timeout must be > 0, got %s", c.FAQ.LoadTimeout))
	}

	if c.Observability.Metrics.Enabled && !strings.HasPrefix(c.Observability.Metrics.Path, "/") {
		errs = append(errs, fmt.Errorf("observability.metrics.path must start with \"/\", got %q", c.Observability.Metrics.Path))
	}

	switch strings.ToLower(c.Logging.Format) {
	case "text", "json", "":
		// valid
	default:
		errs = append(errs, fmt.Errorf("logging.format must be \"text\" or \"json\", got %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}
