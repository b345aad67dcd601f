// Package config provides unified configuration for the clinicdesk server.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (CLINICDESK_ prefix plus the legacy
//     OPENAI_API_KEY, USE_MOCK_EMBEDDINGS, USE_MOCK_LLM, EMBED_MODEL, LLM_MODEL)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import "time"

// Embedding provider names.
const (
	EmbeddingDeterministic = "deterministic"
	EmbeddingRemote        = "remote"
)

// Config holds all configuration for the clinicdesk server.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Embedding     EmbeddingConfig     `yaml:"embedding"`
	LLM           LLMConfig           `yaml:"llm"`
	FAQ           FAQConfig           `yaml:"faq"`
	Calendar      CalendarConfig      `yaml:"calendar"`
	Observability ObservabilityConfig `yaml:"observability"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`             // default: 8000
	ReadTimeout     time.Duration `yaml:"read_timeout"`     // default: 30s
	WriteTimeout    time.Duration `yaml:"write_timeout"`    // default: 60s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // default: 10s
	MaxBodySize     int64         `yaml:"max_body_size"`    // default: 1 MB
	CORSOrigins     []string      `yaml:"cors_origins"`     // default: ["*"]
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	Provider   string        `yaml:"provider"`     // "deterministic" or "remote", default: "deterministic"
	URL        string        `yaml:"url"`          // OpenAI-compatible base URL
	APIKey     string        `yaml:"api_key"`      // optional
	APIKeyFile string        `yaml:"api_key_file"` // _file variant for api_key
	Model      string        `yaml:"model"`        // default: "text-embedding-3-small"
	Dimensions int           `yaml:"dimensions"`   // default: 1536
	Timeout    time.Duration `yaml:"timeout"`      // default: 15s
}

// LLMConfig configures the reply phrasing backend.
type LLMConfig struct {
	Mock       bool          `yaml:"mock"`         // default: true
	BackendURL string        `yaml:"backend_url"`  // required when mock is false
	APIKey     string        `yaml:"api_key"`      // optional
	APIKeyFile string        `yaml:"api_key_file"` // _file variant for api_key
	Model      string        `yaml:"model"`        // default: "gpt-4-mini"
	MaxTokens  int           `yaml:"max_tokens"`   // default: 500
	Timeout    time.Duration `yaml:"timeout"`      // default: 30s
}

// FAQConfig configures the clinic FAQ index.
type FAQConfig struct {
	DataPath    string        `yaml:"data_path"`    // empty: built-in clinic info
	TopK        int           `yaml:"top_k"`        // default: 3
	LoadTimeout time.Duration `yaml:"load_timeout"` // default: 60s
}

// CalendarConfig configures the mock calendar and the booking client.
type CalendarConfig struct {
	// BaseURL points the scheduling agent at a remote calendar service.
	// Empty means the in-process mock calendar is used directly.
	BaseURL string `yaml:"base_url"`
	// Seed fixes slot availability for reproducible runs. 0 seeds from the clock.
	Seed int64 `yaml:"seed"`
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// LoggingConfig controls slog output.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // default: "INFO"
	Format string `yaml:"format"` // "text" or "json", default: "text"
	Debug  string `yaml:"debug"`  // comma-separated debug categories
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            8000,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodySize:     1 << 20,
			CORSOrigins:     []string{"*"},
		},
		Embedding: EmbeddingConfig{
			Provider:   EmbeddingDeterministic,
			URL:        "https://api.openai.com",
			Model:      "text-embedding-3-small",
			Dimensions: 1536,
			Timeout:    15 * time.Second,
		},
		LLM: LLMConfig{
			Mock:       true,
			BackendURL: "https://api.openai.com",
			Model:      "gpt-4-mini",
			MaxTokens:  500,
			Timeout:    30 * time.Second,
		},
		FAQ: FAQConfig{
			TopK:        3,
			LoadTimeout: 60 * time.Second,
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
		},
	}
}
