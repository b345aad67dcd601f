package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

// clearEnv blanks every variable the loader reads so the host environment
// cannot leak into assertions.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CLINICDESK_CONFIG", "CLINICDESK_PORT",
		"CLINICDESK_EMBEDDING_PROVIDER", "CLINICDESK_EMBEDDING_URL",
		"CLINICDESK_EMBEDDING_DIMENSIONS", "CLINICDESK_EMBEDDING_TIMEOUT",
		"CLINICDESK_LLM_URL", "CLINICDESK_FAQ_DATA", "CLINICDESK_FAQ_TOP_K",
		"CLINICDESK_CALENDAR_URL", "CLINICDESK_CALENDAR_SEED", "CLINICDESK_LOG_FORMAT",
		"USE_MOCK_EMBEDDINGS", "USE_MOCK_LLM", "EMBED_MODEL", "LLM_MODEL", "OPENAI_API_KEY",
	} {
		t.Setenv(key, "")
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.Port != 8000 {
		t.Errorf("default server.port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("default server.shutdown_timeout = %v, want 10s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Embedding.Provider != EmbeddingDeterministic {
		t.Errorf("default embedding.provider = %q, want %q", cfg.Embedding.Provider, EmbeddingDeterministic)
	}
	if cfg.Embedding.Dimensions != 1536 {
		t.Errorf("default embedding.dimensions = %d, want 1536", cfg.Embedding.Dimensions)
	}
	if cfg.Embedding.Model != "text-embedding-3-small" {
		t.Errorf("default embedding.model = %q, want text-embedding-3-small", cfg.Embedding.Model)
	}
	if !cfg.LLM.Mock {
		t.Error("default llm.mock = false, want true")
	}
	if cfg.LLM.MaxTokens != 500 {
		t.Errorf("default llm.max_tokens = %d, want 500", cfg.LLM.MaxTokens)
	}
	if cfg.FAQ.TopK != 3 {
		t.Errorf("default faq.top_k = %d, want 3", cfg.FAQ.TopK)
	}
	if cfg.FAQ.DataPath != "" {
		t.Errorf("default faq.data_path = %q, want empty (built-in)", cfg.FAQ.DataPath)
	}
	if !cfg.Observability.Metrics.Enabled || cfg.Observability.Metrics.Path != "/metrics" {
		t.Errorf("default metrics = %+v, want enabled at /metrics", cfg.Observability.Metrics)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestLoadFromYAML(t *testing.T) {
	clearEnv(t)

	yamlContent := `
server:
  port: 9090
  read_timeout: 60s
  cors_origins: ["https://clinic.example"]
embedding:
  provider: remote
  url: http://embeddings:8080
  api_key: sk-embed
  model: bge-small
  dimensions: 384
  timeout: 5s
llm:
  mock: false
  backend_url: http://llm:4000
  model: gpt-4o-mini
  max_tokens: 200
faq:
  data_path: /data/clinic_info.json
  top_k: 5
calendar:
  base_url: http://calendar:8000
  seed: 42
observability:
  metrics:
    enabled: false
logging:
  level: debug
  format: json
  debug: embedding,faq
`
	tmpFile := writeTemp(t, "config-*.yaml", yamlContent)

	cfg, err := Load(tmpFile)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server.port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 60*time.Second {
		t.Errorf("server.read_timeout = %v, want 60s", cfg.Server.ReadTimeout)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "https://clinic.example" {
		t.Errorf("server.cors_origins = %v", cfg.Server.CORSOrigins)
	}

	if cfg.Embedding.Provider != EmbeddingRemote {
		t.Errorf("embedding.provider = %q, want remote", cfg.Embedding.Provider)
	}
	if cfg.Embedding.URL != "http://embeddings:8080" {
		t.Errorf("embedding.url = %q", cfg.Embedding.URL)
	}
	if cfg.Embedding.APIKey != "sk-embed" {
		t.Errorf("embedding.api_key = %q", cfg.Embedding.APIKey)
	}
	if cfg.Embedding.Dimensions != 384 {
		t.Errorf("embedding.dimensions = %d, want 384", cfg.Embedding.Dimensions)
	}
	if cfg.Embedding.Timeout != 5*time.Second {
		t.Errorf("embedding.timeout = %v, want 5s", cfg.Embedding.Timeout)
	}

	if cfg.LLM.Mock {
		t.Error("llm.mock = true, want false")
	}
	if cfg.LLM.BackendURL != "http://llm:4000" || cfg.LLM.Model != "gpt-4o-mini" || cfg.LLM.MaxTokens != 200 {
		t.Errorf("llm = %+v", cfg.LLM)
	}

	if cfg.FAQ.DataPath != "/data/clinic_info.json" || cfg.FAQ.TopK != 5 {
		t.Errorf("faq = %+v", cfg.FAQ)
	}
	if cfg.Calendar.BaseURL != "http://calendar:8000" || cfg.Calendar.Seed != 42 {
		t.Errorf("calendar = %+v", cfg.Calendar)
	}
	if cfg.Observability.Metrics.Enabled {
		t.Error("observability.metrics.enabled = true, want false")
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" || cfg.Logging.Debug != "embedding,faq" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
}

func TestEnvOverride(t *testing.T) {
	clearEnv(t)

	yamlContent := `
server:
  port: 9090
embedding:
  provider: remote
  model: yaml-model
faq:
  top_k: 2
`
	tmpFile := writeTemp(t, "config-*.yaml", yamlContent)

	t.Setenv("CLINICDESK_PORT", "7070")
	t.Setenv("EMBED_MODEL", "env-model")
	t.Setenv("CLINICDESK_FAQ_TOP_K", "4")
	t.Setenv("LLM_MODEL", "env-llm")
	t.Setenv("CLINICDESK_CALENDAR_SEED", "7")

	cfg, err := Load(tmpFile)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("server.port = %d, want env override 7070", cfg.Server.Port)
	}
	if cfg.Embedding.Model != "env-model" {
		t.Errorf("embedding.model = %q, want env override", cfg.Embedding.Model)
	}
	if cfg.FAQ.TopK != 4 {
		t.Errorf("faq.top_k = %d, want env override 4", cfg.FAQ.TopK)
	}
	if cfg.LLM.Model != "env-llm" {
		t.Errorf("llm.model = %q, want env override", cfg.LLM.Model)
	}
	if cfg.Calendar.Seed != 7 {
		t.Errorf("calendar.seed = %d, want 7", cfg.Calendar.Seed)
	}
}

func TestMockFlags(t *testing.T) {
	tests := []struct {
		name         string
		embeddings   string
		llm          string
		provider     string
		wantProvider string
		wantMockLLM  bool
	}{
		{"defaults", "", "", "", EmbeddingDeterministic, true},
		{"real embeddings", "false", "", "", EmbeddingRemote, true},
		{"mock embeddings", "true", "", "", EmbeddingDeterministic, true},
		{"real llm", "", "false", "", EmbeddingDeterministic, false},
		{"explicit provider wins", "false", "", "deterministic", EmbeddingDeterministic, true},
		{"garbage ignored", "maybe", "nope", "", EmbeddingDeterministic, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("USE_MOCK_EMBEDDINGS", tt.embeddings)
			t.Setenv("USE_MOCK_LLM", tt.llm)
			t.Setenv("CLINICDESK_EMBEDDING_PROVIDER", tt.provider)

			cfg, err := Load("")
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if cfg.Embedding.Provider != tt.wantProvider {
				t.Errorf("embedding.provider = %q, want %q", cfg.Embedding.Provider, tt.wantProvider)
			}
			if cfg.LLM.Mock != tt.wantMockLLM {
				t.Errorf("llm.mock = %v, want %v", cfg.LLM.Mock, tt.wantMockLLM)
			}
		})
	}
}

func TestOpenAIKeySharedByBothBackends(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-shared")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Embedding.APIKey != "sk-shared" {
		t.Errorf("embedding.api_key = %q, want sk-shared", cfg.Embedding.APIKey)
	}
	if cfg.LLM.APIKey != "sk-shared" {
		t.Errorf("llm.api_key = %q, want sk-shared", cfg.LLM.APIKey)
	}
}

func TestOpenAIKeyDoesNotOverrideExplicitValue(t *testing.T) {
	clearEnv(t)
	tmpFile := writeTemp(t, "config-*.yaml", `
embedding:
  api_key: sk-explicit
`)
	t.Setenv("OPENAI_API_KEY", "sk-shared")

	cfg, err := Load(tmpFile)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Embedding.APIKey != "sk-explicit" {
		t.Errorf("embedding.api_key = %q, want sk-explicit", cfg.Embedding.APIKey)
	}
	if cfg.LLM.APIKey != "sk-shared" {
		t.Errorf("llm.api_key = %q, want sk-shared", cfg.LLM.APIKey)
	}
}

func TestFileReference(t *testing.T) {
	clearEnv(t)
	embedSecret := writeTemp(t, "embed-*.txt", "  sk-embed-from-file  \n")
	llmSecret := writeTemp(t, "llm-*.txt", "sk-llm-from-file\n")

	yamlContent := `
embedding:
  api_key_file: ` + embedSecret + `
llm:
  api_key_file: ` + llmSecret + `
`
	tmpFile := writeTemp(t, "config-*.yaml", yamlContent)

	cfg, err := Load(tmpFile)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Embedding.APIKey != "sk-embed-from-file" {
		t.Errorf("embedding.api_key = %q, want value from file, trimmed", cfg.Embedding.APIKey)
	}
	if cfg.LLM.APIKey != "sk-llm-from-file" {
		t.Errorf("llm.api_key = %q, want value from file, trimmed", cfg.LLM.APIKey)
	}
}

func TestFileReferenceMissingFile(t *testing.T) {
	clearEnv(t)
	tmpFile := writeTemp(t, "config-*.yaml", `
embedding:
  api_key_file: /nonexistent/clinicdesk/secret
`)

	_, err := Load(tmpFile)
	if err == nil {
		t.Fatal("Load() expected error for missing secret file")
	}
	if !strings.Contains(err.Error(), "embedding.api_key_file") {
		t.Errorf("error = %q, want it to name embedding.api_key_file", err.Error())
	}
}

func TestFileDiscovery(t *testing.T) {
	clearEnv(t)

	envFile := writeTemp(t, "envconfig-*.yaml", `
faq:
  top_k: 9
`)
	t.Setenv("CLINICDESK_CONFIG", envFile)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(CLINICDESK_CONFIG) error: %v", err)
	}
	if cfg.FAQ.TopK != 9 {
		t.Errorf("CLINICDESK_CONFIG: faq.top_k = %d, want 9", cfg.FAQ.TopK)
	}

	// Explicit path beats the env variable.
	explicit := writeTemp(t, "explicit-*.yaml", `
faq:
  top_k: 1
`)
	cfg, err = Load(explicit)
	if err != nil {
		t.Fatalf("Load(explicit) error: %v", err)
	}
	if cfg.FAQ.TopK != 1 {
		t.Errorf("explicit path: faq.top_k = %d, want 1", cfg.FAQ.TopK)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	clearEnv(t)
	tmpFile := writeTemp(t, "config-*.yaml", "server: [unterminated")

	if _, err := Load(tmpFile); err == nil {
		t.Fatal("Load() expected error for malformed YAML")
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:    "invalid port",
			modify:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "server.port must be > 0",
		},
		{
			name:    "invalid body size",
			modify:  func(c *Config) { c.Server.MaxBodySize = 0 },
			wantErr: "server.max_body_size",
		},
		{
			name:    "unknown embedding provider",
			modify:  func(c *Config) { c.Embedding.Provider = "cohere" },
			wantErr: "embedding.provider must be",
		},
		{
			name: "remote without url",
			modify: func(c *Config) {
				c.Embedding.Provider = EmbeddingRemote
				c.Embedding.URL = ""
			},
			wantErr: "embedding.url is required",
		},
		{
			name:    "zero dimensions",
			modify:  func(c *Config) { c.Embedding.Dimensions = 0 },
			wantErr: "embedding.dimensions must be > 0",
		},
		{
			name: "real llm without backend",
			modify: func(c *Config) {
				c.LLM.Mock = false
				c.LLM.BackendURL = ""
			},
			wantErr: "llm.backend_url is required",
		},
		{
			name:    "zero top_k",
			modify:  func(c *Config) { c.FAQ.TopK = 0 },
			wantErr: "faq.top_k must be > 0",
		},
		{
			name:    "zero load timeout",
			modify:  func(c *Config) { c.FAQ.LoadTimeout = 0 },
			wantErr: "faq.load_timeout must be > 0",
		},
		{
			name:    "metrics path without slash",
			modify:  func(c *Config) { c.Observability.Metrics.Path = "metrics" },
			wantErr: "observability.metrics.path",
		},
		{
			name:    "bad log format",
			modify:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "logging.format",
		},
		{
			name:    "valid config",
			modify:  func(c *Config) {},
			wantErr: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.modify(&cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}

			if err == nil {
				t.Fatalf("Validate() expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidationJoinsErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Server.Port = -1
	cfg.FAQ.TopK = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "server.port") || !strings.Contains(err.Error(), "faq.top_k") {
		t.Errorf("error should report both fields, got %q", err.Error())
	}
}

func TestYAMLDefaultsMerge(t *testing.T) {
	clearEnv(t)
	tmpFile := writeTemp(t, "config-*.yaml", `
faq:
  top_k: 2
`)

	cfg, err := Load(tmpFile)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 8000 {
		t.Errorf("server.port = %d, want default 8000", cfg.Server.Port)
	}
	if cfg.Embedding.Provider != EmbeddingDeterministic {
		t.Errorf("embedding.provider = %q, want default", cfg.Embedding.Provider)
	}
	if cfg.Embedding.Dimensions != 1536 {
		t.Errorf("embedding.dimensions = %d, want default 1536", cfg.Embedding.Dimensions)
	}
}

// writeTemp creates a temporary file with the given content and returns its path.
// The file is automatically cleaned up when the test finishes.
func writeTemp(t *testing.T, pattern, content string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), pattern)
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	defer f.Close()

	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("writing temp file: %v", err)
	}
	return f.Name()
}
