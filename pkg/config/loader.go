package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, CLINICDESK_CONFIG env, ./config.yaml, /etc/clinicdesk/config.yaml)
//  3. Environment variable overrides
//  4. File reference resolution (_file suffix)
//  5. Validation
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. CLINICDESK_CONFIG environment variable
// 3. ./config.yaml in the current directory
// 4. /etc/clinicdesk/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}

	if envPath := os.Getenv("CLINICDESK_CONFIG"); envPath != "" {
		return envPath
	}

	candidates := []string{
		"config.yaml",
		"/etc/clinicdesk/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides maps environment variables to config fields.
// The unprefixed names match the variables the clinic's earlier
// deployment scripts already export.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CLINICDESK_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	// Embedding.
	if v, ok := envBool("USE_MOCK_EMBEDDINGS"); ok {
		if v {
			cfg.Embedding.Provider = EmbeddingDeterministic
		} else {
			cfg.Embedding.Provider = EmbeddingRemote
		}
	}
	if v := os.Getenv("CLINICDESK_EMBEDDING_PROVIDER"); v != "" {
		cfg.Embedding.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("CLINICDESK_EMBEDDING_URL"); v != "" {
		cfg.Embedding.URL = v
	}
	if v := os.Getenv("EMBED_MODEL"); v != "" {
		cfg.Embedding.Model = v
	}
	if v := os.Getenv("CLINICDESK_EMBEDDING_DIMENSIONS"); v != "" {
		if dims, err := strconv.Atoi(v); err == nil {
			cfg.Embedding.Dimensions = dims
		}
	}
	if v := os.Getenv("CLINICDESK_EMBEDDING_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Embedding.Timeout = d
		}
	}

	// LLM.
	if v, ok := envBool("USE_MOCK_LLM"); ok {
		cfg.LLM.Mock = v
	}
	if v := os.Getenv("CLINICDESK_LLM_URL"); v != "" {
		cfg.LLM.BackendURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}

	// A single OpenAI key serves both backends unless they are set explicitly.
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		if cfg.Embedding.APIKey == "" {
			cfg.Embedding.APIKey = v
		}
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = v
		}
	}

	// FAQ.
	if v := os.Getenv("CLINICDESK_FAQ_DATA"); v != "" {
		cfg.FAQ.DataPath = v
	}
	if v := os.Getenv("CLINICDESK_FAQ_TOP_K"); v != "" {
		if k, err := strconv.Atoi(v); err == nil {
			cfg.FAQ.TopK = k
		}
	}

	// Calendar.
	if v := os.Getenv("CLINICDESK_CALENDAR_URL"); v != "" {
		cfg.Calendar.BaseURL = v
	}
	if v := os.Getenv("CLINICDESK_CALENDAR_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Calendar.Seed = seed
		}
	}

	// Logging. CLINICDESK_LOG_LEVEL and CLINICDESK_DEBUG are read by pkg/debug.
	if v := os.Getenv("CLINICDESK_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

// envBool reads a "true"/"false" style variable. ok is false when unset or
// unparseable.
func envBool(key string) (value bool, ok bool) {
	v := os.Getenv(key)
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false, false
	}
	return b, true
}

// resolveFileReferences reads _file fields and populates the corresponding value fields.
// If the value field is empty and the file field is set, the file is read,
// whitespace is trimmed, and the value field is populated.
func resolveFileReferences(cfg *Config) error {
	if cfg.Embedding.APIKeyFile != "" && cfg.Embedding.APIKey == "" {
		val, err := readSecretFile(cfg.Embedding.APIKeyFile)
		if err != nil {
			return fmt.Errorf("embedding.api_key_file: %w", err)
		}
		cfg.Embedding.APIKey = val
	}

	if cfg.LLM.APIKeyFile != "" && cfg.LLM.APIKey == "" {
		val, err := readSecretFile(cfg.LLM.APIKeyFile)
		if err != nil {
			return fmt.Errorf("llm.api_key_file: %w", err)
		}
		cfg.LLM.APIKey = val
	}

	return nil
}

// readSecretFile reads a file and returns its content with surrounding whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
