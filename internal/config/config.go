// Package config provides configuration loading and structs for the Kagami server.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Supabase  SupabaseConfig  `yaml:"supabase"`
	Drive     DriveConfig     `yaml:"drive"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Sync      SyncConfig      `yaml:"sync"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// TriggerToken protects the mutating endpoints. When empty they are
	// open, which is only acceptable behind a private network.
	TriggerToken string `yaml:"trigger_token"`
}

// SupabaseConfig holds the metadata store connection.
type SupabaseConfig struct {
	URL        string `yaml:"url"`
	ServiceKey string `yaml:"service_key"`
}

// DriveConfig holds the provider credentials and sync root.
type DriveConfig struct {
	// ServiceAccount is the service account key, either raw JSON or
	// base64-encoded JSON (convenient for env-var deployment).
	ServiceAccount string `yaml:"service_account"`
	RootNodeID     string `yaml:"root_node_id"`
}

// EmbeddingConfig holds embedding provider settings. An empty APIKey disables
// embeddings entirely; chunks are then persisted without vectors.
type EmbeddingConfig struct {
	APIKey        string `yaml:"api_key"`
	Model         string `yaml:"model"`
	MaxConcurrent int    `yaml:"max_concurrent"`
	CacheSize     int    `yaml:"cache_size"`
}

// SyncConfig holds chunking settings for the reconciliation pipeline.
type SyncConfig struct {
	MaxTokens     int `yaml:"max_tokens"`
	OverlapTokens int `yaml:"overlap_tokens"`
}

// Load reads and parses the config file at path, applies environment
// overrides, and fills in defaults. Returns an error if the file cannot be
// read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnv(&cfg)
	ApplyDefaults(&cfg)
	return &cfg, nil
}

// FromEnv builds a config from environment variables alone, for deployments
// that ship no config file.
func FromEnv() *Config {
	var cfg Config
	applyEnv(&cfg)
	ApplyDefaults(&cfg)
	return &cfg
}

// applyEnv overrides file values with environment variables. Secrets are
// expected to arrive this way in production.
func applyEnv(cfg *Config) {
	setString(&cfg.Supabase.URL, "SUPABASE_URL")
	setString(&cfg.Supabase.ServiceKey, "SUPABASE_SERVICE_ROLE_KEY")
	setString(&cfg.Embedding.APIKey, "OPENAI_API_KEY")
	setString(&cfg.Embedding.Model, "OPENAI_EMBEDDING_MODEL")
	setString(&cfg.Drive.ServiceAccount, "GOOGLE_SERVICE_ACCOUNT")
	setString(&cfg.Drive.RootNodeID, "KAGAMI_ROOT_NODE_ID")
	setString(&cfg.Server.TriggerToken, "KAGAMI_TRIGGER_TOKEN")
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("KAGAMI_DEBUG"); v == "1" || strings.EqualFold(v, "true") {
		cfg.Debug = true
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks that the settings required to reach the provider and the
// store are present.
func (c *Config) Validate() error {
	if c.Supabase.URL == "" {
		return fmt.Errorf("supabase url is required")
	}
	if c.Supabase.ServiceKey == "" {
		return fmt.Errorf("supabase service key is required")
	}
	if c.Drive.ServiceAccount == "" {
		return fmt.Errorf("drive service account is required")
	}
	if c.Drive.RootNodeID == "" {
		return fmt.Errorf("drive root node id is required")
	}
	return nil
}

// HasEmbeddings reports whether an embedding provider is configured.
func (c *Config) HasEmbeddings() bool {
	return c.Embedding.APIKey != ""
}

// ServiceAccountJSON returns the service account key as raw JSON, decoding
// base64 when the value is not already JSON.
func (c *Config) ServiceAccountJSON() ([]byte, error) {
	v := strings.TrimSpace(c.Drive.ServiceAccount)
	if v == "" {
		return nil, fmt.Errorf("drive service account is empty")
	}
	if strings.HasPrefix(v, "{") {
		return []byte(v), nil
	}
	decoded, err := base64.StdEncoding.DecodeString(v)
	if err != nil {
		return nil, fmt.Errorf("failed to decode service account: %w", err)
	}
	return decoded, nil
}
