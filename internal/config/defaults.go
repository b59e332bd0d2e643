package config

import (
	"github.com/sashabaranov/go-openai"

	"github.com/hyperjump/kagami/internal/chunker"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = string(openai.LargeEmbedding3)
	}
	if cfg.Embedding.MaxConcurrent == 0 {
		cfg.Embedding.MaxConcurrent = 1
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 2048
	}
	if cfg.Sync.MaxTokens == 0 {
		cfg.Sync.MaxTokens = chunker.DefaultMaxTokens
	}
	if cfg.Sync.OverlapTokens == 0 {
		cfg.Sync.OverlapTokens = chunker.DefaultOverlapTokens
	}
}
