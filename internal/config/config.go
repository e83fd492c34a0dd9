// Package config provides configuration loading and structs for the news RAG server.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Sources   []Source        `yaml:"sources"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Qdrant    QdrantConfig    `yaml:"qdrant"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Redis     RedisConfig     `yaml:"redis"`
	Chat      ChatConfig      `yaml:"chat"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Source describes one feed endpoint to ingest from.
type Source struct {
	Name     string `yaml:"name"`
	Endpoint string `yaml:"endpoint"`
	Format   string `yaml:"format"`
}

// IngestConfig holds chunking and batching settings for the ingestion pipeline.
type IngestConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	BatchSize    int `yaml:"batch_size"`
	Concurrency  int `yaml:"concurrency"`
	MaxPerSource int `yaml:"max_per_source"`
}

// QdrantConfig holds connection details for the vector database.
// The API key is read from the QDRANT_API_KEY environment variable.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"-"`
	Collection  string `yaml:"collection"`
	Dimension   int    `yaml:"dimension"`
	Distance    string `yaml:"distance"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// Timeout returns the request timeout as a duration.
func (q *QdrantConfig) Timeout() time.Duration {
	return time.Duration(q.TimeoutSecs) * time.Second
}

// EmbeddingConfig holds settings for the remote embedding provider.
// The API key is read from the JINA_API_KEY environment variable.
type EmbeddingConfig struct {
	BaseURL           string  `yaml:"base_url"`
	APIKey            string  `yaml:"-"`
	Model             string  `yaml:"model"`
	Dimensions        int     `yaml:"dimensions"`
	TimeoutSecs       int     `yaml:"timeout_secs"`
	MaxRetries        int     `yaml:"max_retries"`
	RetryDelaySecs    int     `yaml:"retry_delay_secs"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// Timeout returns the request timeout as a duration.
func (e *EmbeddingConfig) Timeout() time.Duration {
	return time.Duration(e.TimeoutSecs) * time.Second
}

// RetryDelay returns the base retry delay as a duration.
func (e *EmbeddingConfig) RetryDelay() time.Duration {
	return time.Duration(e.RetryDelaySecs) * time.Second
}

// RedisConfig holds session store settings.
// The connection URL is read from the REDIS_URL environment variable.
type RedisConfig struct {
	URL             string `yaml:"-"`
	SessionTTLHours int    `yaml:"session_ttl_hours"`
}

// SessionTTL returns the session expiry as a duration.
func (r *RedisConfig) SessionTTL() time.Duration {
	return time.Duration(r.SessionTTLHours) * time.Hour
}

// ChatConfig holds answer-generation settings.
// The API key is read from the GEMINI_API_KEY environment variable.
type ChatConfig struct {
	Model  string `yaml:"model"`
	APIKey string `yaml:"-"`
	TopK   int    `yaml:"top_k"`
}

// Load reads and parses the config file at path, applies defaults, and
// overlays secrets and connection URLs from the environment. A missing
// file is not an error; defaults plus environment are used instead.
func Load(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	applyEnv(&cfg)

	return &cfg, nil
}

// applyEnv overlays environment variables onto cfg. Secrets only live in
// the environment; endpoints may be overridden there for deployment.
func applyEnv(cfg *Config) {
	cfg.Qdrant.URL = getEnv("QDRANT_URL", cfg.Qdrant.URL)
	cfg.Qdrant.APIKey = os.Getenv("QDRANT_API_KEY")
	cfg.Embedding.APIKey = os.Getenv("JINA_API_KEY")
	cfg.Redis.URL = getEnv("REDIS_URL", "redis://localhost:6379")
	cfg.Chat.APIKey = os.Getenv("GEMINI_API_KEY")
	if port := getEnvInt("PORT", 0); port != 0 {
		cfg.Server.Port = port
	}
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}
