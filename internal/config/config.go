// Package config provides environment-driven configuration for the
// knowledge core.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
)

// Secret wraps a sensitive string to prevent accidental logging or marshalling.
type Secret string

// String implements fmt.Stringer, returning a redacted placeholder.
func (s Secret) String() string { return "[REDACTED]" }

// GoString implements fmt.GoStringer, returning a redacted placeholder.
func (s Secret) GoString() string { return "[REDACTED]" }

// MarshalText implements encoding.TextMarshaler, returning a redacted placeholder.
func (s Secret) MarshalText() ([]byte, error) { return []byte("[REDACTED]"), nil }

// Value returns the underlying secret string.
func (s Secret) Value() string { return string(s) }

// Config holds all application configuration values.
type Config struct {
	DatabaseURL      Secret
	OllamaURL        string
	EmbeddingModel   string
	LogLevel         string
	QueryConcurrency int
}

// FromEnv reads configuration from environment variables without
// applying URL defaults or validating, so callers can layer other
// sources (flags, config file) on top before ApplyDefaults / Validate.
func FromEnv() (*Config, error) {
	cfg := &Config{
		DatabaseURL:    Secret(os.Getenv("DATABASE_URL")),
		OllamaURL:      os.Getenv("OLLAMA_URL"),
		EmbeddingModel: os.Getenv("EMBEDDING_MODEL"),
		LogLevel:       envOrDefault("LOG_LEVEL", "info"),
	}

	concurrency, err := strconv.Atoi(envOrDefault("QUERY_CONCURRENCY", "4"))
	if err != nil || concurrency < 1 || concurrency > 16 {
		return nil, fmt.Errorf("QUERY_CONCURRENCY must be an integer between 1 and 16")
	}
	cfg.QueryConcurrency = concurrency

	return cfg, nil
}

// ApplyDefaults fills any unset values with the stock local setup.
func (c *Config) ApplyDefaults() {
	if c.OllamaURL == "" {
		c.OllamaURL = "http://localhost:11434"
	}

	if c.EmbeddingModel == "" {
		c.EmbeddingModel = "qwen3-embedding:0.6b"
	}
}

// Load reads configuration from environment variables with sensible
// defaults and validates the result.
func Load() (*Config, error) {
	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Validate checks the database and embedding service endpoints.
func (c *Config) Validate() error {
	if err := c.validateDatabase(); err != nil {
		return err
	}

	return c.validateOllama()
}

func (c *Config) validateDatabase() error {
	if c.DatabaseURL.Value() == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	dbURL, err := url.Parse(c.DatabaseURL.Value())
	if err != nil {
		return fmt.Errorf("DATABASE_URL is not a valid URL: %w", err)
	}

	if dbURL.Scheme != "postgres" && dbURL.Scheme != "postgresql" {
		return fmt.Errorf("DATABASE_URL scheme must be postgres:// or postgresql://")
	}

	if dbURL.Hostname() == "" {
		return fmt.Errorf("DATABASE_URL must include a host")
	}

	dbHost := dbURL.Hostname()
	if dbHost != "localhost" && dbHost != "127.0.0.1" && dbHost != "::1" {
		sslmode := dbURL.Query().Get("sslmode")
		if sslmode == "disable" {
			return fmt.Errorf("DATABASE_URL sslmode=disable is not allowed for non-local host %q", dbHost)
		}
	}

	return nil
}

func (c *Config) validateOllama() error {
	ollamaURL, err := url.ParseRequestURI(c.OllamaURL)
	if err != nil {
		return fmt.Errorf("OLLAMA_URL is not a valid URL: %w", err)
	}

	ollamaHost := ollamaURL.Hostname()
	if ollamaHost != "localhost" && ollamaHost != "127.0.0.1" && ollamaHost != "::1" {
		return fmt.Errorf("OLLAMA_URL must point to localhost (127.0.0.1, ::1, or localhost)")
	}

	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
