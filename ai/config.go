// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"errors"
	"strings"
	"time"
)

// Config holds configuration for AI service providers.
type Config struct {
	// APIKey authenticates against hosted providers (Gemini). Local
	// OpenAI-compatible services may leave it empty.
	APIKey string

	// Host is the base URL for OpenAI-compatible services.
	// Example: "http://localhost:11434/v1" for a local Ollama server.
	// Unused by the Gemini provider.
	Host string

	// EmbeddingModel is the model identifier for text embeddings.
	// Example: "text-embedding-004", "embeddinggemma"
	EmbeddingModel string

	// GenerationModel is the model identifier for answer generation and
	// graph extraction. Example: "gemini-2.5-flash", "qwen2.5:3b"
	GenerationModel string

	// CallTimeout bounds every single network call to the provider.
	// Default: 60s.
	CallTimeout time.Duration

	// MaxRetries is the attempt count for provider network calls before
	// the failure propagates. Default: 3.
	MaxRetries int

	// RetryBaseDelay is the base delay for exponential backoff between
	// retries. Default: 1s.
	RetryBaseDelay time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithAPIKey sets the provider API key.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithHost sets the OpenAI-compatible service host URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithGenerationModel sets the generation model identifier.
func WithGenerationModel(model string) ConfigOption {
	return func(c *Config) {
		c.GenerationModel = model
	}
}

// WithCallTimeout sets the per-call timeout for provider requests.
func WithCallTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.CallTimeout = d
	}
}

// WithMaxRetries sets the retry attempt count for provider requests.
func WithMaxRetries(n int) ConfigOption {
	return func(c *Config) {
		c.MaxRetries = n
	}
}

// WithRetryBaseDelay sets the backoff base delay between retries.
func WithRetryBaseDelay(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.RetryBaseDelay = d
	}
}

// DefaultConfig returns a Config with sensible defaults matching the
// hosted Gemini models.
func DefaultConfig() *Config {
	return &Config{
		Host:            "http://localhost:11434/v1",
		EmbeddingModel:  "text-embedding-004",
		GenerationModel: "gemini-2.5-flash",
		CallTimeout:     60 * time.Second,
		MaxRetries:      3,
		RetryBaseDelay:  time.Second,
	}
}

// NewConfig creates a Config with the default values and applies the
// provided options.
//
// Example:
//
//	cfg := ai.NewConfig(
//	    ai.WithAPIKey(os.Getenv("GEMINI_API_KEY")),
//	    ai.WithGenerationModel("gemini-2.5-flash"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form. The /v1
// suffix is required by most OpenAI-compatible APIs (Ollama, LocalAI,
// vLLM); it is added to Host if missing.
func (c *Config) Normalize() {
	if c.Host != "" && !strings.HasSuffix(c.Host, "/v1") {
		c.Host = strings.TrimSuffix(c.Host, "/")
		c.Host = c.Host + "/v1"
	}
}

// Validate checks that the configuration is valid and complete. It
// normalizes the configuration first.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.GenerationModel == "" {
		return errors.New("ai config: GenerationModel is required")
	}
	if c.CallTimeout <= 0 {
		return errors.New("ai config: CallTimeout must be positive")
	}
	if c.MaxRetries < 1 {
		return errors.New("ai config: MaxRetries must be at least 1")
	}
	if c.RetryBaseDelay <= 0 {
		return errors.New("ai config: RetryBaseDelay must be positive")
	}
	return nil
}
