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

// Matcher kinds selectable through Config.MatcherKind.
const (
	// MatcherLocal scores relevance with a deterministic lexical scorer.
	MatcherLocal = "local"
	// MatcherLLM asks the configured chat model for a confidence score.
	MatcherLLM = "llm"
)

// Config holds configuration for AI service providers.
type Config struct {
	// Host is the base URL of an OpenAI-compatible API.
	// Example: "http://localhost:11434/v1" for a local Ollama server
	Host string

	// APIKey authenticates against Host. Local servers accept any value.
	APIKey string

	// VisionModel is the multimodal model used to describe screenshots.
	// Example: "llava", "qwen2.5vl:7b", "gpt-4o"
	VisionModel string

	// MatchModel is the chat model used when MatcherKind is "llm".
	// Example: "qwen2.5:3b", "gpt-4o-mini"
	MatchModel string

	// MatcherKind selects the relevance scorer, "local" or "llm".
	// Default: "local"
	MatcherKind string

	// Timeout bounds every individual request to the service.
	// Default: 60s
	Timeout time.Duration

	// MaxAttempts is the number of tries for transient failures, including the first.
	// Default: 3
	MaxAttempts int

	// RetryDelay is the base delay for exponential backoff.
	// Default: 1s
	RetryDelay time.Duration

	// MaxRetryDelay caps the backoff delay.
	// Default: 10s
	MaxRetryDelay time.Duration

	// MatchCacheSize is the number of match scores kept in memory.
	// Zero disables the cache.
	// Default: 4096
	MatchCacheSize int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithHost sets the service host URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithVisionModel sets the multimodal model identifier.
func WithVisionModel(model string) ConfigOption {
	return func(c *Config) {
		c.VisionModel = model
	}
}

// WithMatchModel sets the chat model used by the LLM matcher.
func WithMatchModel(model string) ConfigOption {
	return func(c *Config) {
		c.MatchModel = model
	}
}

// WithMatcher selects the relevance scorer.
func WithMatcher(kind string) ConfigOption {
	return func(c *Config) {
		c.MatcherKind = kind
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = d
	}
}

// WithRetry sets the attempt budget and base backoff delay for transient failures.
func WithRetry(maxAttempts int, delay time.Duration) ConfigOption {
	return func(c *Config) {
		c.MaxAttempts = maxAttempts
		c.RetryDelay = delay
	}
}

// WithMatchCacheSize sets how many match scores are cached.
func WithMatchCacheSize(size int) ConfigOption {
	return func(c *Config) {
		c.MatchCacheSize = size
	}
}

// DefaultConfig returns a Config with sensible defaults for a local
// OpenAI-compatible server.
func DefaultConfig() *Config {
	return &Config{
		Host:           "http://localhost:11434/v1",
		APIKey:         "none",
		VisionModel:    "llava",
		MatchModel:     "qwen2.5:3b",
		MatcherKind:    MatcherLocal,
		Timeout:        60 * time.Second,
		MaxAttempts:    3,
		RetryDelay:     time.Second,
		MaxRetryDelay:  10 * time.Second,
		MatchCacheSize: 4096,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithHost("https://api.openai.com/v1"),
//	    WithAPIKey(os.Getenv("OPENAI_API_KEY")),
//	    WithVisionModel("gpt-4o"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It adds the /v1 suffix to the host if missing, which is required
// by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	if c.Host != "" && !strings.HasSuffix(c.Host, "/v1") {
		c.Host = strings.TrimSuffix(c.Host, "/") + "/v1"
	}
	if c.APIKey == "" {
		c.APIKey = "none"
	}
	if c.MatcherKind == "" {
		c.MatcherKind = MatcherLocal
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.Host == "" {
		return errors.New("ai config: Host is required")
	}
	if c.VisionModel == "" {
		return errors.New("ai config: VisionModel is required")
	}
	switch c.MatcherKind {
	case MatcherLocal:
	case MatcherLLM:
		if c.MatchModel == "" {
			return errors.New("ai config: MatchModel is required for the llm matcher")
		}
	default:
		return errors.New("ai config: MatcherKind must be local or llm")
	}
	if c.Timeout <= 0 {
		return errors.New("ai config: Timeout must be positive")
	}
	if c.MaxAttempts < 1 {
		return errors.New("ai config: MaxAttempts must be at least 1")
	}
	if c.RetryDelay < 0 || c.MaxRetryDelay < 0 {
		return errors.New("ai config: retry delays cannot be negative")
	}
	if c.MatchCacheSize < 0 {
		return errors.New("ai config: MatchCacheSize cannot be negative")
	}
	return nil
}
