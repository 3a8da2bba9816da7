package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "http://localhost:11434/v1", cfg.Host)
	assert.Equal(t, "llava", cfg.VisionModel)
	assert.Equal(t, MatcherLocal, cfg.MatcherKind)
	assert.Equal(t, 60*time.Second, cfg.Timeout)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.NoError(t, cfg.Validate())
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("with multiple options", func(t *testing.T) {
		cfg := NewConfig(
			WithHost("https://api.openai.com/v1"),
			WithAPIKey("sk-test"),
			WithVisionModel("gpt-4o"),
			WithMatchModel("gpt-4o-mini"),
			WithMatcher(MatcherLLM),
			WithTimeout(5*time.Second),
			WithRetry(5, 200*time.Millisecond),
			WithMatchCacheSize(0),
		)

		assert.Equal(t, "https://api.openai.com/v1", cfg.Host)
		assert.Equal(t, "sk-test", cfg.APIKey)
		assert.Equal(t, "gpt-4o", cfg.VisionModel)
		assert.Equal(t, "gpt-4o-mini", cfg.MatchModel)
		assert.Equal(t, MatcherLLM, cfg.MatcherKind)
		assert.Equal(t, 5*time.Second, cfg.Timeout)
		assert.Equal(t, 5, cfg.MaxAttempts)
		assert.Equal(t, 200*time.Millisecond, cfg.RetryDelay)
		assert.Equal(t, 0, cfg.MatchCacheSize)
	})
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		expected string
	}{
		{"already has /v1", "http://localhost:11434/v1", "http://localhost:11434/v1"},
		{"missing /v1", "http://localhost:11434", "http://localhost:11434/v1"},
		{"has trailing slash", "http://localhost:11434/", "http://localhost:11434/v1"},
		{"empty host", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Host: tt.host}
			cfg.Normalize()
			assert.Equal(t, tt.expected, cfg.Host)
			assert.Equal(t, "none", cfg.APIKey)
			assert.Equal(t, MatcherLocal, cfg.MatcherKind)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing host", func(c *Config) { c.Host = "" }, "Host is required"},
		{"missing vision model", func(c *Config) { c.VisionModel = "" }, "VisionModel is required"},
		{"llm matcher without model", func(c *Config) { c.MatcherKind = MatcherLLM; c.MatchModel = "" }, "MatchModel is required"},
		{"unknown matcher", func(c *Config) { c.MatcherKind = "psychic" }, "MatcherKind"},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, "Timeout"},
		{"zero attempts", func(c *Config) { c.MaxAttempts = 0 }, "MaxAttempts"},
		{"negative delay", func(c *Config) { c.RetryDelay = -time.Second }, "negative"},
		{"negative cache", func(c *Config) { c.MatchCacheSize = -1 }, "MatchCacheSize"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("normalizes host", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://gpu-box:8000"))
		require.NoError(t, cfg.Validate())
		assert.Equal(t, "http://gpu-box:8000/v1", cfg.Host)
	})
}
