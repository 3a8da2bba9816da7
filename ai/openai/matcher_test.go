package openai

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/poiesic/glimpse/ai"
	"github.com/poiesic/glimpse/ai/local"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMatcher(client *fakeModel) *Matcher {
	return &Matcher{
		client: client,
		policy: ai.RetryPolicy{MaxAttempts: 2, BaseDelay: time.Millisecond},
		logger: slog.Default(),
	}
}

func TestMatcher_Match(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		response string
		want     int
	}{
		{"integer", `{"confidence": 82}`, 82},
		{"float rounds", `{"confidence": 64.6}`, 65},
		{"clamped high", `{"confidence": 250}`, 100},
		{"clamped low", `{"confidence": -5}`, 0},
		{"fenced", "```json\n{\"confidence\": 40}\n```", 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeModel{responses: []string{tt.response}}
			score, err := testMatcher(client).Match(ctx, "login error", ai.FieldTextContent, "Invalid password")
			require.NoError(t, err)
			assert.Equal(t, tt.want, score)
		})
	}

	t.Run("empty text skips the model", func(t *testing.T) {
		client := &fakeModel{responses: []string{`{"confidence": 99}`}}
		score, err := testMatcher(client).Match(ctx, "login", ai.FieldVisualSummary, "  ")
		require.NoError(t, err)
		assert.Equal(t, 0, score)
		assert.Equal(t, 0, client.callCount())
	})

	t.Run("garbage is permanent", func(t *testing.T) {
		client := &fakeModel{responses: []string{"very relevant!"}}
		_, err := testMatcher(client).Match(ctx, "login", ai.FieldTextContent, "login")
		require.Error(t, err)
		assert.True(t, ai.IsPermanent(err))
	})
}

func TestNewProvider(t *testing.T) {
	t.Run("local matcher with cache", func(t *testing.T) {
		provider, err := NewProvider(ai.NewConfig())
		require.NoError(t, err)
		defer provider.Close()

		assert.Equal(t, "llava", provider.Analyzer().Model())
		_, cached := provider.Matcher().(*ai.CachedMatcher)
		assert.True(t, cached)
	})

	t.Run("local matcher without cache", func(t *testing.T) {
		provider, err := NewProvider(ai.NewConfig(ai.WithMatchCacheSize(0)))
		require.NoError(t, err)
		_, isLocal := provider.Matcher().(*local.Matcher)
		assert.True(t, isLocal)
	})

	t.Run("llm matcher", func(t *testing.T) {
		provider, err := NewProvider(ai.NewConfig(ai.WithMatcher(ai.MatcherLLM), ai.WithMatchCacheSize(0)))
		require.NoError(t, err)
		_, isLLM := provider.Matcher().(*Matcher)
		assert.True(t, isLLM)
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := NewProvider(ai.NewConfig(ai.WithVisionModel("")))
		require.Error(t, err)
	})
}
