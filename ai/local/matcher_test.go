package local

import (
	"context"
	"testing"

	"github.com/poiesic/glimpse/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerms(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"lowercases and strips punctuation", "Invalid password!", []string{"invalid", "password"}},
		{"drops stop words", "the login page with an error", []string{"login", "page", "error"}},
		{"splits on separators", "sign-up/log-out", []string{"sign", "up", "log", "out"}},
		{"keeps digits", "Error 401", []string{"error", "401"}},
		{"only stop words", "the a an", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Terms(tt.text))
		})
	}
}

func TestContainsAllTerms(t *testing.T) {
	assert.True(t, ContainsAllTerms("login error", "Login failed", "An error banner"))
	assert.True(t, ContainsAllTerms("the login", "login"))
	assert.False(t, ContainsAllTerms("login error", "Login failed"))
	assert.False(t, ContainsAllTerms("the", "the"), "stop-word-only query never matches")
	assert.False(t, ContainsAllTerms("login"))
}

func TestMatcher_Match(t *testing.T) {
	ctx := context.Background()
	m := NewMatcher()

	tests := []struct {
		name  string
		query string
		text  string
		check func(t *testing.T, score int)
	}{
		{
			name:  "exact phrase",
			query: "Invalid password",
			text:  "Sign in. Invalid password. Try again.",
			check: func(t *testing.T, score int) { assert.Equal(t, 100, score) },
		},
		{
			name:  "all terms scattered",
			query: "login error",
			text:  "Login failed: Invalid password. Error 401",
			check: func(t *testing.T, score int) { assert.Equal(t, 95, score) },
		},
		{
			name:  "half the terms",
			query: "login chart",
			text:  "Login form",
			check: func(t *testing.T, score int) { assert.Equal(t, 50, score) },
		},
		{
			name:  "prefix match",
			query: "charts",
			text:  "A bar chart of revenue",
			check: func(t *testing.T, score int) { assert.Equal(t, 80, score) },
		},
		{
			name:  "one typo",
			query: "pasword",
			text:  "Enter your password",
			check: func(t *testing.T, score int) { assert.Equal(t, 60, score) },
		},
		{
			name:  "unrelated",
			query: "dashboard with charts",
			text:  "A login form with an error banner",
			check: func(t *testing.T, score int) { assert.Equal(t, 0, score) },
		},
		{
			name:  "empty text",
			query: "login",
			text:  "",
			check: func(t *testing.T, score int) { assert.Equal(t, 0, score) },
		},
		{
			name:  "stop-word query",
			query: "the",
			text:  "the login page",
			check: func(t *testing.T, score int) { assert.Equal(t, 0, score) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, err := m.Match(ctx, tt.query, ai.FieldTextContent, tt.text)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, score, 0)
			assert.LessOrEqual(t, score, 100)
			tt.check(t, score)
		})
	}
}

func TestMatcher_Deterministic(t *testing.T) {
	ctx := context.Background()
	m := NewMatcher()

	first, err := m.Match(ctx, "settings toggle", ai.FieldVisualSummary, "A settings page with dark mode toggles")
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := m.Match(ctx, "settings toggle", ai.FieldVisualSummary, "A settings page with dark mode toggles")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestMatcher_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMatcher().Match(ctx, "login", ai.FieldTextContent, "login")
	require.Error(t, err)
	assert.True(t, ai.IsTransient(err))
}

func TestOneEditApart(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"password", "pasword", true},
		{"password", "passwerd", true},
		{"password", "passwords", true},
		{"password", "passwo", false},
		{"login", "logon", true},
		{"cat", "car", false},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, oneEditApart(tt.a, tt.b))
		})
	}
}
