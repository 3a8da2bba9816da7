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

package openai

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/poiesic/glimpse/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Matcher implements ai.Matcher by asking a chat model for a confidence
// score. Sampling is pinned (temperature 0, fixed seed); wrap it in an
// ai.CachedMatcher for scores that never drift between searches.
type Matcher struct {
	client llms.Model
	policy ai.RetryPolicy
	logger *slog.Logger
}

var _ ai.Matcher = (*Matcher)(nil)

type matchResponse struct {
	Confidence float64 `json:"confidence"`
}

// newMatcher is an internal constructor that returns the concrete type.
func newMatcher(config *ai.Config) (*Matcher, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken(config.APIKey),
		openai.WithModel(config.MatchModel),
		openai.WithHTTPClient(&http.Client{Timeout: config.Timeout}),
	)
	if err != nil {
		return nil, err
	}

	return &Matcher{
		client: client,
		policy: ai.PolicyFromConfig(config),
		logger: slog.Default().With("component", "openai-matcher"),
	}, nil
}

// NewMatcher creates an LLM backed matcher.
// Returns ai.Matcher interface to enforce abstraction.
func NewMatcher(config *ai.Config) (ai.Matcher, error) {
	return newMatcher(config)
}

// Match returns the model's confidence, 0 to 100, that text answers query.
// Empty text scores 0 without a request.
func (m *Matcher) Match(ctx context.Context, query, field, text string) (int, error) {
	if strings.TrimSpace(text) == "" || strings.TrimSpace(query) == "" {
		return 0, nil
	}

	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(buildMatchPrompt(query, field, text))},
		},
	}

	var score int
	err := ai.RetryWithBackoff(ctx, m.policy, func(ctx context.Context) error {
		s, err := m.matchOnce(ctx, content)
		if err != nil {
			return err
		}
		score = s
		return nil
	})
	if err != nil {
		return 0, err
	}
	return score, nil
}

func (m *Matcher) matchOnce(ctx context.Context, content []llms.MessageContent) (int, error) {
	var lastErr error
	for attempt := 0; attempt < parseAttempts; attempt++ {
		response, err := m.client.GenerateContent(ctx, content,
			llms.WithTemperature(0.0),
			llms.WithSeed(0),
			llms.WithJSONMode(),
			llms.WithMaxTokens(32),
		)
		if err != nil {
			return 0, classifyError(err)
		}
		if len(response.Choices) < 1 {
			return 0, ai.NewPermanentError("empty response", ErrEmptyResponse)
		}

		score, err := parseConfidence(response.Choices[0].Content)
		if err != nil {
			lastErr = err
			m.logger.Debug("error parsing match response", "attempt", attempt+1, "err", err)
			continue
		}
		return score, nil
	}
	return 0, ai.NewPermanentError("unusable model output", lastErr)
}

func parseConfidence(raw string) (int, error) {
	var resp matchResponse
	if err := json.Unmarshal([]byte(cleanResponse(raw)), &resp); err != nil {
		return 0, err
	}
	return clampScore(int(math.Round(resp.Confidence))), nil
}
