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
	"log/slog"

	"github.com/poiesic/glimpse/ai"
	"github.com/poiesic/glimpse/ai/local"
)

// Provider implements ai.AIProvider using OpenAI-compatible services.
// It manages the vision analyzer and the relevance matcher.
type Provider struct {
	config   *ai.Config
	analyzer *Analyzer
	matcher  ai.Matcher
	logger   *slog.Logger
}

// NewProvider creates a new AI provider with OpenAI-compatible services.
// The config is validated and normalized before use. The matcher is the
// local lexical scorer unless MatcherKind is "llm", and is wrapped in an
// ai.CachedMatcher when MatchCacheSize is positive.
//
// Returns ai.AIProvider interface (not *Provider) to enforce abstraction
// and prevent coupling to OpenAI-specific implementation details.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	analyzer, err := newAnalyzer(config)
	if err != nil {
		return nil, err
	}

	var matcher ai.Matcher
	switch config.MatcherKind {
	case ai.MatcherLLM:
		m, err := newMatcher(config)
		if err != nil {
			return nil, err
		}
		matcher = m
	default:
		matcher = local.NewMatcher()
	}
	if config.MatchCacheSize > 0 {
		matcher = ai.NewCachedMatcher(matcher, config.MatchCacheSize)
	}

	logger := slog.Default().With("component", "openai-provider")
	logger.Debug("provider ready",
		"host", config.Host,
		"vision_model", config.VisionModel,
		"matcher", config.MatcherKind)

	return &Provider{
		config:   config,
		analyzer: analyzer,
		matcher:  matcher,
		logger:   logger,
	}, nil
}

// Analyzer returns the vision analyzer.
func (p *Provider) Analyzer() ai.Analyzer {
	return p.analyzer
}

func (p *Provider) Matcher() ai.Matcher {
	return p.matcher
}

func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
