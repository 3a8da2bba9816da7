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

package search

import (
	"cmp"
	"context"
	"log/slog"
	"net/url"
	"slices"
	"time"

	"github.com/poiesic/glimpse/ai"
	"github.com/poiesic/glimpse/core"
	"github.com/poiesic/glimpse/storage"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultTopK is the number of results returned when the caller asks for
	// zero or fewer.
	DefaultTopK = 5

	// DefaultMinConfidence is the floor below which results are dropped.
	DefaultMinConfidence = 30

	// DefaultConcurrency bounds the records scored at once.
	DefaultConcurrency = 8

	// DefaultURLPrefix is prepended to identifiers to form image URLs.
	DefaultURLPrefix = "/screenshots/"
)

// Searcher ranks indexed screenshots against natural-language queries.
// It reads a snapshot of the description store per query and never writes.
type Searcher struct {
	descriptions  storage.DescriptionStore
	matcher       ai.Matcher
	minConfidence int
	concurrency   int
	urlPrefix     string
	logger        *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets the logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "search")
		return nil
	}
}

// WithMinConfidence sets the confidence floor, clamped to [0, 100].
// Default is DefaultMinConfidence.
func WithMinConfidence(floor int) Option {
	return func(s *Searcher) error {
		s.minConfidence = max(0, min(100, floor))
		return nil
	}
}

// WithConcurrency sets how many records are scored at once.
// Default is DefaultConcurrency.
func WithConcurrency(n int) Option {
	return func(s *Searcher) error {
		s.concurrency = max(1, n)
		return nil
	}
}

// WithURLPrefix sets the prefix used to build result image URLs.
// Default is DefaultURLPrefix.
func WithURLPrefix(prefix string) Option {
	return func(s *Searcher) error {
		s.urlPrefix = prefix
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	descriptions storage.DescriptionStore,
	provider ai.AIProvider,
	opts ...Option,
) (*Searcher, error) {
	if descriptions == nil {
		return nil, ErrDescriptionStoreRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		descriptions:  descriptions,
		matcher:       provider.Matcher(),
		minConfidence: DefaultMinConfidence,
		concurrency:   DefaultConcurrency,
		urlPrefix:     DefaultURLPrefix,
		logger:        slog.Default().With("component", "search"),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search ranks indexed screenshots against query.
// Returns at most topK results (DefaultTopK when topK <= 0), ordered by
// confidence, then by newest record, then by identifier.
func (s *Searcher) Search(ctx context.Context, query string, topK int) ([]core.Result, error) {
	return s.SearchWithMonitor(ctx, query, topK, nil)
}

// SearchWithMonitor is Search with a monitor receiving callbacks at each
// stage of the search process.
//
// Search fails only for an invalid query, an unreadable store or a canceled
// context. A matcher error on one record is logged and that record is left
// out of the results.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query string, topK int, monitor SearchMonitor) ([]core.Result, error) {
	q, err := core.ValidateQuery(query)
	if err != nil {
		return nil, ErrInvalidQuery
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	start := time.Now()
	monitor.Start(q)

	records, err := s.descriptions.All(ctx)
	if err != nil {
		s.logger.Error("error reading description snapshot", "err", err)
		return nil, err
	}
	candidates := slices.DeleteFunc(records, func(r *core.Record) bool { return !r.Searchable() })
	monitor.AfterSnapshot(candidates)
	if len(candidates) == 0 {
		monitor.Finish([]core.Result{})
		return []core.Result{}, nil
	}

	scored := make([]*core.Result, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, rec := range candidates {
		g.Go(func() error {
			res, err := s.score(gctx, q, rec)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.logger.Warn("skipping record after matcher error", "identifier", rec.Identifier, "err", err)
				return nil
			}
			scored[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([]core.Result, 0, len(candidates))
	for i, res := range scored {
		if res == nil {
			continue
		}
		monitor.Scored(candidates[i], res.TextScore, res.VisualScore, res.Confidence)
		if res.Confidence >= s.minConfidence {
			results = append(results, *res)
		}
	}

	slices.SortFunc(results, func(a, b core.Result) int {
		if c := cmp.Compare(b.Confidence, a.Confidence); c != 0 {
			return c
		}
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Identifier, b.Identifier)
	})
	if len(results) > topK {
		results = results[:topK]
	}

	s.logger.Debug("search complete",
		"query", q,
		"candidates", len(candidates),
		"results", len(results),
		"elapsed", time.Since(start))
	monitor.Finish(results)
	return results, nil
}

// score matches the query against both fields of rec.
func (s *Searcher) score(ctx context.Context, query string, rec *core.Record) (*core.Result, error) {
	textScore, err := s.matcher.Match(ctx, query, ai.FieldTextContent, rec.TextContent)
	if err != nil {
		return nil, err
	}
	visualScore, err := s.matcher.Match(ctx, query, ai.FieldVisualSummary, rec.VisualSummary)
	if err != nil {
		return nil, err
	}
	textScore = max(0, min(100, textScore))
	visualScore = max(0, min(100, visualScore))

	confidence := applyBonus(combine(textScore, visualScore), query, rec)

	var matched []string
	if textScore >= s.minConfidence && textScore > 0 {
		matched = append(matched, ai.FieldTextContent)
	}
	if visualScore >= s.minConfidence && visualScore > 0 {
		matched = append(matched, ai.FieldVisualSummary)
	}

	return &core.Result{
		Identifier:    rec.Identifier,
		Filename:      rec.Identifier,
		ImageURL:      s.urlPrefix + url.PathEscape(rec.Identifier),
		Confidence:    confidence,
		TextScore:     textScore,
		VisualScore:   visualScore,
		Description:   describe(rec),
		MatchedFields: matched,
		CreatedAt:     rec.CreatedAt,
	}, nil
}
