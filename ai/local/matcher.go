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

package local

import (
	"context"
	"math"
	"strings"

	"github.com/poiesic/glimpse/ai"
)

const (
	exactWeight  = 1.0
	prefixWeight = 0.8
	fuzzyWeight  = 0.6

	// maxPartialScore is the best score a query can reach without appearing
	// as a contiguous phrase in the text.
	maxPartialScore = 95
	phraseScore     = 100

	minPrefixLen = 3
	minFuzzyLen  = 5
)

// Matcher scores relevance lexically. It makes no network calls and returns
// the same score for the same inputs.
type Matcher struct{}

var _ ai.Matcher = (*Matcher)(nil)

// NewMatcher creates a local lexical matcher.
func NewMatcher() ai.Matcher {
	return &Matcher{}
}

// Match scores how much of query appears in text, 0 to 100.
//
// The whole query appearing as a phrase scores 100. Otherwise each query
// term earns credit for its best counterpart in text: an exact word, a word
// sharing a prefix (chart, charts) or a word one edit away (pasword,
// password). The score is the mean credit, capped below a phrase match.
// The field is ignored; text and visual descriptions are scored alike.
func (m *Matcher) Match(ctx context.Context, query, field, text string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, ai.Classify(err)
	}

	queryTerms := unique(Terms(query))
	if len(queryTerms) == 0 || strings.TrimSpace(text) == "" {
		return 0, nil
	}

	phrase := normalizePhrase(query)
	if phrase != "" && strings.Contains(" "+normalizePhrase(text)+" ", " "+phrase+" ") {
		return phraseScore, nil
	}

	docTerms := unique(Terms(text))
	if len(docTerms) == 0 {
		return 0, nil
	}
	docSet := make(map[string]bool, len(docTerms))
	for _, w := range docTerms {
		docSet[w] = true
	}

	var credit float64
	for _, q := range queryTerms {
		credit += termCredit(q, docSet, docTerms)
	}

	score := int(math.Round(100 * credit / float64(len(queryTerms))))
	return min(score, maxPartialScore), nil
}

func termCredit(q string, docSet map[string]bool, docTerms []string) float64 {
	if docSet[q] {
		return exactWeight
	}
	best := 0.0
	for _, d := range docTerms {
		switch {
		case sharesPrefix(q, d):
			return prefixWeight
		case best < fuzzyWeight && oneEditApart(q, d):
			best = fuzzyWeight
		}
	}
	return best
}

// sharesPrefix reports whether the shorter word starts the longer one.
func sharesPrefix(a, b string) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	return len(a) >= minPrefixLen && strings.HasPrefix(b, a)
}

// oneEditApart reports whether a and b differ by a single insertion,
// deletion or substitution. Short words never match this way.
func oneEditApart(a, b string) bool {
	if len(a) < minFuzzyLen || len(b) < minFuzzyLen {
		return false
	}
	if len(a) > len(b) {
		a, b = b, a
	}
	if len(b)-len(a) > 1 {
		return false
	}

	i, j, edits := 0, 0, 0
	for i < len(a) && j < len(b) {
		if a[i] == b[j] {
			i++
			j++
			continue
		}
		edits++
		if edits > 1 {
			return false
		}
		if len(a) == len(b) {
			i++
		}
		j++
	}
	return edits+(len(b)-j)+(len(a)-i) <= 1
}

func unique(words []string) []string {
	seen := make(map[string]bool, len(words))
	out := words[:0]
	for _, w := range words {
		if !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}
	return out
}
