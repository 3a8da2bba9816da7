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

package mock

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/poiesic/glimpse/ai"
)

// MockMatcher is a test double for ai.Matcher.
type MockMatcher struct {
	// MatchFunc allows customizing the Match behavior.
	MatchFunc func(ctx context.Context, query, field, text string) (int, error)

	callCount atomic.Int64
}

var _ ai.Matcher = (*MockMatcher)(nil)

// NewMockMatcher creates a mock matcher with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockMatcher().
func NewMockMatcher() *MockMatcher {
	return &MockMatcher{}
}

// Match scores text by the share of query words it contains.
// Default behavior: 100 * matched words / query words, case-insensitive.
func (m *MockMatcher) Match(ctx context.Context, query, field, text string) (int, error) {
	m.callCount.Add(1)

	if m.MatchFunc != nil {
		return m.MatchFunc(ctx, query, field, text)
	}

	words := strings.Fields(strings.ToLower(query))
	if len(words) == 0 {
		return 0, nil
	}
	haystack := strings.ToLower(text)
	hits := 0
	for _, w := range words {
		if strings.Contains(haystack, w) {
			hits++
		}
	}
	return hits * 100 / len(words), nil
}

// CallCount returns the number of times Match was called.
func (m *MockMatcher) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count and custom functions.
func (m *MockMatcher) Reset() {
	m.callCount.Store(0)
	m.MatchFunc = nil
}
