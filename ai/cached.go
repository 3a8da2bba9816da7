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
	"context"
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMatchCacheSize is the number of scores kept when no size is given.
const DefaultMatchCacheSize = 4096

// CachedMatcher wraps a Matcher with an LRU cache so that repeating a query
// over an unchanged index returns the same scores without calling the inner
// matcher again. Failed matches are not cached.
type CachedMatcher struct {
	inner Matcher
	cache *lru.Cache[string, int]
}

var _ Matcher = (*CachedMatcher)(nil)

// NewCachedMatcher creates a cached matcher wrapping inner.
func NewCachedMatcher(inner Matcher, size int) *CachedMatcher {
	if size <= 0 {
		size = DefaultMatchCacheSize
	}
	cache, _ := lru.New[string, int](size)
	return &CachedMatcher{inner: inner, cache: cache}
}

// cacheKey hashes the inputs so long descriptions don't bloat the cache keys.
func (c *CachedMatcher) cacheKey(query, field, text string) string {
	h := sha256.New()
	h.Write([]byte(field))
	h.Write([]byte{0})
	h.Write([]byte(query))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// Match returns a cached score if available, otherwise computes and caches it.
func (c *CachedMatcher) Match(ctx context.Context, query, field, text string) (int, error) {
	key := c.cacheKey(query, field, text)
	if score, ok := c.cache.Get(key); ok {
		return score, nil
	}
	score, err := c.inner.Match(ctx, query, field, text)
	if err != nil {
		return 0, err
	}
	c.cache.Add(key, score)
	return score, nil
}

// Len returns the number of cached scores.
func (c *CachedMatcher) Len() int {
	return c.cache.Len()
}
