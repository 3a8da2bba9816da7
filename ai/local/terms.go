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
	"strings"
	"unicode"
)

// stopWords are dropped from both queries and documents before scoring.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true, "or": true, "i": true, "my": true, "me": true,
	"some": true, "where": true, "which": true, "show": true, "find": true,
	"screenshot": true, "screenshots": true,
}

// Terms splits text into lowercase words, dropping punctuation and stop words.
// Order is preserved and duplicates are kept.
func Terms(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	filtered := words[:0]
	for _, w := range words {
		if !stopWords[w] {
			filtered = append(filtered, w)
		}
	}
	return filtered
}

// ContainsAllTerms reports whether every non-stop word of query occurs
// verbatim in at least one of the documents. A query with no such words
// never matches.
func ContainsAllTerms(query string, documents ...string) bool {
	queryTerms := Terms(query)
	if len(queryTerms) == 0 {
		return false
	}

	docSet := make(map[string]bool)
	for _, doc := range documents {
		for _, w := range Terms(doc) {
			docSet[w] = true
		}
	}

	for _, q := range queryTerms {
		if !docSet[q] {
			return false
		}
	}
	return true
}

// normalizePhrase lowercases text and collapses every run of non-word
// characters into a single space.
func normalizePhrase(text string) string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(words, " ")
}
