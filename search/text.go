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
	"math"
	"strings"

	"github.com/poiesic/glimpse/ai/local"
	"github.com/poiesic/glimpse/core"
)

const (
	textWeight   = 0.6
	visualWeight = 0.4

	// visualOnlyPercent discounts a match found only in the visual summary,
	// so rendered text outranks an equally strong visual description.
	visualOnlyPercent = 85

	// verbatimBonus is added when every query word appears in the record.
	verbatimBonus = 10
)

// combine blends the per-field scores into one confidence. A text score
// counts in full and a visual score alone is discounted. When both fields
// agree the weighted blend lifts the record above either discounted term.
func combine(textScore, visualScore int) int {
	weighted := int(math.Round(textWeight*float64(textScore) + visualWeight*float64(visualScore)))
	visualOnly := (visualScore*visualOnlyPercent + 50) / 100
	return max(textScore, visualOnly, weighted)
}

// applyBonus raises confidence when the query words appear verbatim across
// the record's fields.
func applyBonus(confidence int, query string, rec *core.Record) int {
	if local.ContainsAllTerms(query, rec.TextContent, rec.VisualSummary) {
		confidence += verbatimBonus
	}
	return min(confidence, 100)
}

// describe renders a record's description for display.
func describe(rec *core.Record) string {
	visual := strings.TrimSpace(rec.VisualSummary)
	text := strings.TrimSpace(rec.TextContent)
	switch {
	case visual == "":
		return text
	case text == "":
		return visual
	default:
		return visual + "\n\nText: " + text
	}
}
