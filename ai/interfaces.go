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

import "context"

// Record fields a Matcher can be asked to score.
const (
	FieldTextContent   = "text_content"
	FieldVisualSummary = "visual_summary"
)

// Description is the structured result of analyzing one screenshot.
type Description struct {
	// VisualSummary describes layout, imagery and UI elements.
	VisualSummary string `json:"visual_summary"`

	// TextContent is the text rendered in the image, as read by the model.
	// Empty for purely visual images.
	TextContent string `json:"text_content"`
}

// Analyzer turns image bytes into a structured description.
// Implementations must be thread-safe for concurrent use.
type Analyzer interface {
	// Describe analyzes an image. Every failure is returned as an
	// *AnalysisError whose Kind tells the caller whether retrying can help.
	Describe(ctx context.Context, image []byte, mimeType string) (Description, error)

	// Model names the model producing descriptions, for bookkeeping.
	Model() string
}

// Matcher scores how well stored text answers a free-text query.
// Implementations must be thread-safe for concurrent use.
type Matcher interface {
	// Match returns a confidence between 0 and 100. Identical inputs must
	// produce identical scores. field is FieldTextContent or FieldVisualSummary
	// and lets implementations weigh the two kinds of text differently.
	Match(ctx context.Context, query, field, text string) (int, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
type AIProvider interface {
	// Analyzer returns the image description service.
	Analyzer() Analyzer

	// Matcher returns the relevance scoring service used by search.
	Matcher() Matcher

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
