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

// Package ai provides abstractions for the vision services used by glimpse.
//
// Two capabilities are modeled:
//
//   - Analyzer: turns a screenshot into a Description (visual summary plus the
//     text rendered in the image)
//   - Matcher: scores how well a stored description answers a query, 0 to 100
//
// AIProvider bundles both for convenient initialization.
//
// # Errors
//
// Every failure that crosses the analyzer boundary is an *AnalysisError.
// Its Kind is Transient (timeouts, rate limits, network errors, an
// unavailable service) or Permanent (unreadable image, rejected request,
// unusable model output). RetryWithBackoff retries transient failures with
// exponential backoff and bounds each attempt with a timeout; permanent
// failures return immediately.
//
// # Implementation Packages
//
//   - ai/openai: vision and LLM matching through any OpenAI-compatible API
//   - ai/local: deterministic lexical matcher, no network calls
//   - ai/mock: test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// Public constructors return interface types:
//
//	provider, err := openai.NewProvider(config)  // returns ai.AIProvider
//
// Mock constructors return concrete types so tests can inject behavior and
// inspect call counts:
//
//	analyzer := mock.NewMockAnalyzer()  // returns *mock.MockAnalyzer
//	analyzer.DescribeFunc = ...
//	count := analyzer.CallCount()
//
// # Determinism
//
// Matchers must return identical scores for identical inputs. Wrapping an LLM
// backed matcher in a CachedMatcher makes repeated searches over an unchanged
// index stable even when the model itself is not.
package ai
