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

// Package mock provides test doubles for the ai interfaces.
//
// # Usage
//
//	provider := mock.NewMockProvider().(*mock.MockProvider)
//	analyzer := provider.GetMockAnalyzer()
//	analyzer.DescribeFunc = func(ctx context.Context, image []byte, mime string) (ai.Description, error) {
//	    return ai.Description{}, ai.NewTransientError("rate limited", nil)
//	}
//
//	// Check call counts
//	count := analyzer.CallCount()
//
// # Default Behavior
//
//   - MockAnalyzer: echoes the image bytes back as the text content
//   - MockMatcher: scores the share of query words found in the text
//   - MockProvider: aggregates mock analyzer and matcher
//
// Call counters are atomic, so the mocks are safe under concurrent ingestion.
package mock
