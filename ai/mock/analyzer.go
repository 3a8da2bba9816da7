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
	"sync/atomic"

	"github.com/poiesic/glimpse/ai"
)

// MockAnalyzer is a test double for ai.Analyzer.
type MockAnalyzer struct {
	// DescribeFunc allows customizing the Describe behavior.
	DescribeFunc func(ctx context.Context, image []byte, mimeType string) (ai.Description, error)

	callCount atomic.Int64
}

var _ ai.Analyzer = (*MockAnalyzer)(nil)

// NewMockAnalyzer creates a mock analyzer with default behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockAnalyzer() *MockAnalyzer {
	return &MockAnalyzer{}
}

// Describe returns a deterministic description.
// Default behavior: the image bytes are read back as the text content.
func (m *MockAnalyzer) Describe(ctx context.Context, image []byte, mimeType string) (ai.Description, error) {
	m.callCount.Add(1)

	if m.DescribeFunc != nil {
		return m.DescribeFunc(ctx, image, mimeType)
	}
	if len(image) == 0 {
		return ai.Description{}, ai.NewPermanentError("empty image", ai.ErrEmptyImage)
	}
	return ai.Description{
		VisualSummary: "screenshot (" + mimeType + ")",
		TextContent:   string(image),
	}, nil
}

// Model names the mock model.
func (m *MockAnalyzer) Model() string {
	return "mock-vision"
}

// CallCount returns the number of times Describe was called.
func (m *MockAnalyzer) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count and custom functions.
func (m *MockAnalyzer) Reset() {
	m.callCount.Store(0)
	m.DescribeFunc = nil
}
