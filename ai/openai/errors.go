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

package openai

import (
	"context"
	"errors"

	"github.com/poiesic/glimpse/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

var (
	// ErrEmptyResponse is returned when the model produces no choices.
	ErrEmptyResponse = errors.New("model returned no choices")

	// ErrUnparseableResponse is returned when the model output is not the
	// expected JSON after every parse attempt.
	ErrUnparseableResponse = errors.New("model response is not valid JSON")

	// ErrUnsupportedImage is returned for bytes that are not an image.
	ErrUnsupportedImage = errors.New("unsupported image type")
)

// classifyError converts a client error into an *ai.AnalysisError.
// Provider error codes decide the kind when langchaingo recognizes the
// failure; anything else falls back to ai.Classify.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	var ae *ai.AnalysisError
	if errors.As(err, &ae) {
		return ae
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ai.Classify(err)
	}

	var llmErr *llms.Error
	if !errors.As(openai.MapError(err), &llmErr) {
		return ai.Classify(err)
	}
	switch llmErr.Code {
	case llms.ErrCodeRateLimit:
		return ai.NewTransientError("rate limited", err)
	case llms.ErrCodeTimeout, llms.ErrCodeCanceled:
		return ai.NewTransientError("request timed out", err)
	case llms.ErrCodeProviderUnavailable:
		return ai.NewTransientError("vision service unavailable", err)
	case llms.ErrCodeUnknown:
		return ai.Classify(err)
	default:
		return ai.NewPermanentError(string(llmErr.Code), err)
	}
}
