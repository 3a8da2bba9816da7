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
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/poiesic/glimpse/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// parseAttempts bounds how often one request is repeated because the model
// produced malformed JSON.
const parseAttempts = 3

// Analyzer implements ai.Analyzer with a multimodal chat model.
type Analyzer struct {
	client llms.Model
	model  string
	policy ai.RetryPolicy
	logger *slog.Logger
}

var _ ai.Analyzer = (*Analyzer)(nil)

// newAnalyzer is an internal constructor that returns the concrete type.
func newAnalyzer(config *ai.Config) (*Analyzer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken(config.APIKey),
		openai.WithModel(config.VisionModel),
		openai.WithHTTPClient(&http.Client{Timeout: config.Timeout}),
	)
	if err != nil {
		return nil, err
	}

	return &Analyzer{
		client: client,
		model:  config.VisionModel,
		policy: ai.PolicyFromConfig(config),
		logger: slog.Default().With("component", "openai-analyzer"),
	}, nil
}

// NewAnalyzer creates a vision analyzer using the provided configuration.
// Returns ai.Analyzer interface to enforce abstraction.
func NewAnalyzer(config *ai.Config) (ai.Analyzer, error) {
	return newAnalyzer(config)
}

// Model returns the vision model name.
func (a *Analyzer) Model() string {
	return a.model
}

// Describe sends the image to the vision model and parses its structured
// description. Transient failures are retried according to the configured
// policy; every returned error is an *ai.AnalysisError.
func (a *Analyzer) Describe(ctx context.Context, image []byte, mimeType string) (ai.Description, error) {
	if len(image) == 0 {
		return ai.Description{}, ai.NewPermanentError("empty image", ai.ErrEmptyImage)
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(image)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return ai.Description{}, ai.NewPermanentError(mimeType, ErrUnsupportedImage)
	}

	dataURL := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image)
	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(buildDescribePrompt())},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.ImageURLPart(dataURL),
				llms.TextPart("Describe this screenshot."),
			},
		},
	}

	var desc ai.Description
	err := ai.RetryWithBackoff(ctx, a.policy, func(ctx context.Context) error {
		d, err := a.describeOnce(ctx, content)
		if err != nil {
			return err
		}
		desc = d
		return nil
	})
	if err != nil {
		a.logger.Warn("describe failed", "mime", mimeType, "bytes", len(image), "err", err)
		return ai.Description{}, err
	}
	return desc, nil
}

func (a *Analyzer) describeOnce(ctx context.Context, content []llms.MessageContent) (ai.Description, error) {
	var lastErr error
	for attempt := 0; attempt < parseAttempts; attempt++ {
		response, err := a.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			return ai.Description{}, classifyError(err)
		}
		if len(response.Choices) < 1 {
			return ai.Description{}, ai.NewPermanentError("empty response", ErrEmptyResponse)
		}

		desc, err := parseDescription(response.Choices[0].Content)
		if err != nil {
			lastErr = err
			a.logger.Warn("error parsing vision response",
				"attempt", attempt+1,
				"response", response.Choices[0].Content,
				"err", err)
			continue
		}
		return desc, nil
	}

	a.logger.Error("failed to parse vision response after retries", "err", lastErr)
	return ai.Description{}, ai.NewPermanentError("unusable model output", ErrUnparseableResponse)
}

// parseDescription decodes a model response into a Description.
// A response with neither field populated is rejected.
func parseDescription(raw string) (ai.Description, error) {
	var desc ai.Description
	if err := json.Unmarshal([]byte(cleanResponse(raw)), &desc); err != nil {
		return ai.Description{}, err
	}
	desc.VisualSummary = strings.TrimSpace(desc.VisualSummary)
	desc.TextContent = strings.TrimSpace(desc.TextContent)
	if desc.VisualSummary == "" && desc.TextContent == "" {
		return ai.Description{}, ErrUnparseableResponse
	}
	return desc, nil
}
