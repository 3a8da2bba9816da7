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

// Package openai provides vision services using OpenAI-compatible APIs.
//
// This package implements the ai.AIProvider interface using the langchaingo
// OpenAI client, so it works with any OpenAI-compatible endpoint (OpenAI,
// Ollama, LocalAI, or vLLM).
//
// # Usage
//
//	config := ai.NewConfig(
//	    ai.WithHost("http://localhost:11434"),  // /v1 added automatically
//	    ai.WithVisionModel("llava"),
//	)
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	desc, err := provider.Analyzer().Describe(ctx, pngBytes, "image/png")
//	score, err := provider.Matcher().Match(ctx, "login error", ai.FieldTextContent, desc.TextContent)
//
// # Errors
//
// Client errors are mapped through langchaingo's provider error codes: rate
// limits, timeouts and unavailable services are transient, everything else
// (authentication, invalid request, content filter) is permanent. Model output
// that is not valid JSON is requested again up to three times before it
// becomes a permanent failure.
package openai
