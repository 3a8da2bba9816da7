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
	"errors"

	"github.com/poiesic/glimpse/core"
)

var (
	// ErrDescriptionStoreRequired is returned when a description store is not provided.
	ErrDescriptionStoreRequired = errors.New("description store required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrInvalidQuery is returned for a query that is empty after trimming.
	// It matches core.ErrValidation and core.ErrEmptyQuery with errors.Is.
	ErrInvalidQuery error = &core.ValidationError{Field: "query", Reason: core.ErrEmptyQuery}
)
