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

package ingestion

import "errors"

var (
	// ErrDescriptionStoreRequired is returned when a description store is not provided.
	ErrDescriptionStoreRequired = errors.New("description store required")

	// ErrImageStoreRequired is returned when an image store is not provided.
	ErrImageStoreRequired = errors.New("image store required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrPipelineRequired is returned when a watcher is created without a pipeline.
	ErrPipelineRequired = errors.New("pipeline required")
)

// Messages reported in outcomes. They are shown to end users as-is.
const (
	msgProcessed       = "File uploaded and processed"
	msgAlreadyIndexed  = "File already indexed"
	msgInvalidFileType = "Invalid file type"
	msgTooLarge        = "File too large"
	msgEmptyFile       = "Empty file"
	msgInvalidFilename = "Invalid filename"
	msgReadFailed      = "Failed to read file"
	msgSaveImageFailed = "Failed to save image"
	msgProcessFailed   = "Failed to process image"
	msgSaveFailed      = "Failed to save description"
	msgRetryable       = "temporary failure, the file may be uploaded again"
)
