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

package core

import (
	"errors"
	"fmt"
)

// Domain validation errors
var (
	// ErrValidation is the parent of every input validation failure.
	// Validation failures are reported to the caller and never retried.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidFileType indicates a file extension or content type outside the allow-list.
	ErrInvalidFileType = errors.New("invalid file type")

	// ErrFileTooLarge indicates the file exceeds the configured size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrEmptyFile indicates a zero length upload.
	ErrEmptyFile = errors.New("empty file")

	// ErrInvalidFilename indicates a filename that sanitizes to nothing.
	ErrInvalidFilename = errors.New("invalid filename")

	// ErrEmptyQuery indicates a query that is empty after trimming.
	ErrEmptyQuery = errors.New("query cannot be empty")
)

// ValidationError describes which input was rejected and why.
type ValidationError struct {
	Field  string
	Reason error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Reason)
}

// Unwrap exposes both the specific reason and ErrValidation to errors.Is.
func (e *ValidationError) Unwrap() []error {
	return []error{ErrValidation, e.Reason}
}

// IsValidationError reports whether err is an input validation failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}
