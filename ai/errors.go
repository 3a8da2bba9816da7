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

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
)

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrEmptyImage is returned when Describe is called without image bytes.
	ErrEmptyImage = errors.New("image is empty")
)

// ErrorKind separates failures worth retrying from those that are not.
type ErrorKind int

const (
	// Permanent failures repeat on retry: unreadable image, rejected request,
	// unusable model output.
	Permanent ErrorKind = iota
	// Transient failures may succeed later: timeouts, rate limits, network
	// errors, an unavailable service.
	Transient
)

func (k ErrorKind) String() string {
	if k == Transient {
		return "transient"
	}
	return "permanent"
}

// AnalysisError is the only error type returned across the analyzer boundary.
type AnalysisError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AnalysisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s analysis error: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s analysis error: %s", e.Kind, e.Message)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// NewTransientError creates a retryable analysis error.
func NewTransientError(message string, err error) *AnalysisError {
	return &AnalysisError{Kind: Transient, Message: message, Err: err}
}

// NewPermanentError creates a non-retryable analysis error.
func NewPermanentError(message string, err error) *AnalysisError {
	return &AnalysisError{Kind: Permanent, Message: message, Err: err}
}

// IsTransient reports whether err is an AnalysisError worth retrying.
func IsTransient(err error) bool {
	var ae *AnalysisError
	return errors.As(err, &ae) && ae.Kind == Transient
}

// IsPermanent reports whether err is an AnalysisError that retrying won't fix.
func IsPermanent(err error) bool {
	var ae *AnalysisError
	return errors.As(err, &ae) && ae.Kind == Permanent
}

// Classify converts any error into an *AnalysisError. Errors that already are
// one pass through; timeouts and network failures become transient; anything
// else is permanent. Provider packages run their own mapping first and fall
// back to Classify for what they don't recognize.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return NewTransientError("analysis timed out", err)
	case errors.Is(err, context.Canceled):
		return NewTransientError("analysis canceled", err)
	case errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET):
		return NewTransientError("vision service unreachable", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return NewTransientError("vision service unreachable", err)
	}
	return NewPermanentError("analysis failed", err)
}
