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

package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates that the requested record was not found.
	ErrNotFound = errors.New("record not found")

	// ErrStoreFailed indicates the store could not read or persist its data.
	// The previously committed state is left intact.
	ErrStoreFailed = errors.New("store operation failed")

	// ErrStorageClosed indicates that the storage backend is closed.
	ErrStorageClosed = errors.New("storage is closed")

	// ErrSerializationFailed indicates a serialization/deserialization failure.
	ErrSerializationFailed = errors.New("serialization failed")

	// ErrInvalidRecord indicates a record without an identifier was written.
	ErrInvalidRecord = errors.New("record identifier is required")

	// ErrRemoveRecord is returned by an UpdateFunc to delete the record it was
	// given. Update treats it as success, not as a failure.
	ErrRemoveRecord = errors.New("remove record")
)

// StoreError wraps a failed storage operation.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStoreFailed, e.Op, e.Err)
}

func (e *StoreError) Unwrap() []error {
	return []error{ErrStoreFailed, e.Err}
}

// NewStoreError wraps err as a StoreError for op. Nil stays nil and errors
// that already carry ErrStoreFailed are returned unchanged.
func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStoreFailed) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}
