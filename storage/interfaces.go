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
	"context"

	"github.com/poiesic/glimpse/core"
)

// UpdateFunc computes the replacement for a record inside an atomic
// read-modify-write. existing is nil when no record is stored under the
// identifier. Returning a nil record leaves the store unchanged; returning
// ErrRemoveRecord deletes the record.
type UpdateFunc func(existing *core.Record) (*core.Record, error)

// DescriptionStore is the durable mapping from identifier to Record.
//
// Implementations serialize all writers behind a single lock. Readers never
// take that lock and always observe a fully committed snapshot.
type DescriptionStore interface {
	// Get retrieves the record stored under identifier.
	// Returns ErrNotFound if the record doesn't exist.
	Get(ctx context.Context, identifier string) (*core.Record, error)

	// Put inserts or replaces a record. The write is durable before Put returns.
	Put(ctx context.Context, record *core.Record) error

	// Update atomically applies fn to the current record for identifier and
	// stores the result. fn runs while the writer lock is held, so it must not
	// block on external services.
	Update(ctx context.Context, identifier string, fn UpdateFunc) error

	// Delete removes the record stored under identifier. Deleting an absent
	// record is not an error.
	Delete(ctx context.Context, identifier string) error

	// All returns a snapshot of every record, ordered by identifier.
	// Returned records are copies and may be modified by the caller.
	All(ctx context.Context) ([]*core.Record, error)

	// Count returns the number of stored records regardless of status.
	Count(ctx context.Context) (int, error)

	// Close releases resources. The store must not be used afterwards.
	Close() error
}

// ImageStore holds the raw bytes of uploaded screenshots.
// From the point of view of ingestion it is append-only.
type ImageStore interface {
	// Put stores data under name, replacing any previous bytes, and returns
	// the location recorded as the record's source path.
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)

	// Get returns the bytes stored under name.
	// Returns ErrNotFound if nothing is stored under name.
	Get(ctx context.Context, name string) ([]byte, error)

	// Exists reports whether bytes are stored under name.
	Exists(ctx context.Context, name string) (bool, error)
}
