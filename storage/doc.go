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

// Package storage provides the storage abstraction layer for glimpse.
//
// Two kinds of data are stored. Screenshot bytes live in an ImageStore keyed
// by the sanitized filename. Descriptions produced by the vision analyzer live
// in a DescriptionStore keyed by the same identifier.
//
// # Backends
//
// Description stores:
//   - storage/document: a single JSON document replaced atomically on every write
//   - storage/badger: one BadgerDB key per record, for larger libraries
//
// Image stores:
//   - storage/blob.FS: a local directory
//   - storage/blob.MinIO: an S3 compatible bucket
//
// # Constructor Return Type Pattern
//
// Public constructors return the storage interface rather than the concrete
// type:
//
//	store, err := document.Open("/var/lib/glimpse/descriptions.json")  // storage.DescriptionStore
//
// Internal constructors may return concrete types for use inside the
// implementation package and its tests.
//
// # Consistency
//
// Every DescriptionStore serializes writers behind one lock and performs
// read-modify-write through Update; an UpdateFunc returning ErrRemoveRecord
// deletes the record in the same critical section. Readers take a snapshot
// and never wait for a writer. A failed write returns a StoreError and leaves the previously
// committed data untouched.
//
// # Context Support
//
// All store methods accept context.Context for cancellation.
// Pass context.Background() for operations without specific timeout requirements.
package storage
