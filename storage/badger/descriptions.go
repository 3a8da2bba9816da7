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

package badger

import (
	"context"
	"errors"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/glimpse/core"
	"github.com/poiesic/glimpse/storage"
)

// DescriptionRepository stores one BadgerDB key per record.
//
// Writes run in a single read-write transaction under a writer mutex, so a
// read-modify-write never interleaves with another writer. Reads use
// read-only transactions and see a consistent MVCC snapshot.
type DescriptionRepository struct {
	backend *Backend
	mu      sync.Mutex
	owned   bool
}

var _ storage.DescriptionStore = (*DescriptionRepository)(nil)

// NewDescriptionRepository creates a repository on an open backend.
// Closing the repository leaves the backend open.
func NewDescriptionRepository(backend *Backend) (*DescriptionRepository, error) {
	if backend == nil {
		return nil, errors.New("badger backend is required")
	}
	return &DescriptionRepository{backend: backend}, nil
}

// Open opens a BadgerDB database in dirPath and returns a description store
// that owns it.
//
// Returns storage.DescriptionStore interface to enforce abstraction.
func Open(dirPath string) (storage.DescriptionStore, error) {
	backend, err := OpenBackend(dirPath, false)
	if err != nil {
		return nil, storage.NewStoreError("open badger", err)
	}
	repo, err := NewDescriptionRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	repo.owned = true
	return repo, nil
}

// Close closes the backend when the repository owns it.
func (r *DescriptionRepository) Close() error {
	if r.owned && !r.backend.IsClosed() {
		return r.backend.Close()
	}
	return nil
}

// Get retrieves a record by identifier.
func (r *DescriptionRepository) Get(ctx context.Context, identifier string) (*core.Record, error) {
	if err := r.check(ctx); err != nil {
		return nil, err
	}
	var record *core.Record
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		record, err = readRecord(tx, identifier)
		return err
	}, false)
	if err != nil {
		return nil, storage.NewStoreError("get record", err)
	}
	if record == nil {
		return nil, storage.ErrNotFound
	}
	return record, nil
}

// Put inserts or replaces a record.
func (r *DescriptionRepository) Put(ctx context.Context, record *core.Record) error {
	if err := storage.ValidateRecord(record); err != nil {
		return err
	}
	return r.Update(ctx, record.Identifier, func(_ *core.Record) (*core.Record, error) {
		return record, nil
	})
}

// Update performs an atomic read-modify-write of one record.
func (r *DescriptionRepository) Update(ctx context.Context, identifier string, fn storage.UpdateFunc) error {
	if identifier == "" {
		return storage.ErrInvalidRecord
	}
	if err := r.check(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var fnErr error
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		existing, err := readRecord(tx, identifier)
		if err != nil {
			return err
		}
		next, err := fn(existing)
		if errors.Is(err, storage.ErrRemoveRecord) {
			if existing == nil {
				return nil
			}
			if err := tx.Delete(makeDescriptionKey(identifier)); err != nil {
				return err
			}
			return tx.Commit()
		}
		if err != nil {
			fnErr = err
			return err
		}
		if next == nil {
			return nil
		}
		next = next.Clone()
		next.Identifier = identifier

		value, err := storage.MarshalRecord(next)
		if err != nil {
			return err
		}
		if err := tx.Set(makeDescriptionKey(identifier), value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	if fnErr != nil {
		return fnErr
	}
	return storage.NewStoreError("write record", err)
}

// Delete removes the record stored under identifier.
func (r *DescriptionRepository) Delete(ctx context.Context, identifier string) error {
	return r.Update(ctx, identifier, func(_ *core.Record) (*core.Record, error) {
		return nil, storage.ErrRemoveRecord
	})
}

// All returns every record ordered by identifier.
func (r *DescriptionRepository) All(ctx context.Context) ([]*core.Record, error) {
	if err := r.check(ctx); err != nil {
		return nil, err
	}
	records := make([]*core.Record, 0)
	err := r.backend.Scan(descriptionScanPrefix(), func(key, value []byte) error {
		record, err := storage.UnmarshalRecord(value)
		if err != nil {
			return err
		}
		record.Identifier = identifierFromKey(key)
		records = append(records, record)
		return nil
	})
	if err != nil {
		return nil, storage.NewStoreError("scan records", err)
	}
	return records, nil
}

// Count returns the number of stored records.
func (r *DescriptionRepository) Count(ctx context.Context) (int, error) {
	if err := r.check(ctx); err != nil {
		return 0, err
	}
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = descriptionScanPrefix()
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()
		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	if err != nil {
		return 0, storage.NewStoreError("count records", err)
	}
	return count, nil
}

func (r *DescriptionRepository) check(ctx context.Context) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return ctx.Err()
}

// readRecord returns nil, nil when the record doesn't exist.
func readRecord(tx *badger.Txn, identifier string) (*core.Record, error) {
	item, err := tx.Get(makeDescriptionKey(identifier))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var record *core.Record
	err = item.Value(func(val []byte) error {
		var err error
		record, err = storage.UnmarshalRecord(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	record.Identifier = identifier
	return record, nil
}
