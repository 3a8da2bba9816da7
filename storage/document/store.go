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

package document

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/renameio"
	"github.com/poiesic/glimpse/core"
	"github.com/poiesic/glimpse/storage"
)

const (
	documentVersion = 1
	lockRetryDelay  = 25 * time.Millisecond
)

// snapshot is an immutable view of the committed document.
// Neither the map nor the records it points to are mutated after publication.
type snapshot struct {
	records map[string]*core.Record
	info    os.FileInfo
}

// stale reports whether the file described by info differs from the one this
// snapshot was read from. Every atomic replace creates a new inode.
func (s *snapshot) stale(info os.FileInfo) bool {
	if s.info == nil {
		return true
	}
	return !os.SameFile(s.info, info) ||
		!info.ModTime().Equal(s.info.ModTime()) ||
		info.Size() != s.info.Size()
}

// Store keeps every record in one JSON document on disk.
//
// Writers hold an in-process mutex plus an advisory file lock so that several
// processes can share one document. Each write produces a complete new
// document that replaces the old one with an atomic rename. Readers load the
// last published snapshot through an atomic pointer and never block on a writer.
type Store struct {
	path     string
	fileLock *flock.Flock
	mu       sync.Mutex
	current  atomic.Pointer[snapshot]
	closed   atomic.Bool
	logger   *slog.Logger

	// writeFile is swapped in tests to simulate a failing disk.
	writeFile func(filename string, data []byte, perm os.FileMode) error
}

var _ storage.DescriptionStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "document-store")
		return nil
	}
}

// Open opens the description document at path, creating an empty one if it
// doesn't exist.
//
// Returns storage.DescriptionStore interface to enforce abstraction.
func Open(path string, opts ...Option) (storage.DescriptionStore, error) {
	return openStore(path, opts...)
}

func openStore(path string, opts ...Option) (*Store, error) {
	if path == "" {
		return nil, errors.New("document path is required")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, storage.NewStoreError("create directory", err)
	}

	s := &Store{
		path:      path,
		fileLock:  flock.New(path + ".lock"),
		logger:    slog.Default().With("component", "document-store"),
		writeFile: renameio.WriteFile,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lockFile(context.Background()); err != nil {
		return nil, err
	}
	defer s.unlockFile()

	snap, err := s.load()
	if errors.Is(err, os.ErrNotExist) {
		snap = &snapshot{records: map[string]*core.Record{}}
		if snap, err = s.persist(snap.records); err != nil {
			return nil, storage.NewStoreError("create document", err)
		}
		s.logger.Debug("created description document", "path", path)
	} else if err != nil {
		return nil, storage.NewStoreError("load document", err)
	}
	s.current.Store(snap)

	s.logger.Debug("opened description document", "path", path, "records", len(snap.records))
	return s, nil
}

// Get retrieves the record stored under identifier.
func (s *Store) Get(ctx context.Context, identifier string) (*core.Record, error) {
	snap, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	record, ok := snap.records[identifier]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return record.Clone(), nil
}

// Put inserts or replaces a record.
func (s *Store) Put(ctx context.Context, record *core.Record) error {
	if err := storage.ValidateRecord(record); err != nil {
		return err
	}
	return s.Update(ctx, record.Identifier, func(_ *core.Record) (*core.Record, error) {
		return record, nil
	})
}

// Update performs an atomic read-modify-write of one record.
func (s *Store) Update(ctx context.Context, identifier string, fn storage.UpdateFunc) error {
	if identifier == "" {
		return storage.ErrInvalidRecord
	}
	if s.closed.Load() {
		return storage.ErrStorageClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lockFile(ctx); err != nil {
		return err
	}
	defer s.unlockFile()

	// Another process may have replaced the document since we last read it.
	if err := s.refreshLocked(); err != nil {
		return storage.NewStoreError("reload document", err)
	}

	base := s.current.Load()
	current, exists := base.records[identifier]
	next, err := fn(current.Clone())
	remove := errors.Is(err, storage.ErrRemoveRecord)
	switch {
	case remove && !exists:
		return nil
	case remove:
	case err != nil:
		return err
	case next == nil:
		return nil
	}

	records := maps.Clone(base.records)
	if remove {
		delete(records, identifier)
	} else {
		next = next.Clone()
		next.Identifier = identifier
		records[identifier] = next
	}

	snap, err := s.persist(records)
	if err != nil {
		s.logger.Error("failed to write description document", "path", s.path, "identifier", identifier, "err", err)
		return storage.NewStoreError("write document", err)
	}
	s.current.Store(snap)
	return nil
}

// Delete removes the record stored under identifier.
func (s *Store) Delete(ctx context.Context, identifier string) error {
	return s.Update(ctx, identifier, func(_ *core.Record) (*core.Record, error) {
		return nil, storage.ErrRemoveRecord
	})
}

// All returns every record ordered by identifier.
func (s *Store) All(ctx context.Context) ([]*core.Record, error) {
	snap, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	keys := slices.Sorted(maps.Keys(snap.records))
	out := make([]*core.Record, 0, len(keys))
	for _, k := range keys {
		out = append(out, snap.records[k].Clone())
	}
	return out, nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	snap, err := s.read(ctx)
	if err != nil {
		return 0, err
	}
	return len(snap.records), nil
}

// Close releases the file lock handle.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fileLock.Close()
}

// read returns the newest committed snapshot. If no writer is active it also
// picks up documents replaced by other processes; otherwise the writer will
// publish a newer snapshot shortly and the current one is still consistent.
func (s *Store) read(ctx context.Context) (*snapshot, error) {
	if s.closed.Load() {
		return nil, storage.ErrStorageClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.mu.TryLock() {
		if err := s.refreshLocked(); err != nil {
			s.logger.Warn("failed to reload description document, serving last snapshot", "path", s.path, "err", err)
		}
		s.mu.Unlock()
	}
	return s.current.Load(), nil
}

// refreshLocked reloads the document if it was replaced since the last load.
// Must be called with s.mu held.
func (s *Store) refreshLocked() error {
	cur := s.current.Load()
	if cur == nil {
		return nil
	}
	info, err := os.Stat(s.path)
	if err != nil {
		return err
	}
	if !cur.stale(info) {
		return nil
	}
	snap, err := s.load()
	if err != nil {
		return err
	}
	s.logger.Debug("reloaded description document changed on disk", "path", s.path, "records", len(snap.records))
	s.current.Store(snap)
	return nil
}

func (s *Store) load() (*snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, err
	}
	records, err := decodeDocument(data)
	if err != nil {
		return nil, err
	}
	return &snapshot{records: records, info: info}, nil
}

func (s *Store) persist(records map[string]*core.Record) (*snapshot, error) {
	data, err := encodeDocument(records)
	if err != nil {
		return nil, err
	}
	if err := s.writeFile(s.path, data, 0o644); err != nil {
		return nil, err
	}
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, err
	}
	return &snapshot{records: records, info: info}, nil
}

func (s *Store) lockFile(ctx context.Context) error {
	locked, err := s.fileLock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return storage.NewStoreError("lock document", err)
	}
	if !locked {
		return storage.NewStoreError("lock document", fmt.Errorf("could not acquire %s", s.fileLock.Path()))
	}
	return nil
}

func (s *Store) unlockFile() {
	if err := s.fileLock.Unlock(); err != nil {
		s.logger.Warn("failed to release document lock", "path", s.fileLock.Path(), "err", err)
	}
}
