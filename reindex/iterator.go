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

package reindex

import (
	"context"

	"github.com/poiesic/glimpse/core"
	"github.com/poiesic/glimpse/storage"
)

const (
	// DefaultBatchSize is the default number of records handed out per batch
	DefaultBatchSize = 20
)

// RecordIterator walks a snapshot of the description store in batches.
type RecordIterator struct {
	descriptions storage.DescriptionStore
	batchSize    int
	filter       func(*core.Record) bool
}

// NewRecordIterator creates a new record iterator.
// filter selects the records to visit; nil visits every record.
func NewRecordIterator(descriptions storage.DescriptionStore, batchSize int, filter func(*core.Record) bool) *RecordIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &RecordIterator{
		descriptions: descriptions,
		batchSize:    batchSize,
		filter:       filter,
	}
}

// Snapshot returns the records the iterator will visit.
func (it *RecordIterator) Snapshot(ctx context.Context) ([]*core.Record, error) {
	records, err := it.descriptions.All(ctx)
	if err != nil {
		return nil, err
	}
	if it.filter == nil {
		return records, nil
	}
	selected := records[:0]
	for _, rec := range records {
		if it.filter(rec) {
			selected = append(selected, rec)
		}
	}
	return selected, nil
}

// ForEach calls fn for each batch of records, in identifier order.
// Iteration stops on first error from fn or when ctx is canceled.
func (it *RecordIterator) ForEach(ctx context.Context, records []*core.Record, fn func([]*core.Record) error) error {
	for i := 0; i < len(records); i += it.batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(i+it.batchSize, len(records))
		if err := fn(records[i:end]); err != nil {
			return err
		}
	}
	return nil
}
