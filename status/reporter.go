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

package status

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/glimpse/core"
	"github.com/poiesic/glimpse/storage"
)

// ErrDescriptionStoreRequired is returned when no store is supplied.
var ErrDescriptionStoreRequired = errors.New("description store is required")

// Reporter derives index status from a snapshot of the description store.
// It keeps no counters of its own, so a report always agrees with what a
// search running at the same moment would see.
type Reporter struct {
	descriptions storage.DescriptionStore
	logger       *slog.Logger
}

// NewReporter creates a status reporter over descriptions.
func NewReporter(descriptions storage.DescriptionStore) (*Reporter, error) {
	if descriptions == nil {
		return nil, ErrDescriptionStoreRequired
	}
	return &Reporter{
		descriptions: descriptions,
		logger:       slog.Default().With("component", "status"),
	}, nil
}

// Status returns aggregate counters for the index.
// TotalImages counts searchable records only; failed records are counted
// separately and never appear in IndexedFiles.
func (r *Reporter) Status(ctx context.Context) (core.StatusReport, error) {
	records, err := r.descriptions.All(ctx)
	if err != nil {
		return core.StatusReport{}, fmt.Errorf("failed to read index: %w", err)
	}

	report := core.StatusReport{
		TotalRecords: len(records),
		IndexedFiles: make([]string, 0, len(records)),
	}
	var last time.Time
	for _, rec := range records {
		switch rec.Status {
		case core.RecordStatusIndexed:
			report.TotalImages++
			report.IndexedFiles = append(report.IndexedFiles, rec.Identifier)
			if rec.CreatedAt.After(last) {
				last = rec.CreatedAt
			}
		case core.RecordStatusFailed:
			report.TotalFailed++
		}
	}
	if !last.IsZero() {
		report.LastIndexedAt = &last
	}

	r.logger.Debug("status computed",
		"records", report.TotalRecords,
		"indexed", report.TotalImages,
		"failed", report.TotalFailed)
	return report, nil
}
