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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/glimpse/ai"
	"github.com/poiesic/glimpse/core"
	"github.com/poiesic/glimpse/storage"
	"golang.org/x/sync/errgroup"
)

// Config controls a reindex run.
type Config struct {
	// BatchSize is the number of records to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of images)
	ReportInterval int

	// Concurrency is the number of images described at once within a batch
	Concurrency int

	// OnlyFailed limits the run to records whose last analysis failed
	OnlyFailed bool

	// Prune deletes records whose stored image no longer exists. When false
	// such records are only counted as missing.
	Prune bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      DefaultBatchSize,
		ReportInterval: 10,
		Concurrency:    2,
		OnlyFailed:     true,
		Prune:          true,
	}
}

// Summary counts what a run did.
type Summary struct {
	Processed int
	Indexed   int
	Failed    int
	Missing   int
	Pruned    int
}

// Reindexer describes stored images again and rewrites their records.
// It is the manual retry path for failed analyses and the way to refresh
// every description after switching vision models.
type Reindexer struct {
	descriptions storage.DescriptionStore
	images       storage.ImageStore
	analyzer     ai.Analyzer
	config       *Config
	progress     io.Writer
	iterator     *RecordIterator
	now          func() time.Time
	logger       *slog.Logger
}

// NewReindexer creates a new reindexer.
// progress: where to write progress output (typically os.Stderr)
func NewReindexer(
	descriptions storage.DescriptionStore,
	images storage.ImageStore,
	provider ai.AIProvider,
	config *Config,
	progress io.Writer,
) (*Reindexer, error) {
	if descriptions == nil {
		return nil, ErrDescriptionStoreRequired
	}
	if images == nil {
		return nil, ErrImageStoreRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	var filter func(*core.Record) bool
	if config.OnlyFailed {
		filter = func(r *core.Record) bool { return r.Status == core.RecordStatusFailed }
	}

	return &Reindexer{
		descriptions: descriptions,
		images:       images,
		analyzer:     provider.Analyzer(),
		config:       config,
		progress:     progress,
		iterator:     NewRecordIterator(descriptions, config.BatchSize, filter),
		now:          time.Now,
		logger:       slog.Default().With("component", "reindex"),
	}, nil
}

// Run executes the reindexing operation.
// Progress is reported to the configured writer. Per-image failures are
// counted in the summary; Run only fails when the store cannot be read or
// ctx is canceled.
func (r *Reindexer) Run(ctx context.Context) (Summary, error) {
	records, err := r.iterator.Snapshot(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to query records: %w", err)
	}

	total := len(records)
	if total == 0 {
		fmt.Fprintf(r.progress, "No records to reindex (0 records)\n")
		return Summary{}, nil
	}

	fmt.Fprintf(r.progress, "Starting reindex of %d records (batch size: %d)\n",
		total, r.iterator.batchSize)

	counts := newTally(r.progress, total, r.config.ReportInterval)
	err = r.iterator.ForEach(ctx, records, func(batch []*core.Record) error {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(max(r.config.Concurrency, 1))
		for _, rec := range batch {
			g.Go(func() error {
				counts.add(r.reindexRecord(gctx, rec))
				return nil
			})
		}
		return g.Wait()
	})
	if err != nil {
		return counts.snapshot(), err
	}

	summary, elapsed := counts.finish()
	fmt.Fprintf(r.progress, "Reindex complete. Processed %d records in %v (%d indexed, %d failed, %d missing, %d pruned)\n",
		summary.Processed, elapsed.Round(time.Millisecond), summary.Indexed, summary.Failed, summary.Missing, summary.Pruned)

	return summary, nil
}

// reindexRecord describes one stored image again and reports what happened.
func (r *Reindexer) reindexRecord(ctx context.Context, rec *core.Record) result {
	logger := r.logger.With("identifier", rec.Identifier)

	data, err := r.images.Get(ctx, rec.Identifier)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		if r.config.Prune {
			return r.prune(ctx, logger, rec)
		}
		logger.Warn("stored image is missing")
		return resultMissing
	case err != nil:
		logger.Error("failed to load image", "err", err)
		return resultMissing
	}

	mimeType := core.MimeTypeFor(rec.Identifier)
	desc, descErr := r.analyzer.Describe(ctx, data, mimeType)
	digest := core.DigestContent(data)
	now := r.now().UTC()
	model := r.analyzer.Model()

	err = r.descriptions.Update(ctx, rec.Identifier, func(current *core.Record) (*core.Record, error) {
		if descErr != nil && current.Searchable() && current.Digest == digest {
			// A failed refresh keeps the existing good description.
			return nil, nil
		}
		next := &core.Record{
			Identifier: rec.Identifier,
			SourcePath: rec.SourcePath,
			Digest:     digest,
			Model:      model,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if current != nil {
			next.SourcePath = current.SourcePath
		}
		if descErr != nil {
			next.Status = core.RecordStatusFailed
			next.Message = descErr.Error()
			next.Retryable = ai.IsTransient(descErr)
			return next, nil
		}
		next.Status = core.RecordStatusIndexed
		next.VisualSummary = desc.VisualSummary
		next.TextContent = desc.TextContent
		if current.Searchable() && current.Digest == digest {
			next.CreatedAt = current.CreatedAt
		}
		return next, nil
	})
	if err != nil {
		logger.Error("failed to save description", "err", err)
		return resultFailed
	}
	if descErr != nil {
		logger.Warn("reindex failed", "transient", ai.IsTransient(descErr), "err", descErr)
		return resultFailed
	}
	return resultIndexed
}

// prune deletes a record whose image is gone. A record rewritten since the
// snapshot was taken belongs to a newer upload and is left alone.
func (r *Reindexer) prune(ctx context.Context, logger *slog.Logger, rec *core.Record) result {
	removed := false
	err := r.descriptions.Update(ctx, rec.Identifier, func(current *core.Record) (*core.Record, error) {
		if current == nil || current.Digest != rec.Digest || !current.UpdatedAt.Equal(rec.UpdatedAt) {
			return nil, nil
		}
		removed = true
		return nil, storage.ErrRemoveRecord
	})
	if err != nil {
		logger.Error("failed to prune record", "err", err)
		return resultMissing
	}
	if !removed {
		logger.Debug("record changed since snapshot, not pruned")
		return resultMissing
	}
	logger.Info("pruned record without image")
	return resultPruned
}
