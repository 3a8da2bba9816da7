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

package ingestion

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/glimpse/ai"
	"github.com/poiesic/glimpse/core"
	"github.com/poiesic/glimpse/storage"
)

// DefaultBatchSize is the number of folder files read into memory at once.
const DefaultBatchSize = 16

// File is one uploaded image.
type File struct {
	Filename    string
	Data        []byte
	ContentType string
}

// Pipeline turns uploaded images into stored, searchable descriptions.
// Files are processed independently and concurrently on a worker pool; only
// the final record write is serialized by the description store.
type Pipeline struct {
	descriptions storage.DescriptionStore
	images       storage.ImageStore
	analyzer     ai.Analyzer
	pool         *ants.Pool
	locks        *identifierLocks
	maxFileSize  int64
	batchSize    int
	now          func() time.Time
	logger       *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the number of files analyzed concurrently.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets the logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithMaxFileSize sets the largest accepted image in bytes.
// Default is core.DefaultMaxFileSize.
func WithMaxFileSize(size int64) Option {
	return func(p *Pipeline) error {
		if size <= 0 {
			size = core.DefaultMaxFileSize
		}
		p.maxFileSize = size
		return nil
	}
}

// WithBatchSize sets how many folder files are loaded per ingest call.
// Default is DefaultBatchSize.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		p.batchSize = size
		return nil
	}
}

// WithClock replaces time.Now for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) error {
		if now != nil {
			p.now = now
		}
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	descriptions storage.DescriptionStore,
	images storage.ImageStore,
	provider ai.AIProvider,
	opts ...Option,
) (*Pipeline, error) {
	if descriptions == nil {
		return nil, ErrDescriptionStoreRequired
	}
	if images == nil {
		return nil, ErrImageStoreRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := max(runtime.NumCPU()/2, 1)
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		descriptions: descriptions,
		images:       images,
		analyzer:     provider.Analyzer(),
		pool:         pool,
		locks:        newIdentifierLocks(),
		maxFileSize:  core.DefaultMaxFileSize,
		batchSize:    DefaultBatchSize,
		now:          time.Now,
		logger:       slog.Default().With("component", "ingestion"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Ingest processes every file and returns exactly one outcome per file, in
// input order. A failure on one file never affects the others.
//
// Files that sanitize to the same identifier run one after another in input
// order, so the last of them wins. Distinct identifiers run concurrently.
func (p *Pipeline) Ingest(ctx context.Context, files []File) []core.Outcome {
	outcomes := make([]core.Outcome, len(files))
	if len(files) == 0 {
		return outcomes
	}

	logger := p.logger.With("batch", uuid.NewString())
	start := time.Now()

	var wg sync.WaitGroup
	for _, group := range groupByIdentifier(files) {
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			for _, i := range group {
				outcomes[i] = p.process(ctx, logger, files[i])
			}
		})
		if err != nil {
			wg.Done()
			for _, i := range group {
				logger.Error("failed to schedule file", "filename", files[i].Filename, "err", err)
				outcomes[i] = core.Outcome{
					Filename:  files[i].Filename,
					Status:    core.OutcomeError,
					Message:   msgProcessFailed,
					Retryable: true,
				}
			}
		}
	}
	wg.Wait()

	counts := make(map[core.OutcomeStatus]int, 3)
	for _, o := range outcomes {
		counts[o.Status]++
	}
	logger.Info("ingested batch",
		"files", len(files),
		"success", counts[core.OutcomeSuccess],
		"skipped", counts[core.OutcomeSkipped],
		"errors", counts[core.OutcomeError],
		"elapsed", time.Since(start))

	return outcomes
}

// Release releases resources including the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
