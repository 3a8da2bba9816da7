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
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/poiesic/glimpse/core"
)

// DefaultDebounce is how long a watched folder must be quiet before the
// changed files are ingested.
const DefaultDebounce = 500 * time.Millisecond

// Watcher ingests images as they appear in a folder.
type Watcher struct {
	pipeline *Pipeline
	dir      string
	debounce time.Duration
	onBatch  func([]core.Outcome)
	logger   *slog.Logger
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the quiet period before pending files are ingested.
// Editors and screenshot tools often write a file in several steps.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithBatchHandler registers a callback receiving the outcomes of every
// ingested batch.
func WithBatchHandler(fn func([]core.Outcome)) WatcherOption {
	return func(w *Watcher) {
		w.onBatch = fn
	}
}

// NewWatcher creates a watcher that feeds files created or written in dir
// to pipeline.
func NewWatcher(pipeline *Pipeline, dir string, opts ...WatcherOption) (*Watcher, error) {
	if pipeline == nil {
		return nil, ErrPipelineRequired
	}
	w := &Watcher{
		pipeline: pipeline,
		dir:      dir,
		debounce: DefaultDebounce,
		logger:   pipeline.logger.With("dir", dir),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run watches the folder until ctx is canceled. It returns nil on
// cancellation and an error only if the folder cannot be watched.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.logger.Info("watching folder")

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("stopped watching folder", "pending", len(pending))
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !core.AllowedExtension(event.Name) {
				continue
			}
			pending[event.Name] = struct{}{}
			timer.Reset(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "err", err)

		case <-timer.C:
			paths := slices.Sorted(maps.Keys(pending))
			clear(pending)
			outcomes := w.pipeline.ingestPaths(ctx, paths)
			if w.onBatch != nil {
				w.onBatch(outcomes)
			}
		}
	}
}
