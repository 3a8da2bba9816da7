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
	"os"
	"path/filepath"

	"github.com/poiesic/glimpse/core"
)

// IndexFolder ingests every supported image directly inside dir, in
// filename order. Subdirectories and files with other extensions are
// ignored. Files are loaded in batches so memory stays bounded on large
// folders. Only an unreadable dir is reported as an error; per-file
// failures are outcomes.
func (p *Pipeline) IndexFolder(ctx context.Context, dir string) ([]core.Outcome, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read folder %s: %w", dir, err)
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() && core.AllowedExtension(entry.Name()) {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	p.logger.Info("indexing folder", "dir", dir, "images", len(paths))

	outcomes := make([]core.Outcome, 0, len(paths))
	for start := 0; start < len(paths); start += p.batchSize {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		end := min(start+p.batchSize, len(paths))
		outcomes = append(outcomes, p.ingestPaths(ctx, paths[start:end])...)
	}
	return outcomes, nil
}

// ingestPaths loads and ingests files from disk, returning outcomes in the
// order of paths. Files that cannot be loaded get an error outcome without
// reaching the pipeline.
func (p *Pipeline) ingestPaths(ctx context.Context, paths []string) []core.Outcome {
	outcomes := make([]core.Outcome, len(paths))
	files := make([]File, 0, len(paths))
	slots := make([]int, 0, len(paths))

	for i, path := range paths {
		f, rejected := p.loadFile(path)
		if rejected != nil {
			outcomes[i] = *rejected
			continue
		}
		files = append(files, f)
		slots = append(slots, i)
	}

	for k, outcome := range p.Ingest(ctx, files) {
		outcomes[slots[k]] = outcome
	}
	return outcomes
}

// loadFile reads an image from disk. Oversized files are rejected before
// their contents are read.
func (p *Pipeline) loadFile(path string) (File, *core.Outcome) {
	name := filepath.Base(path)
	info, err := os.Stat(path)
	if err != nil {
		p.logger.Warn("failed to stat file", "path", path, "err", err)
		out := failed(core.Outcome{Filename: name}, msgReadFailed, false)
		return File{}, &out
	}
	if info.Size() > p.maxFileSize {
		out := failed(core.Outcome{Filename: name}, p.tooLargeMessage(), false)
		return File{}, &out
	}

	data, err := os.ReadFile(path)
	if err != nil {
		p.logger.Warn("failed to read file", "path", path, "err", err)
		out := failed(core.Outcome{Filename: name}, msgReadFailed, false)
		return File{}, &out
	}
	return File{Filename: name, Data: data, ContentType: core.MimeTypeFor(name)}, nil
}
