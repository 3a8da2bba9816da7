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

package glimpse

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/poiesic/glimpse/ai"
	"github.com/poiesic/glimpse/ai/openai"
	"github.com/poiesic/glimpse/ingestion"
	"github.com/poiesic/glimpse/reindex"
	"github.com/poiesic/glimpse/search"
	"github.com/poiesic/glimpse/status"
	"github.com/poiesic/glimpse/storage"
	"github.com/poiesic/glimpse/storage/badger"
	"github.com/poiesic/glimpse/storage/blob"
	"github.com/poiesic/glimpse/storage/document"
)

// Description store backends.
const (
	BackendDocument = "document"
	BackendBadger   = "badger"
)

const (
	documentFile = "descriptions.json"
	badgerDir    = "index"
	imagesDir    = "screenshots"
)

// ErrUnknownBackend is returned for a description store backend other than
// BackendDocument or BackendBadger.
var ErrUnknownBackend = errors.New("unknown storage backend")

// Library ties the stores and the vision provider together and hands out the
// components that operate on them.
type Library struct {
	descriptions storage.DescriptionStore
	images       storage.ImageStore
	provider     ai.AIProvider
	logger       *slog.Logger
}

// LibraryOption configures a Library.
type LibraryOption func(*libraryOptions)

type libraryOptions struct {
	aiConfig *ai.Config
	provider ai.AIProvider
	backend  string
	minio    *blob.MinIOConfig
	images   storage.ImageStore
}

// WithAIConfig sets the vision service configuration.
// Default is ai.DefaultConfig().
func WithAIConfig(config *ai.Config) LibraryOption {
	return func(o *libraryOptions) {
		o.aiConfig = config
	}
}

// WithProvider uses provider instead of building one from the AI config.
// The library takes ownership and closes it.
func WithProvider(provider ai.AIProvider) LibraryOption {
	return func(o *libraryOptions) {
		o.provider = provider
	}
}

// WithBackend selects the description store backend.
// Default is BackendDocument.
func WithBackend(backend string) LibraryOption {
	return func(o *libraryOptions) {
		o.backend = backend
	}
}

// WithMinIO stores screenshots in an S3 compatible bucket instead of the
// data directory.
func WithMinIO(config blob.MinIOConfig) LibraryOption {
	return func(o *libraryOptions) {
		o.minio = &config
	}
}

// WithImageStore uses images for screenshot bytes.
func WithImageStore(images storage.ImageStore) LibraryOption {
	return func(o *libraryOptions) {
		o.images = images
	}
}

// Open opens (creating when needed) the library stored under dataDir.
func Open(ctx context.Context, dataDir string, opts ...LibraryOption) (*Library, error) {
	options := &libraryOptions{
		aiConfig: ai.DefaultConfig(),
		backend:  BackendDocument,
	}
	for _, opt := range opts {
		opt(options)
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	descriptions, err := openDescriptions(dataDir, options.backend)
	if err != nil {
		return nil, err
	}

	images := options.images
	switch {
	case images != nil:
	case options.minio != nil:
		images, err = blob.NewMinIO(ctx, *options.minio)
	default:
		images, err = blob.NewFS(filepath.Join(dataDir, imagesDir))
	}
	if err != nil {
		descriptions.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			descriptions.Close()
			return nil, err
		}
	}

	return &Library{
		descriptions: descriptions,
		images:       images,
		provider:     provider,
		logger:       slog.Default().With("component", "library"),
	}, nil
}

func openDescriptions(dataDir, backend string) (storage.DescriptionStore, error) {
	switch backend {
	case BackendDocument, "":
		return document.Open(filepath.Join(dataDir, documentFile))
	case BackendBadger:
		return badger.Open(filepath.Join(dataDir, badgerDir))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

func (l *Library) Close() error {
	if err := l.provider.Close(); err != nil {
		l.logger.Error("error closing AI provider", "err", err)
	}
	if err := l.descriptions.Close(); err != nil {
		l.logger.Error("error closing description store", "err", err)
		return err
	}
	return nil
}

func (l *Library) Descriptions() storage.DescriptionStore {
	return l.descriptions
}

func (l *Library) Images() storage.ImageStore {
	return l.images
}

func (l *Library) NewPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(l.descriptions, l.images, l.provider, opts...)
}

func (l *Library) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(l.descriptions, l.provider, opts...)
}

func (l *Library) NewReporter() (*status.Reporter, error) {
	return status.NewReporter(l.descriptions)
}

// NewReindexer returns a reindexer writing progress to progress.
func (l *Library) NewReindexer(config *reindex.Config, progress io.Writer) (*reindex.Reindexer, error) {
	return reindex.NewReindexer(l.descriptions, l.images, l.provider, config, progress)
}
