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

package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/poiesic/glimpse/core"
	"github.com/poiesic/glimpse/ingestion"
	"github.com/poiesic/glimpse/search"
	"github.com/poiesic/glimpse/status"
	"github.com/poiesic/glimpse/storage"
)

const (
	// DefaultMaxFiles bounds the number of files in one upload request.
	DefaultMaxFiles = 64

	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
	multipartMemory   = 32 << 20
)

// Server exposes ingest, search and status over JSON.
type Server struct {
	pipeline       *ingestion.Pipeline
	searcher       *search.Searcher
	reporter       *status.Reporter
	images         storage.ImageStore
	maxFileSize    int64
	maxFiles       int
	defaultTopK    int
	allowedOrigins []string
	logger         *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "server")
	}
}

// WithMaxFileSize sets the per-file upload limit used to size request bodies.
// Default is core.DefaultMaxFileSize.
func WithMaxFileSize(size int64) Option {
	return func(s *Server) {
		if size > 0 {
			s.maxFileSize = size
		}
	}
}

// WithMaxFiles sets how many files one upload may carry.
// Default is DefaultMaxFiles.
func WithMaxFiles(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxFiles = n
		}
	}
}

// WithDefaultTopK sets the result count used when a search omits top_k.
func WithDefaultTopK(k int) Option {
	return func(s *Server) {
		if k > 0 {
			s.defaultTopK = k
		}
	}
}

// WithAllowedOrigins sets the CORS origins. Default allows any origin.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.allowedOrigins = origins
		}
	}
}

// New creates a server over the given components.
func New(
	pipeline *ingestion.Pipeline,
	searcher *search.Searcher,
	reporter *status.Reporter,
	images storage.ImageStore,
	opts ...Option,
) (*Server, error) {
	if pipeline == nil {
		return nil, ErrPipelineRequired
	}
	if searcher == nil {
		return nil, ErrSearcherRequired
	}
	if reporter == nil {
		return nil, ErrReporterRequired
	}
	if images == nil {
		return nil, ErrImageStoreRequired
	}

	s := &Server{
		pipeline:       pipeline,
		searcher:       searcher,
		reporter:       reporter,
		images:         images,
		maxFileSize:    core.DefaultMaxFileSize,
		maxFiles:       DefaultMaxFiles,
		defaultTopK:    search.DefaultTopK,
		allowedOrigins: []string{"*"},
		logger:         slog.Default().With("component", "server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Post("/upload", s.handleUpload)
	r.Post("/search", s.handleSearch)
	r.Get("/status", s.handleStatus)
	r.Get("/screenshots/{filename}", s.handleScreenshot)

	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully, letting in-flight requests finish.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
