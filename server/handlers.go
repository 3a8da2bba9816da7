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
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/poiesic/glimpse/core"
	"github.com/poiesic/glimpse/ingestion"
	"github.com/poiesic/glimpse/search"
	"github.com/poiesic/glimpse/storage"
)

type uploadResponse struct {
	Results        []core.Outcome `json:"results"`
	TotalProcessed int            `json:"total_processed"`
}

type searchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type searchResponse struct {
	Results    []core.Result `json:"results"`
	Query      string        `json:"query"`
	TotalFound int           `json:"total_found"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// POST /upload
// Multipart form with one or more "files" parts.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	limit := s.maxFileSize*int64(s.maxFiles) + multipartMemory
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			s.writeError(w, http.StatusBadRequest, msgNoFiles)
			return
		}
		s.logger.Warn("failed to parse upload", "err", err)
		s.writeError(w, http.StatusBadRequest, msgBadUpload)
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		s.writeError(w, http.StatusBadRequest, msgNoFiles)
		return
	}
	if len(headers) > s.maxFiles {
		s.writeError(w, http.StatusRequestEntityTooLarge, msgTooManyFiles)
		return
	}

	files := make([]ingestion.File, 0, len(headers))
	for _, fh := range headers {
		data, err := readPart(fh)
		if err != nil {
			s.logger.Warn("failed to read upload part", "filename", fh.Filename, "err", err)
			s.writeError(w, http.StatusBadRequest, msgBadUpload)
			return
		}
		files = append(files, ingestion.File{
			Filename:    fh.Filename,
			Data:        data,
			ContentType: fh.Header.Get("Content-Type"),
		})
	}

	outcomes := s.pipeline.Ingest(r.Context(), files)
	processed := 0
	for _, o := range outcomes {
		if o.Status == core.OutcomeSuccess {
			processed++
		}
	}
	s.writeJSON(w, http.StatusOK, uploadResponse{Results: outcomes, TotalProcessed: processed})
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// POST /search
// Body: {"query": "...", "top_k": 5}
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	topK := req.TopK
	if topK <= 0 {
		topK = s.defaultTopK
	}

	results, err := s.searcher.Search(r.Context(), req.Query, topK)
	if err != nil {
		if errors.Is(err, search.ErrInvalidQuery) || core.IsValidationError(err) {
			s.writeError(w, http.StatusBadRequest, msgEmptyQuery)
			return
		}
		s.logger.Error("search failed", "err", err)
		s.writeError(w, http.StatusInternalServerError, msgSearchFailed)
		return
	}

	s.writeJSON(w, http.StatusOK, searchResponse{
		Results:    results,
		Query:      req.Query,
		TotalFound: len(results),
	})
}

// GET /status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	report, err := s.reporter.Status(r.Context())
	if err != nil {
		s.logger.Error("status failed", "err", err)
		s.writeError(w, http.StatusInternalServerError, msgStatusFailed)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

// GET /screenshots/{filename}
func (s *Server) handleScreenshot(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	if name == "" || core.SanitizeFilename(name) != name {
		s.writeError(w, http.StatusNotFound, msgNotFound)
		return
	}

	data, err := s.images.Get(r.Context(), name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, msgNotFound)
			return
		}
		s.logger.Error("failed to read screenshot", "filename", name, "err", err)
		s.writeError(w, http.StatusInternalServerError, msgReadFailed)
		return
	}

	w.Header().Set("Content-Type", core.MimeTypeFor(name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to write response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}
