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

package core

import (
	"encoding/hex"
	"time"

	"golang.org/x/crypto/blake2b"
)

// DigestContent returns the hex encoded BLAKE2b-256 digest of image bytes.
// Identical bytes always produce identical digests.
func DigestContent(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// RecordStatus is the analysis state of a stored record.
type RecordStatus string

const (
	// RecordStatusIndexed marks a record with a usable description.
	RecordStatusIndexed RecordStatus = "indexed"
	// RecordStatusFailed marks a record whose analysis failed. The image is kept.
	RecordStatusFailed RecordStatus = "failed"
	// RecordStatusSkipped marks a record that was intentionally not analyzed.
	RecordStatusSkipped RecordStatus = "skipped"
)

// OutcomeStatus is the per-file result of an ingest call.
type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeError   OutcomeStatus = "error"
	OutcomeSkipped OutcomeStatus = "skipped"
)

// Record is the stored description of one screenshot.
type Record struct {
	Identifier    string       `json:"identifier"`
	SourcePath    string       `json:"source_path"`
	VisualSummary string       `json:"visual_summary"`
	TextContent   string       `json:"text_content"`
	Digest        string       `json:"digest,omitempty"`
	Model         string       `json:"model,omitempty"`
	Status        RecordStatus `json:"status"`
	Message       string       `json:"message,omitempty"`
	Retryable     bool         `json:"retryable,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// Clone returns a copy of the record. Records hold no reference fields, so a
// shallow copy is sufficient.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

// Searchable reports whether the record participates in queries.
func (r *Record) Searchable() bool {
	return r != nil && r.Status == RecordStatusIndexed
}

// Outcome reports what happened to a single file passed to ingest.
type Outcome struct {
	Filename   string        `json:"filename"`
	Identifier string        `json:"identifier,omitempty"`
	Status     OutcomeStatus `json:"status"`
	Message    string        `json:"message,omitempty"`
	Retryable  bool          `json:"retryable,omitempty"`
}

// Result is one ranked match returned by a query.
type Result struct {
	Identifier    string    `json:"identifier"`
	Filename      string    `json:"filename"`
	ImageURL      string    `json:"image_url"`
	Confidence    int       `json:"confidence"`
	TextScore     int       `json:"text_score"`
	VisualScore   int       `json:"visual_score"`
	Description   string    `json:"description"`
	MatchedFields []string  `json:"matched_fields,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// StatusReport aggregates the state of the description store.
type StatusReport struct {
	TotalImages   int        `json:"total_images"`
	TotalFailed   int        `json:"total_failed"`
	TotalRecords  int        `json:"total_records"`
	LastIndexedAt *time.Time `json:"last_indexed_at,omitempty"`
	IndexedFiles  []string   `json:"indexed_files"`
}
