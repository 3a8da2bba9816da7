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
	"path/filepath"
	"strings"
)

// DefaultMaxFileSize is the largest image accepted by ingest (16 MiB).
const DefaultMaxFileSize int64 = 16 << 20

// allowedExtensions maps accepted image extensions to their MIME type.
var allowedExtensions = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
}

// AllowedExtension reports whether filename has an accepted image extension.
// Matching is case-insensitive.
func AllowedExtension(filename string) bool {
	_, ok := allowedExtensions[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// MimeTypeFor returns the image MIME type implied by the filename extension,
// or application/octet-stream when the extension is not recognized.
func MimeTypeFor(filename string) string {
	if mime, ok := allowedExtensions[strings.ToLower(filepath.Ext(filename))]; ok {
		return mime
	}
	return "application/octet-stream"
}

// ValidateUpload checks a file against ingest rules.
//
// Validation rules:
//   - Extension must be one of png, jpg, jpeg, gif, bmp, webp
//   - Content type, when given, must be image/* or application/octet-stream
//   - Size must be greater than zero and at most maxSize
//
// A maxSize of zero or less means DefaultMaxFileSize.
func ValidateUpload(filename, contentType string, size int64, maxSize int64) error {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	if !AllowedExtension(filename) {
		return &ValidationError{Field: "file", Reason: ErrInvalidFileType}
	}
	if contentType != "" {
		ct := strings.ToLower(strings.TrimSpace(contentType))
		if i := strings.IndexByte(ct, ';'); i >= 0 {
			ct = strings.TrimSpace(ct[:i])
		}
		if !strings.HasPrefix(ct, "image/") && ct != "application/octet-stream" {
			return &ValidationError{Field: "file", Reason: ErrInvalidFileType}
		}
	}
	if size <= 0 {
		return &ValidationError{Field: "file", Reason: ErrEmptyFile}
	}
	if size > maxSize {
		return &ValidationError{Field: "file", Reason: ErrFileTooLarge}
	}
	return nil
}

// ValidateQuery trims the query and rejects it when nothing is left.
func ValidateQuery(query string) (string, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return "", &ValidationError{Field: "query", Reason: ErrEmptyQuery}
	}
	return q, nil
}
