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
	"strings"

	"golang.org/x/text/unicode/norm"
)

// SanitizeFilename turns an uploaded filename into a storage identifier that is
// safe to use as a flat file name.
//
// Accented characters are folded to ASCII, path separators become word breaks,
// whitespace runs collapse to a single underscore, anything outside
// [A-Za-z0-9_.-] is dropped and leading or trailing dots and underscores are
// trimmed. The result may be empty, which callers must treat as invalid.
func SanitizeFilename(name string) string {
	folded := norm.NFKD.String(name)

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case r > 127:
			// combining marks and non-ASCII letters
		case r == '/' || r == '\\':
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}

	joined := strings.Join(strings.Fields(b.String()), "_")

	out := make([]byte, 0, len(joined))
	for i := 0; i < len(joined); i++ {
		c := joined[i]
		if isFilenameByte(c) {
			out = append(out, c)
		}
	}
	return strings.Trim(string(out), "._")
}

// IdentifierFor sanitizes filename and rejects names that sanitize to nothing.
func IdentifierFor(filename string) (string, error) {
	id := SanitizeFilename(filename)
	if id == "" {
		return "", &ValidationError{Field: "filename", Reason: ErrInvalidFilename}
	}
	return id, nil
}

func isFilenameByte(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '_' || c == '.' || c == '-'
}
