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

package badger

import "strings"

// Key prefixes
const (
	descriptionPrefix = "desc"
)

// makeDescriptionKey generates a key for a record by identifier.
// Format: desc:identifier
func makeDescriptionKey(identifier string) []byte {
	return []byte(descriptionPrefix + ":" + identifier)
}

// descriptionScanPrefix matches every record key.
func descriptionScanPrefix() []byte {
	return []byte(descriptionPrefix + ":")
}

// identifierFromKey reverses makeDescriptionKey.
func identifierFromKey(key []byte) string {
	return strings.TrimPrefix(string(key), descriptionPrefix+":")
}
