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

package document

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/poiesic/glimpse/core"
	"github.com/poiesic/glimpse/storage"
)

// fileFormat is the on-disk layout of the description document.
type fileFormat struct {
	Version int                     `json:"version"`
	Records map[string]*core.Record `json:"records"`
}

func encodeDocument(records map[string]*core.Record) ([]byte, error) {
	data, err := json.MarshalIndent(fileFormat{Version: documentVersion, Records: records}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
	}
	return append(data, '\n'), nil
}

// decodeDocument parses a description document. Besides the current format it
// accepts the flat {"path": "description"} layout written by earlier indexers,
// importing each entry as an indexed record.
func decodeDocument(data []byte) (map[string]*core.Record, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]*core.Record{}, nil
	}

	var doc fileFormat
	if err := json.Unmarshal(data, &doc); err == nil && doc.Version > 0 {
		if doc.Records == nil {
			doc.Records = map[string]*core.Record{}
		}
		for id, r := range doc.Records {
			if r == nil {
				delete(doc.Records, id)
				continue
			}
			r.Identifier = id
		}
		return doc.Records, nil
	}

	var legacy map[string]string
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil, fmt.Errorf("%w: unrecognized description document: %w", storage.ErrSerializationFailed, err)
	}
	records := make(map[string]*core.Record, len(legacy))
	for path, description := range legacy {
		id := core.SanitizeFilename(filepath.Base(path))
		if id == "" {
			continue
		}
		records[id] = &core.Record{
			Identifier:  id,
			SourcePath:  path,
			TextContent: description,
			Status:      core.RecordStatusIndexed,
		}
	}
	return records, nil
}
