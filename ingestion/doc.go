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

// Package ingestion turns uploaded screenshots into searchable descriptions.
//
// The Pipeline type manages the ingestion workflow for each file:
//   - Validating the extension, content type and size
//   - Deriving the record identifier from the sanitized filename
//   - Skipping files whose identical bytes are already indexed
//   - Persisting the image bytes before analysis
//   - Describing the image with the vision analyzer
//   - Writing the record through an atomic store update
//
// Files are processed concurrently using a worker pool. Every file yields
// exactly one outcome, in input order; a failure on one file never affects
// the others. Re-ingesting a filename with different content replaces the
// earlier record (last write wins).
//
// IndexFolder ingests a folder in batches and Watcher ingests files as they
// appear in a folder.
package ingestion
