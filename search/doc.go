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

// Package search ranks stored screenshot descriptions against free-text
// queries.
//
// Every indexed record is scored twice by the configured ai.Matcher, once
// against the text rendered in the screenshot and once against its visual
// summary. The two scores are blended into a single confidence:
//
//	confidence = max(text, visual, round(0.6*text + 0.4*visual))
//
// plus a bonus of 10 (capped at 100) when every non-stop query word appears
// verbatim in the record. Results below the confidence floor are dropped and
// the rest are ordered by confidence, newest first on ties.
//
// Scoring runs concurrently over an immutable store snapshot, so searches
// never block ingestion.
package search
