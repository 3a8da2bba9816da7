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

package search

import "github.com/poiesic/glimpse/core"

// SearchMonitor observes the stages of a search.
// Implement this interface to track intermediate steps and results during search.
// Callbacks run on the searching goroutine, one at a time.
type SearchMonitor interface {
	Start(query string)
	AfterSnapshot(candidates []*core.Record)
	Scored(record *core.Record, textScore, visualScore, confidence int)
	Finish(results []core.Result)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                     {}
func (n *noopMonitor) AfterSnapshot(_ []*core.Record)     {}
func (n *noopMonitor) Scored(_ *core.Record, _, _, _ int) {}
func (n *noopMonitor) Finish(_ []core.Result)             {}
