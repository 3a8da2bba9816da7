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

// Package local provides a lexical ai.Matcher that needs no model server.
//
// It is the default matcher: scores depend only on the words in the query
// and the description, so repeated searches over an unchanged index always
// rank identically. Terms and ContainsAllTerms are shared with the search
// package for its verbatim bonus.
package local
