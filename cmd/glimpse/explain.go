package main

import (
	"fmt"
	"io"

	"github.com/poiesic/glimpse/core"
	"github.com/poiesic/glimpse/search"
)

// explainMonitor prints how each candidate was scored.
type explainMonitor struct {
	w io.Writer
}

var _ search.SearchMonitor = (*explainMonitor)(nil)

func (m *explainMonitor) Start(query string) {
	fmt.Fprintf(m.w, "query: %q\n", query)
}

func (m *explainMonitor) AfterSnapshot(candidates []*core.Record) {
	fmt.Fprintf(m.w, "candidates: %d\n", len(candidates))
}

func (m *explainMonitor) Scored(record *core.Record, textScore, visualScore, confidence int) {
	fmt.Fprintf(m.w, "  %-40s text=%3d visual=%3d confidence=%3d\n",
		record.Identifier, textScore, visualScore, confidence)
}

func (m *explainMonitor) Finish(results []core.Result) {
	fmt.Fprintf(m.w, "returned: %d\n", len(results))
}
