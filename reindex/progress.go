package reindex

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// result is what happened to one record during a run.
type result int

const (
	resultIndexed result = iota
	resultFailed
	resultMissing
	resultPruned
)

// tally accumulates the Summary of a run and keeps a one-line status
// current on w. Workers call add concurrently.
type tally struct {
	mu      sync.Mutex
	w       io.Writer
	total   int
	every   int
	printed int
	summary Summary
	started time.Time
	elapsed time.Duration
	done    bool
}

func newTally(w io.Writer, total, every int) *tally {
	if w == nil {
		w = io.Discard
	}
	return &tally{
		w:       w,
		total:   total,
		every:   max(every, 1),
		started: time.Now(),
	}
}

// add counts one processed record and refreshes the status line every
// few records and on the last one.
func (t *tally) add(r result) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.summary.Processed++
	switch r {
	case resultIndexed:
		t.summary.Indexed++
	case resultFailed:
		t.summary.Failed++
	case resultMissing:
		t.summary.Missing++
	case resultPruned:
		t.summary.Pruned++
	}

	if t.summary.Processed-t.printed >= t.every || t.summary.Processed == t.total {
		t.printLine()
		t.printed = t.summary.Processed
	}
}

// finish ends the status line and returns the final counts with the run
// duration.
func (t *tally) finish() (Summary, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.done {
		t.done = true
		t.elapsed = time.Since(t.started)
		if t.printed != t.summary.Processed {
			t.printLine()
		}
		fmt.Fprintln(t.w)
	}
	return t.summary, t.elapsed
}

// snapshot returns the counts so far.
func (t *tally) snapshot() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.summary
}

// printLine must be called with t.mu held.
func (t *tally) printLine() {
	s := t.summary
	fmt.Fprintf(t.w, "\r[%d/%d] indexed %d  failed %d  missing %d  pruned %d",
		s.Processed, t.total, s.Indexed, s.Failed, s.Missing, s.Pruned)
}
