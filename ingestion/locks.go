package ingestion

import (
	"sync"

	"github.com/poiesic/glimpse/core"
)

// identifierLocks serializes work on one identifier across concurrent
// Ingest calls. Entries are dropped once no caller holds or waits on them.
type identifierLocks struct {
	mu    sync.Mutex
	locks map[string]*identifierLock
}

type identifierLock struct {
	mu   sync.Mutex
	refs int
}

func newIdentifierLocks() *identifierLocks {
	return &identifierLocks{locks: make(map[string]*identifierLock)}
}

// lock blocks until id is free and returns the matching unlock.
func (l *identifierLocks) lock(id string) func() {
	l.mu.Lock()
	entry, ok := l.locks[id]
	if !ok {
		entry = &identifierLock{}
		l.locks[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

// size returns the number of identifiers currently held or awaited.
func (l *identifierLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

// groupByIdentifier splits files into groups sharing an identifier. Groups
// appear in order of first occurrence and list their files in input order.
// Files without a usable identifier form groups of their own.
func groupByIdentifier(files []File) [][]int {
	groups := make([][]int, 0, len(files))
	slot := make(map[string]int, len(files))
	for i, f := range files {
		id, err := core.IdentifierFor(f.Filename)
		if err != nil {
			groups = append(groups, []int{i})
			continue
		}
		if g, ok := slot[id]; ok {
			groups[g] = append(groups[g], i)
			continue
		}
		slot[id] = len(groups)
		groups = append(groups, []int{i})
	}
	return groups
}
