package reindex

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTally_Counts(t *testing.T) {
	var buf bytes.Buffer
	counts := newTally(&buf, 5, 2)

	counts.add(resultIndexed)
	assert.Empty(t, buf.String(), "nothing printed before the interval")

	counts.add(resultFailed)
	assert.Contains(t, buf.String(), "[2/5] indexed 1  failed 1  missing 0  pruned 0")

	counts.add(resultMissing)
	counts.add(resultPruned)
	counts.add(resultIndexed)
	assert.Contains(t, buf.String(), "[5/5] indexed 2  failed 1  missing 1  pruned 1", "last record always prints")

	summary, elapsed := counts.finish()
	assert.Equal(t, Summary{Processed: 5, Indexed: 2, Failed: 1, Missing: 1, Pruned: 1}, summary)
	assert.GreaterOrEqual(t, elapsed.Nanoseconds(), int64(0))
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))
}

func TestTally_FinishPrintsPendingLine(t *testing.T) {
	var buf bytes.Buffer
	counts := newTally(&buf, 10, 100)

	counts.add(resultIndexed)
	counts.finish()
	assert.Contains(t, buf.String(), "[1/10] indexed 1")

	before := buf.Len()
	summary, _ := counts.finish()
	assert.Equal(t, before, buf.Len(), "finish is idempotent")
	assert.Equal(t, 1, summary.Processed)
}

func TestTally_Concurrent(t *testing.T) {
	counts := newTally(nil, 100, 7)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			counts.add(result(i % 4))
		}()
	}
	wg.Wait()

	summary := counts.snapshot()
	assert.Equal(t, 100, summary.Processed)
	assert.Equal(t, 25, summary.Indexed)
	assert.Equal(t, 25, summary.Failed)
	assert.Equal(t, 25, summary.Missing)
	assert.Equal(t, 25, summary.Pruned)
}
