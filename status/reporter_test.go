package status

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/glimpse/core"
	"github.com/poiesic/glimpse/storage"
	"github.com/poiesic/glimpse/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) storage.DescriptionStore {
	t.Helper()
	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewReporter(t *testing.T) {
	_, err := NewReporter(nil)
	assert.ErrorIs(t, err, ErrDescriptionStoreRequired)
}

func TestStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("empty store", func(t *testing.T) {
		r, err := NewReporter(newStore(t))
		require.NoError(t, err)

		report, err := r.Status(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, report.TotalImages)
		assert.Equal(t, 0, report.TotalRecords)
		assert.Nil(t, report.LastIndexedAt)
		assert.NotNil(t, report.IndexedFiles)
		assert.Empty(t, report.IndexedFiles)
	})

	t.Run("counts by status", func(t *testing.T) {
		store := newStore(t)
		older := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		newer := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
		newest := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

		records := []*core.Record{
			{Identifier: "a.png", Status: core.RecordStatusIndexed, CreatedAt: older},
			{Identifier: "b.png", Status: core.RecordStatusIndexed, CreatedAt: newer},
			{Identifier: "broken.png", Status: core.RecordStatusFailed, CreatedAt: newest},
		}
		for _, rec := range records {
			require.NoError(t, store.Put(ctx, rec))
		}

		r, err := NewReporter(store)
		require.NoError(t, err)
		report, err := r.Status(ctx)
		require.NoError(t, err)

		assert.Equal(t, 2, report.TotalImages)
		assert.Equal(t, 1, report.TotalFailed)
		assert.Equal(t, 3, report.TotalRecords)
		assert.Equal(t, []string{"a.png", "b.png"}, report.IndexedFiles)
		require.NotNil(t, report.LastIndexedAt)
		assert.True(t, newer.Equal(*report.LastIndexedAt), "failed records don't move last indexed")
	})

	t.Run("store failure", func(t *testing.T) {
		store := newStore(t)
		r, err := NewReporter(store)
		require.NoError(t, err)
		require.NoError(t, store.Close())

		_, err = r.Status(ctx)
		assert.ErrorIs(t, err, storage.ErrStorageClosed)
	})
}
