package document

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/glimpse/core"
	"github.com/poiesic/glimpse/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "descriptions.json")
	s, err := openStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func indexed(id, text string) *core.Record {
	now := time.Now().UTC()
	return &core.Record{
		Identifier:  id,
		SourcePath:  id,
		TextContent: text,
		Status:      core.RecordStatusIndexed,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestOpen_CreatesEmptyDocument(t *testing.T) {
	s, path := newTestStore(t)
	ctx := context.Background()

	_, err := os.Stat(path)
	require.NoError(t, err, "document should exist after open")

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestPutGet(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	t.Run("missing record", func(t *testing.T) {
		_, err := s.Get(ctx, "nope.png")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("round trip", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, indexed("login.png", "Invalid password")))

		got, err := s.Get(ctx, "login.png")
		require.NoError(t, err)
		assert.Equal(t, "Invalid password", got.TextContent)
		assert.Equal(t, core.RecordStatusIndexed, got.Status)
	})

	t.Run("returned records are copies", func(t *testing.T) {
		got, err := s.Get(ctx, "login.png")
		require.NoError(t, err)
		got.TextContent = "mutated"

		again, err := s.Get(ctx, "login.png")
		require.NoError(t, err)
		assert.Equal(t, "Invalid password", again.TextContent)
	})

	t.Run("missing identifier", func(t *testing.T) {
		assert.ErrorIs(t, s.Put(ctx, &core.Record{}), storage.ErrInvalidRecord)
	})
}

func TestPut_LastWriteWins(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, indexed("shot.png", "first")))
	require.NoError(t, s.Put(ctx, indexed("shot.png", "second")))

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "one record per identifier")

	got, err := s.Get(ctx, "shot.png")
	require.NoError(t, err)
	assert.Equal(t, "second", got.TextContent)
}

func TestUpdate(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	t.Run("sees nil for new identifier", func(t *testing.T) {
		var seen *core.Record
		called := false
		err := s.Update(ctx, "new.png", func(existing *core.Record) (*core.Record, error) {
			called = true
			seen = existing
			return indexed("ignored-id", "hello"), nil
		})
		require.NoError(t, err)
		assert.True(t, called)
		assert.Nil(t, seen)

		got, err := s.Get(ctx, "new.png")
		require.NoError(t, err)
		assert.Equal(t, "new.png", got.Identifier, "identifier is forced to the update key")
	})

	t.Run("sees existing record", func(t *testing.T) {
		err := s.Update(ctx, "new.png", func(existing *core.Record) (*core.Record, error) {
			require.NotNil(t, existing)
			existing.TextContent += " world"
			return existing, nil
		})
		require.NoError(t, err)

		got, err := s.Get(ctx, "new.png")
		require.NoError(t, err)
		assert.Equal(t, "hello world", got.TextContent)
	})

	t.Run("nil result leaves store unchanged", func(t *testing.T) {
		err := s.Update(ctx, "other.png", func(existing *core.Record) (*core.Record, error) {
			return nil, nil
		})
		require.NoError(t, err)
		_, err = s.Get(ctx, "other.png")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("callback error is returned unchanged", func(t *testing.T) {
		boom := errors.New("boom")
		err := s.Update(ctx, "new.png", func(existing *core.Record) (*core.Record, error) {
			return nil, boom
		})
		assert.ErrorIs(t, err, boom)
	})
}

func TestUpdate_FailedWriteKeepsCommittedState(t *testing.T) {
	s, path := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, indexed("a.png", "alpha")))
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	s.writeFile = func(string, []byte, os.FileMode) error {
		return errors.New("disk full")
	}

	err = s.Put(ctx, indexed("b.png", "beta"))
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrStoreFailed)

	var se *storage.StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "write document", se.Op)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after, "document on disk is untouched")

	_, err = s.Get(ctx, "b.png")
	assert.ErrorIs(t, err, storage.ErrNotFound, "snapshot is untouched")
	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestReopen_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "descriptions.json")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, indexed("a.png", "alpha")))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "a.png")
	require.NoError(t, err)
	assert.Equal(t, "alpha", got.TextContent)
}

func TestDelete(t *testing.T) {
	s, path := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, indexed("a.png", "alpha")))
	require.NoError(t, s.Put(ctx, indexed("b.png", "beta")))

	require.NoError(t, s.Delete(ctx, "a.png"))
	_, err := s.Get(ctx, "a.png")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.Delete(ctx, "missing.png"), "absent records delete cleanly")

	t.Run("conditional removal through update", func(t *testing.T) {
		keep := func(existing *core.Record) (*core.Record, error) {
			if existing.TextContent != "stale" {
				return nil, nil
			}
			return nil, storage.ErrRemoveRecord
		}
		require.NoError(t, s.Update(ctx, "b.png", keep))
		_, err := s.Get(ctx, "b.png")
		require.NoError(t, err, "non-matching record is kept")
	})

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	count, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "deletion is persisted")
}

func TestOpen_ImportsLegacyDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "screenshot_descriptions.json")
	legacy := `{"/home/me/Screenshots/Login Page.png": "Login form showing Invalid password"}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(context.Background(), "Login_Page.png")
	require.NoError(t, err)
	assert.Equal(t, core.RecordStatusIndexed, got.Status)
	assert.Equal(t, "Login form showing Invalid password", got.TextContent)
	assert.Equal(t, "/home/me/Screenshots/Login Page.png", got.SourcePath)
}

func TestOpen_RejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "descriptions.json")
	require.NoError(t, os.WriteFile(path, []byte("[1,2,3"), 0o644))

	_, err := Open(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrStoreFailed)
}

func TestClosedStore(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "close is idempotent")

	ctx := context.Background()
	_, err := s.Get(ctx, "a.png")
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	assert.ErrorIs(t, s.Put(ctx, indexed("a.png", "x")), storage.ErrStorageClosed)
}

func TestConcurrentWritersAndReaders(t *testing.T) {
	s, path := newTestStore(t)
	ctx := context.Background()

	const writers = 24
	const readers = 8

	var wg sync.WaitGroup
	stop := make(chan struct{})
	readErrs := make(chan error, readers)

	for r := 0; r < readers; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				all, err := s.All(ctx)
				if err != nil {
					readErrs <- err
					return
				}
				for _, rec := range all {
					if rec.Identifier == "" || rec.Status != core.RecordStatusIndexed {
						readErrs <- fmt.Errorf("partial record observed: %+v", rec)
						return
					}
				}
			}
		}()
	}

	var writeWg sync.WaitGroup
	for i := 0; i < writers; i++ {
		writeWg.Add(1)
		go func(i int) {
			defer writeWg.Done()
			id := fmt.Sprintf("shot-%02d.png", i)
			assert.NoError(t, s.Put(ctx, indexed(id, "text")))
		}(i)
	}
	writeWg.Wait()
	close(stop)
	wg.Wait()
	close(readErrs)

	for err := range readErrs {
		t.Error(err)
	}

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, writers, count)

	// A fresh reader of the file agrees with the in-memory view.
	fresh, err := Open(path)
	require.NoError(t, err)
	defer fresh.Close()
	freshCount, err := fresh.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, writers, freshCount)
}

func TestTwoHandlesShareDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "descriptions.json")
	ctx := context.Background()

	a, err := openStore(path)
	require.NoError(t, err)
	defer a.Close()
	b, err := openStore(path)
	require.NoError(t, err)
	defer b.Close()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, a.Put(ctx, indexed(fmt.Sprintf("a-%d.png", i), "a")))
		}(i)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, b.Put(ctx, indexed(fmt.Sprintf("b-%d.png", i), "b")))
		}(i)
	}
	wg.Wait()

	for _, s := range []*Store{a, b} {
		count, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 20, count, "no write from either handle is lost")
	}
}
