package reindex

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/glimpse/ai"
	"github.com/poiesic/glimpse/ai/mock"
	"github.com/poiesic/glimpse/core"
	"github.com/poiesic/glimpse/storage"
	"github.com/poiesic/glimpse/storage/badger"
	"github.com/poiesic/glimpse/storage/blob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reindexFixture struct {
	descriptions storage.DescriptionStore
	images       storage.ImageStore
	provider     *mock.MockProvider
}

func newReindexFixture(t *testing.T) *reindexFixture {
	t.Helper()

	descriptions, err := badger.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { descriptions.Close() })

	images, err := blob.NewFS(t.TempDir())
	require.NoError(t, err)

	return &reindexFixture{
		descriptions: descriptions,
		images:       images,
		provider:     mock.NewMockProvider().(*mock.MockProvider),
	}
}

// store saves image bytes and a record with the given status.
func (f *reindexFixture) store(t *testing.T, name, contents string, status core.RecordStatus, created time.Time) {
	t.Helper()
	ctx := context.Background()

	path, err := f.images.Put(ctx, name, []byte(contents), "image/png")
	require.NoError(t, err)

	rec := &core.Record{
		Identifier: name,
		SourcePath: path,
		Digest:     core.DigestContent([]byte(contents)),
		Status:     status,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
	if status == core.RecordStatusIndexed {
		rec.VisualSummary = "old summary"
		rec.TextContent = "old text"
	} else {
		rec.Message = "Failed to process image: temporary failure"
		rec.Retryable = true
	}
	require.NoError(t, f.descriptions.Put(ctx, rec))
}

func (f *reindexFixture) run(t *testing.T, config *Config) (Summary, string) {
	t.Helper()
	var buf bytes.Buffer
	r, err := NewReindexer(f.descriptions, f.images, f.provider, config, &buf)
	require.NoError(t, err)
	summary, err := r.Run(context.Background())
	require.NoError(t, err)
	return summary, buf.String()
}

func TestNewReindexer_Validation(t *testing.T) {
	f := newReindexFixture(t)

	_, err := NewReindexer(nil, f.images, f.provider, nil, nil)
	assert.ErrorIs(t, err, ErrDescriptionStoreRequired)

	_, err = NewReindexer(f.descriptions, nil, f.provider, nil, nil)
	assert.ErrorIs(t, err, ErrImageStoreRequired)

	_, err = NewReindexer(f.descriptions, f.images, nil, nil, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)

	r, err := NewReindexer(f.descriptions, f.images, f.provider, nil, nil)
	require.NoError(t, err)
	assert.True(t, r.config.OnlyFailed)
}

func TestReindexer_RetriesFailedRecords(t *testing.T) {
	f := newReindexFixture(t)
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	f.store(t, "a.png", "login error", core.RecordStatusFailed, created)
	f.store(t, "b.png", "dashboard", core.RecordStatusIndexed, created)
	f.store(t, "c.png", "settings page", core.RecordStatusFailed, created)

	config := DefaultConfig()
	config.BatchSize = 1
	config.ReportInterval = 1
	summary, output := f.run(t, config)

	assert.Equal(t, Summary{Processed: 2, Indexed: 2}, summary)
	assert.Equal(t, 2, f.provider.GetMockAnalyzer().CallCount(), "indexed records are left alone")
	assert.Contains(t, output, "Starting reindex of 2 records (batch size: 1)")
	assert.Contains(t, output, "2/2")
	assert.Contains(t, output, "Reindex complete")

	ctx := context.Background()
	a, err := f.descriptions.Get(ctx, "a.png")
	require.NoError(t, err)
	assert.Equal(t, core.RecordStatusIndexed, a.Status)
	assert.Equal(t, "login error", a.TextContent)
	assert.Equal(t, "mock-vision", a.Model)
	assert.Empty(t, a.Message)
	assert.False(t, a.Retryable)

	b, err := f.descriptions.Get(ctx, "b.png")
	require.NoError(t, err)
	assert.Equal(t, "old text", b.TextContent)
}

func TestReindexer_AllRecordsKeepsCreatedAt(t *testing.T) {
	f := newReindexFixture(t)
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	f.store(t, "a.png", "invoice total", core.RecordStatusIndexed, created)

	config := DefaultConfig()
	config.OnlyFailed = false
	summary, _ := f.run(t, config)
	assert.Equal(t, 1, summary.Indexed)

	rec, err := f.descriptions.Get(context.Background(), "a.png")
	require.NoError(t, err)
	assert.Equal(t, "invoice total", rec.TextContent)
	assert.True(t, created.Equal(rec.CreatedAt))
	assert.True(t, rec.UpdatedAt.After(created))
}

func TestReindexer_FailureKeepsGoodDescription(t *testing.T) {
	f := newReindexFixture(t)
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	f.store(t, "good.png", "receipt", core.RecordStatusIndexed, created)
	f.store(t, "bad.png", "broken", core.RecordStatusFailed, created)

	f.provider.GetMockAnalyzer().DescribeFunc = func(ctx context.Context, image []byte, mimeType string) (ai.Description, error) {
		return ai.Description{}, ai.NewTransientError("service unavailable", nil)
	}

	config := DefaultConfig()
	config.OnlyFailed = false
	summary, _ := f.run(t, config)
	assert.Equal(t, Summary{Processed: 2, Failed: 2}, summary)

	ctx := context.Background()
	good, err := f.descriptions.Get(ctx, "good.png")
	require.NoError(t, err)
	assert.Equal(t, core.RecordStatusIndexed, good.Status)
	assert.Equal(t, "old text", good.TextContent)

	bad, err := f.descriptions.Get(ctx, "bad.png")
	require.NoError(t, err)
	assert.Equal(t, core.RecordStatusFailed, bad.Status)
	assert.True(t, bad.Retryable)
	assert.Contains(t, bad.Message, "service unavailable")
}

func TestReindexer_PermanentFailure(t *testing.T) {
	f := newReindexFixture(t)
	f.store(t, "bad.png", "garbage", core.RecordStatusFailed, time.Now().UTC())

	f.provider.GetMockAnalyzer().DescribeFunc = func(ctx context.Context, image []byte, mimeType string) (ai.Description, error) {
		return ai.Description{}, ai.NewPermanentError("unsupported image", ai.ErrEmptyImage)
	}

	summary, _ := f.run(t, nil)
	assert.Equal(t, 1, summary.Failed)

	rec, err := f.descriptions.Get(context.Background(), "bad.png")
	require.NoError(t, err)
	assert.False(t, rec.Retryable)
}

func TestReindexer_MissingImage(t *testing.T) {
	f := newReindexFixture(t)
	ctx := context.Background()

	orphan := &core.Record{
		Identifier: "gone.png",
		Status:     core.RecordStatusFailed,
		Message:    "Failed to process image",
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, f.descriptions.Put(ctx, orphan))

	config := DefaultConfig()
	config.Prune = false
	summary, _ := f.run(t, config)
	assert.Equal(t, Summary{Processed: 1, Missing: 1}, summary)
	assert.Equal(t, 0, f.provider.GetMockAnalyzer().CallCount())

	rec, err := f.descriptions.Get(ctx, "gone.png")
	require.NoError(t, err)
	assert.Equal(t, "Failed to process image", rec.Message)
}

func TestReindexer_PrunesMissingImages(t *testing.T) {
	f := newReindexFixture(t)
	ctx := context.Background()
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	f.store(t, "kept.png", "dashboard", core.RecordStatusIndexed, created)
	require.NoError(t, f.descriptions.Put(ctx, &core.Record{
		Identifier:    "gone.png",
		Digest:        core.DigestContent([]byte("deleted bytes")),
		Status:        core.RecordStatusIndexed,
		VisualSummary: "a login form",
		TextContent:   "Invalid password",
		CreatedAt:     created,
		UpdatedAt:     created,
	}))

	config := DefaultConfig()
	config.OnlyFailed = false
	summary, output := f.run(t, config)

	assert.Equal(t, Summary{Processed: 2, Indexed: 1, Pruned: 1}, summary)
	assert.Contains(t, output, "1 pruned")

	_, err := f.descriptions.Get(ctx, "gone.png")
	assert.ErrorIs(t, err, storage.ErrNotFound, "records without images are not searchable")

	count, err := f.descriptions.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

// replacingStore rewrites a record right before the first Update, as if a
// new upload landed after the reindex snapshot was taken.
type replacingStore struct {
	storage.DescriptionStore
	replacement *core.Record
	once        sync.Once
}

func (s *replacingStore) Update(ctx context.Context, identifier string, fn storage.UpdateFunc) error {
	var err error
	s.once.Do(func() { err = s.DescriptionStore.Put(ctx, s.replacement) })
	if err != nil {
		return err
	}
	return s.DescriptionStore.Update(ctx, identifier, fn)
}

func TestReindexer_PruneSkipsNewerRecord(t *testing.T) {
	f := newReindexFixture(t)
	ctx := context.Background()
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, f.descriptions.Put(ctx, &core.Record{
		Identifier: "shot.png",
		Digest:     core.DigestContent([]byte("old")),
		Status:     core.RecordStatusFailed,
		CreatedAt:  created,
		UpdatedAt:  created,
	}))
	newer := &core.Record{
		Identifier:  "shot.png",
		Digest:      core.DigestContent([]byte("new")),
		Status:      core.RecordStatusIndexed,
		TextContent: "fresh upload",
		CreatedAt:   created.Add(time.Hour),
		UpdatedAt:   created.Add(time.Hour),
	}

	store := &replacingStore{DescriptionStore: f.descriptions, replacement: newer}
	r, err := NewReindexer(store, f.images, f.provider, nil, nil)
	require.NoError(t, err)
	summary, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, Summary{Processed: 1, Missing: 1}, summary)

	rec, err := f.descriptions.Get(ctx, "shot.png")
	require.NoError(t, err)
	assert.Equal(t, "fresh upload", rec.TextContent)
}

func TestReindexer_NothingToDo(t *testing.T) {
	f := newReindexFixture(t)
	summary, output := f.run(t, nil)
	assert.Equal(t, Summary{}, summary)
	assert.Contains(t, output, "No records to reindex")
}

func TestReindexer_Canceled(t *testing.T) {
	f := newReindexFixture(t)
	f.store(t, "a.png", "x", core.RecordStatusFailed, time.Now().UTC())

	r, err := NewReindexer(f.descriptions, f.images, f.provider, nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
