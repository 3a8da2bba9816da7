package blob

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/glimpse/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFS_PutGetExists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "screenshots")
	store, err := NewFS(dir)
	require.NoError(t, err)
	ctx := context.Background()

	ok, err := store.Exists(ctx, "login.png")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.Get(ctx, "login.png")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	loc, err := store.Put(ctx, "login.png", []byte("png-bytes"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "login.png"), loc)

	ok, err = store.Exists(ctx, "login.png")
	require.NoError(t, err)
	assert.True(t, ok)

	data, err := store.Get(ctx, "login.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)

	t.Run("overwrite replaces bytes", func(t *testing.T) {
		_, err := store.Put(ctx, "login.png", []byte("new"), "image/png")
		require.NoError(t, err)
		data, err := os.ReadFile(filepath.Join(dir, "login.png"))
		require.NoError(t, err)
		assert.Equal(t, []byte("new"), data)
	})
}

func TestFS_RejectsEscapingNames(t *testing.T) {
	store, err := NewFS(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, name := range []string{"", "../evil.png", "a/b.png", ".hidden"} {
		t.Run(name, func(t *testing.T) {
			_, err := store.Put(ctx, name, []byte("x"), "")
			assert.Error(t, err)
		})
	}
}

func TestNewFS_RequiresDir(t *testing.T) {
	_, err := NewFS("")
	assert.Error(t, err)
}

func TestNewMinIO_RequiresEndpointAndBucket(t *testing.T) {
	_, err := NewMinIO(context.Background(), MinIOConfig{Bucket: "shots"})
	assert.Error(t, err)
	_, err = NewMinIO(context.Background(), MinIOConfig{Endpoint: "localhost:9000"})
	assert.Error(t, err)
}

func TestMinIOKey(t *testing.T) {
	s := &MinIO{bucket: "shots"}
	assert.Equal(t, "login.png", s.key("login.png"))

	s.prefix = "screenshots"
	assert.Equal(t, "screenshots/login.png", s.key("login.png"))
}
