package storage_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/sitebook/sitebook-api/internal/config"
	"github.com/sitebook/sitebook-api/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalStorage_PutGetDelete(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	size, err := store.Put(ctx, "backups/snapshot-1.json", "application/json", strings.NewReader(`{"projects":[]}`))
	require.NoError(t, err)
	assert.EqualValues(t, 15, size)

	rc, err := store.Get(ctx, "backups/snapshot-1.json")
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, `{"projects":[]}`, string(body))

	// overwrite in place
	_, err = store.Put(ctx, "backups/snapshot-1.json", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "backups/snapshot-1.json"))
	_, err = store.Get(ctx, "backups/snapshot-1.json")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// deleting twice is not an error
	assert.NoError(t, store.Delete(ctx, "backups/snapshot-1.json"))
}

func TestLocalStorage_List(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, name := range []string{"backups/b.json", "backups/a.json", "other/c.json"} {
		_, err := store.Put(ctx, name, "application/json", strings.NewReader("{}"))
		require.NoError(t, err)
	}

	objects, err := store.List(ctx, "backups")
	require.NoError(t, err)
	require.Len(t, objects, 2)
	assert.Equal(t, "backups/a.json", objects[0].Name)
	assert.Equal(t, "backups/b.json", objects[1].Name)
	assert.EqualValues(t, 2, objects[0].Size)

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	missing, err := store.List(ctx, "nothing-here")
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestLocalStorage_RejectsEscapingNames(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, name := range []string{"", "../secret.json", "/etc/passwd", "a/../../b", `a\b`} {
		t.Run(name, func(t *testing.T) {
			_, err := store.Put(ctx, name, "application/json", strings.NewReader("{}"))
			assert.ErrorIs(t, err, storage.ErrInvalidName)
			_, err = store.Get(ctx, name)
			assert.ErrorIs(t, err, storage.ErrInvalidName)
		})
	}
}

func TestNewStorage(t *testing.T) {
	t.Run("local", func(t *testing.T) {
		s, err := storage.NewStorage(&config.StorageConfig{Mode: "local", LocalBasePath: t.TempDir()}, zap.NewNop())
		require.NoError(t, err)
		assert.IsType(t, &storage.LocalStorage{}, s)
	})

	t.Run("azure without connection string", func(t *testing.T) {
		_, err := storage.NewStorage(&config.StorageConfig{Mode: "azure"}, zap.NewNop())
		assert.Error(t, err)
	})

	t.Run("unknown mode", func(t *testing.T) {
		_, err := storage.NewStorage(&config.StorageConfig{Mode: "ftp"}, zap.NewNop())
		assert.Error(t, err)
	})
}
