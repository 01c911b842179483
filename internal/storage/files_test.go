package storage_test

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-catalog/internal/storage"
)

func TestFileStore_SaveAndOpen(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir(), "http://localhost:8085/api/storage/files")
	require.NoError(t, err)

	n, err := store.Save("blob-1", "image/jpeg", strings.NewReader("jpeg bytes"))
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)

	file, contentType, err := store.Open("blob-1")
	require.NoError(t, err)
	defer file.Close()

	data, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(data))
	assert.Equal(t, "image/jpeg", contentType)
}

func TestFileStore_DefaultContentType(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir(), "http://localhost:8085/files")
	require.NoError(t, err)

	_, err = store.Save("blob-1", "", strings.NewReader("raw"))
	require.NoError(t, err)

	file, contentType, err := store.Open("blob-1")
	require.NoError(t, err)
	defer file.Close()
	assert.Equal(t, "application/octet-stream", contentType)
}

func TestFileStore_URL(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir(), "http://localhost:8085/api/storage/files/")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8085/api/storage/files/blob-1", store.URL("blob-1"))
}

func TestFileStore_Delete(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir(), "http://localhost:8085/files")
	require.NoError(t, err)

	_, err = store.Save("blob-1", "image/png", strings.NewReader("png bytes"))
	require.NoError(t, err)

	exists, err := store.Exists("blob-1")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.Delete("blob-1"))

	exists, err = store.Exists("blob-1")
	require.NoError(t, err)
	assert.False(t, exists)

	_, _, err = store.Open("blob-1")
	assert.ErrorIs(t, err, storage.ErrFileNotFound)

	// Deleting again is a no-op.
	assert.NoError(t, store.Delete("blob-1"))
}

func TestFileStore_RejectsPathTraversal(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir(), "http://localhost:8085/files")
	require.NoError(t, err)

	for _, id := range []string{"", "../escape", "a/b", ".."} {
		_, err := store.Save(id, "", strings.NewReader("x"))
		assert.ErrorIs(t, err, storage.ErrInvalidID, "id %q must be rejected", id)
	}
}
