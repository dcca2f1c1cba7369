package blobstore

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStoreLifecycle(t *testing.T, store Store) {
	t.Helper()
	ctx := t.Context()

	data := []byte("hello world, this is a test blob")

	// 1. Put
	require.NoError(t, store.Put(ctx, "dir/data-001.bin", bytes.NewReader(data), int64(len(data))))
	require.NoError(t, store.Put(ctx, "/data-002.bin", strings.NewReader("x"), -1))

	// 2. Stat
	size, err := store.Stat(ctx, "dir/data-001.bin")
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), size)

	_, err = store.Stat(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	// 3. Open
	rc, err := store.Open(ctx, "dir/data-001.bin")
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, data, got)

	// 4. List
	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"data-002.bin", "dir/data-001.bin"}, names)

	names, err = store.List(ctx, "dir/")
	require.NoError(t, err)
	assert.Equal(t, []string{"dir/data-001.bin"}, names)

	// 5. Overwrite
	require.NoError(t, store.Put(ctx, "data-002.bin", strings.NewReader("xyz"), 3))
	size, err = store.Stat(ctx, "data-002.bin")
	require.NoError(t, err)
	assert.Equal(t, int64(3), size)

	// 6. Delete
	require.NoError(t, store.Delete(ctx, "data-002.bin"))
	require.NoError(t, store.Delete(ctx, "data-002.bin"))
	_, err = store.Stat(ctx, "data-002.bin")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore_Lifecycle(t *testing.T) {
	tmpDir := t.TempDir()
	testStoreLifecycle(t, NewLocalStore(tmpDir))

	// Blobs are plain files below the root.
	_, err := os.Stat(filepath.Join(tmpDir, "dir", "data-001.bin"))
	require.NoError(t, err)
}

func TestMemoryStore_Lifecycle(t *testing.T) {
	store := NewMemoryStore()
	testStoreLifecycle(t, store)
	assert.Equal(t, 3, store.Puts())
}

func TestLocalStore_NameCannotEscape(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "store")
	store := NewLocalStore(root)

	require.NoError(t, store.Put(t.Context(), "../../escape.txt", strings.NewReader("x"), 1))

	_, err := os.Stat(filepath.Join(parent, "escape.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	_, err = os.Stat(filepath.Join(root, "escape.txt"))
	assert.NoError(t, err)
}

func TestLocalStore_SizeMismatch(t *testing.T) {
	store := NewLocalStore(t.TempDir())

	err := store.Put(t.Context(), "short", strings.NewReader("abc"), 10)
	assert.Error(t, err)

	_, err = store.Stat(t.Context(), "short")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore_Canceled(t *testing.T) {
	store := NewLocalStore(t.TempDir())

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err := store.Put(ctx, "c", strings.NewReader("abc"), 3)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocalStore_ListMissingRoot(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "nope"))

	names, err := store.List(t.Context(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestCleanName(t *testing.T) {
	tests := map[string]string{
		"a/b":       "a/b",
		"/a/b":      "a/b",
		"a//b/../c": "a/c",
		"../../x":   "x",
		`dir\file`:  "dir/file",
		"./a":       "a",
	}
	for in, want := range tests {
		got, err := CleanName(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "/", ".", ".."} {
		_, err := CleanName(in)
		assert.ErrorIs(t, err, ErrInvalidName, in)
	}
}
