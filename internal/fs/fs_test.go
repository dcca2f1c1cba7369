package fs

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLocalFS(t *testing.T) {
	tmp := t.TempDir()
	lfs := LocalFS{}

	fpath := filepath.Join(tmp, "subdir", "test.txt")
	writeFile(t, fpath, "hello")

	// Open + Read
	f, err := lfs.Open(fpath)
	require.NoError(t, err)
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	// Stat via File
	info, err := f.Stat()
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size())
	assert.NoError(t, f.Close())

	// Stat via FS
	info, err = lfs.Stat(fpath)
	require.NoError(t, err)
	assert.True(t, info.Mode().IsRegular())
	assert.Equal(t, int64(5), info.Size())

	// ReadDir
	entries, err := lfs.ReadDir(filepath.Dir(fpath))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "test.txt", entries[0].Name())

	// Missing file
	f, err = lfs.Open(filepath.Join(tmp, "missing"))
	assert.True(t, os.IsNotExist(err))
	assert.Nil(t, f)
}

func TestFaultyFS_OpenAccounting(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "a"), "a")
	writeFile(t, filepath.Join(tmp, "b"), "b")

	ffs := NewFaultyFS(nil)

	fa, err := ffs.Open(filepath.Join(tmp, "a"))
	require.NoError(t, err)
	fb, err := ffs.Open(filepath.Join(tmp, "b"))
	require.NoError(t, err)

	assert.Equal(t, int64(2), ffs.OpenCount())
	assert.Equal(t, int64(2), ffs.PeakOpen())

	require.NoError(t, fa.Close())
	assert.Equal(t, int64(1), ffs.OpenCount())

	// Closing twice is counted once
	_ = fa.Close()
	assert.Equal(t, int64(1), ffs.OpenCount())

	require.NoError(t, fb.Close())
	assert.Equal(t, int64(0), ffs.OpenCount())
	assert.Equal(t, int64(2), ffs.PeakOpen())
	assert.Equal(t, int64(2), ffs.Opened())
	assert.Equal(t, int64(2), ffs.Closed())
}

func TestFaultyFS_ReadFaults(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "partial.bin"), "0123456789")
	writeFile(t, filepath.Join(tmp, "broken.bin"), "0123456789")
	writeFile(t, filepath.Join(tmp, "ok.bin"), "0123456789")

	ffs := NewFaultyFS(LocalFS{})
	ffs.AddRule("partial.bin", Fault{FailAfterBytes: 4})
	ffs.AddRule("broken.bin", Fault{FailOnRead: true})

	f, err := ffs.Open(filepath.Join(tmp, "partial.bin"))
	require.NoError(t, err)
	data, err := io.ReadAll(f)
	assert.Error(t, err)
	assert.Equal(t, "0123", string(data))
	_ = f.Close()

	f, err = ffs.Open(filepath.Join(tmp, "broken.bin"))
	require.NoError(t, err)
	_, err = f.Read(make([]byte, 4))
	assert.Error(t, err)
	_ = f.Close()

	f, err = ffs.Open(filepath.Join(tmp, "ok.bin"))
	require.NoError(t, err)
	data, err = io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(data))
	_ = f.Close()
}

func TestFaultyFS_MetadataFaults(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "locked", "x"), "x")
	writeFile(t, filepath.Join(tmp, "gone.txt"), "g")
	writeFile(t, filepath.Join(tmp, "secret.txt"), "s")

	ffs := NewFaultyFS(nil)
	ffs.AddRule("locked", Fault{FailOnReadDir: true})
	ffs.AddRule("gone.txt", Fault{FailOnStat: true})
	ffs.AddRule("secret.txt", Fault{FailOnOpen: true})

	_, err := ffs.ReadDir(filepath.Join(tmp, "locked"))
	assert.Error(t, err)

	_, err = ffs.Stat(filepath.Join(tmp, "gone.txt"))
	assert.Error(t, err)

	_, err = ffs.Open(filepath.Join(tmp, "secret.txt"))
	assert.Error(t, err)
	assert.Equal(t, int64(0), ffs.OpenCount())

	entries, err := ffs.ReadDir(tmp)
	require.NoError(t, err)
	for _, e := range entries {
		_, infoErr := e.Info()
		if e.Name() == "gone.txt" {
			assert.Error(t, infoErr)
		} else {
			assert.NoError(t, infoErr)
		}
	}
}

func TestFaultyFS_CloseFault(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "c.txt"), "c")

	ffs := NewFaultyFS(nil)
	ffs.AddRule("c.txt", Fault{FailOnClose: true})

	f, err := ffs.Open(filepath.Join(tmp, "c.txt"))
	require.NoError(t, err)

	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "c", string(data))

	assert.Error(t, f.Close())
	assert.Equal(t, int64(0), ffs.OpenCount())
}
