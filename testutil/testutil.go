package testutil

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Bytes returns n pseudo-random bytes.
func (r *RNG) Bytes(n int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := make([]byte, n)
	_, _ = r.rand.Read(b)
	return b
}

// TreeSpec describes the shape of a generated directory tree.
type TreeSpec struct {
	// Depth is the number of directory levels below the root.
	Depth int
	// Dirs is the number of subdirectories per directory.
	Dirs int
	// Files is the number of regular files per directory.
	Files int
	// MinSize and MaxSize bound the file sizes in bytes (inclusive).
	MinSize int
	MaxSize int
}

// FileCount returns the number of files a tree with this shape contains.
func (s TreeSpec) FileCount() int {
	dirs, level := 1, 1
	for range s.Depth {
		level *= s.Dirs
		dirs += level
	}
	return dirs * s.Files
}

// Tree materializes a random tree under root and returns its files keyed
// by absolute path.
func (r *RNG) Tree(tb testing.TB, root string, spec TreeSpec) map[string][]byte {
	tb.Helper()

	if spec.MaxSize < spec.MinSize {
		spec.MaxSize = spec.MinSize
	}

	root, err := filepath.Abs(root)
	if err != nil {
		tb.Fatalf("abs %s: %v", root, err)
	}

	files := make(map[string][]byte, spec.FileCount())
	r.fill(tb, root, spec, spec.Depth, files)
	return files
}

func (r *RNG) fill(tb testing.TB, dir string, spec TreeSpec, depth int, files map[string][]byte) {
	tb.Helper()

	for i := range spec.Files {
		size := spec.MinSize
		if spec.MaxSize > spec.MinSize {
			size += r.Intn(spec.MaxSize - spec.MinSize + 1)
		}
		path := filepath.Join(dir, fmt.Sprintf("file-%04d.bin", i))
		data := r.Bytes(size)
		WriteFile(tb, path, data)
		files[path] = data
	}

	if depth == 0 {
		return
	}

	for i := range spec.Dirs {
		sub := filepath.Join(dir, fmt.Sprintf("dir-%03d", i))
		MkdirAll(tb, sub)
		r.fill(tb, sub, spec, depth-1, files)
	}
}

// WriteFile writes data to path, creating parent directories as needed.
func WriteFile(tb testing.TB, path string, data []byte) {
	tb.Helper()

	MkdirAll(tb, filepath.Dir(path))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		tb.Fatalf("write %s: %v", path, err)
	}
}

// MkdirAll creates dir and its parents.
func MkdirAll(tb testing.TB, dir string) {
	tb.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		tb.Fatalf("mkdir %s: %v", dir, err)
	}
}

// Symlink creates newname as a symbolic link to oldname, skipping the test
// where links are unsupported.
func Symlink(tb testing.TB, oldname, newname string) {
	tb.Helper()

	if err := os.Symlink(oldname, newname); err != nil {
		tb.Skipf("symlinks unsupported: %v", err)
	}
}
