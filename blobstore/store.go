package blobstore

import (
	"context"
	"errors"
	"io"
	"os"
	"path"
	"strings"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// ErrInvalidName is returned for names that are empty or escape the store.
var ErrInvalidName = errors.New("invalid blob name")

// Store is an abstraction for writing named blobs.
type Store interface {
	// Put streams r into the blob name, replacing any existing blob.
	// size is the expected length, or -1 if unknown.
	Put(ctx context.Context, name string, r io.Reader, size int64) error

	// Stat returns the size of the blob name.
	Stat(ctx context.Context, name string) (int64, error)

	// Open opens the blob name for reading.
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// Delete removes the blob name. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the sorted names of all blobs with the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// CleanName normalizes a blob name to a relative, slash-separated path.
func CleanName(name string) (string, error) {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimLeft(path.Clean("/"+name), "/")
	if name == "" {
		return "", ErrInvalidName
	}
	return name, nil
}
