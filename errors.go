package pathfiles

import (
	"errors"
	"fmt"

	"github.com/hupe1980/pathfiles/internal/walk"
)

var (
	// ErrRootNotFound is returned synchronously when the traversal root does
	// not exist.
	ErrRootNotFound = walk.ErrRootNotFound

	// ErrNotADirectory is returned synchronously when the traversal root is
	// not a directory.
	ErrNotADirectory = walk.ErrNotADirectory

	// ErrDanglingLink is reported for symbolic links whose target is missing.
	ErrDanglingLink = walk.ErrDanglingLink

	// ErrTraversalConsumed is reported when a single-pass traversal is
	// ranged over a second time.
	ErrTraversalConsumed = errors.New("traversal already consumed")
)

// EntryError reports an entry that was skipped during traversal
// (permission denied, removed mid-walk, dangling link).
//
// EntryErrors never terminate a traversal; they are collected by
// Traversal.Err and passed to the error handler.
type EntryError = walk.EntryError

// OpenError indicates a file could not be opened when its stream was
// requested. The descriptor ticket has already been released.
//
// The original underlying error can be accessed via errors.Unwrap.
type OpenError struct {
	Path  string
	cause error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open %s: %v", e.Path, e.cause)
}

func (e *OpenError) Unwrap() error { return e.cause }

// ReadError indicates an I/O failure in the middle of a stream. The stream
// is terminated and its resources released before the error is surfaced.
//
// The original underlying error can be accessed via errors.Unwrap.
type ReadError struct {
	Path   string
	Offset int64
	cause  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s at offset %d: %v", e.Path, e.Offset, e.cause)
}

func (e *ReadError) Unwrap() error { return e.cause }
