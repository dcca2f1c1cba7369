package walk

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/hupe1980/pathfiles/internal/fs"
)

var (
	// ErrRootNotFound is returned when the traversal root does not exist.
	ErrRootNotFound = errors.New("root not found")

	// ErrNotADirectory is returned when the traversal root is not a directory.
	ErrNotADirectory = errors.New("root is not a directory")

	// ErrDanglingLink reports a symbolic link whose target cannot be resolved.
	ErrDanglingLink = errors.New("dangling symbolic link")
)

// EntryError reports an entry that was skipped.
type EntryError struct {
	Path string
	Op   string
	Err  error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("skip %s: %s: %v", e.Path, e.Op, e.Err)
}

func (e *EntryError) Unwrap() error { return e.Err }

// Entry describes one regular file.
type Entry struct {
	// Path is the absolute path of the file.
	Path string
	// Rel is Path relative to the walk root, using forward slashes.
	Rel string
	// Info is the metadata read at traversal time (of the link target for
	// followed links).
	Info os.FileInfo
}

// Config controls a walk.
type Config struct {
	// FS is the filesystem to walk. Defaults to fs.Default.
	FS fs.FileSystem

	// FollowSymlinks resolves symbolic links once.
	FollowSymlinks bool

	// SkipHidden skips files and directories whose name starts with a dot.
	SkipHidden bool

	// Ignore reports whether an absolute path should be skipped. Ignored
	// directories are not descended.
	Ignore func(path string, isDir bool) bool
}

// Root validates root and returns its cleaned absolute path.
func Root(fsys fs.FileSystem, root string) (string, error) {
	if fsys == nil {
		fsys = fs.Default
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrRootNotFound, root, err)
	}

	info, err := fsys.Stat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrRootNotFound, abs)
		}
		return "", fmt.Errorf("%w: %s: %w", ErrRootNotFound, abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotADirectory, abs)
	}

	return abs, nil
}

type frame struct {
	dir     string
	viaLink bool
}

// Walk lazily traverses the tree below root, which must be an absolute path
// of an existing directory (see Root).
func Walk(ctx context.Context, root string, cfg Config) iter.Seq2[Entry, error] {
	fsys := cfg.FS
	if fsys == nil {
		fsys = fs.Default
	}

	return func(yield func(Entry, error) bool) {
		stack := []frame{{dir: root}}

		for len(stack) > 0 {
			if err := ctx.Err(); err != nil {
				yield(Entry{}, err)
				return
			}

			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			entries, err := fsys.ReadDir(cur.dir)
			if err != nil {
				if !yield(Entry{}, &EntryError{Path: cur.dir, Op: "readdir", Err: err}) {
					return
				}
				continue
			}

			var subdirs []frame

			for _, d := range entries {
				name := d.Name()
				if cfg.SkipHidden && strings.HasPrefix(name, ".") {
					continue
				}

				path := filepath.Join(cur.dir, name)
				typ := d.Type()

				var (
					info os.FileInfo
					ierr error
				)

				switch {
				case typ.IsDir():
					if cfg.Ignore != nil && cfg.Ignore(path, true) {
						continue
					}
					subdirs = append(subdirs, frame{dir: path, viaLink: cur.viaLink})
					continue

				case typ&os.ModeSymlink != 0:
					if !cfg.FollowSymlinks || cur.viaLink {
						continue
					}
					info, ierr = fsys.Stat(path)
					if ierr != nil {
						if errors.Is(ierr, os.ErrNotExist) {
							ierr = ErrDanglingLink
						}
						if !yield(Entry{}, &EntryError{Path: path, Op: "stat", Err: ierr}) {
							return
						}
						continue
					}
					if info.IsDir() {
						if cfg.Ignore != nil && cfg.Ignore(path, true) {
							continue
						}
						subdirs = append(subdirs, frame{dir: path, viaLink: true})
						continue
					}

				case typ.IsRegular():
					info, ierr = d.Info()
					if ierr != nil {
						if !yield(Entry{}, &EntryError{Path: path, Op: "lstat", Err: ierr}) {
							return
						}
						continue
					}

				default:
					// Devices, pipes and sockets are not files to stream.
					continue
				}

				if !info.Mode().IsRegular() {
					continue
				}
				if cfg.Ignore != nil && cfg.Ignore(path, false) {
					continue
				}

				if !yield(Entry{Path: path, Rel: rel(root, path), Info: info}, nil) {
					return
				}
			}

			// Push in reverse so the first listed subdirectory is walked first.
			for i := len(subdirs) - 1; i >= 0; i-- {
				stack = append(stack, subdirs[i])
			}
		}
	}
}

func rel(root, path string) string {
	r, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(r)
}
