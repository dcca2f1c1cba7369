package pathfiles

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	gitignore "github.com/monochromegane/go-gitignore"

	"github.com/hupe1980/pathfiles/internal/walk"
	"github.com/hupe1980/pathfiles/resource"
)

// Walker enumerates directory trees with a fixed configuration.
// A Walker is safe for concurrent use.
type Walker struct {
	opts     options
	budget   *resource.Budget
	throttle *resource.Throttle
}

// New creates a Walker.
//
// Without WithBudget or WithCapacity, all walkers share the process-wide
// resource.Default() budget.
func New(optFns ...Option) *Walker {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	budget := opts.budget
	if budget == nil {
		if opts.capacity > 0 {
			budget = resource.NewBudget(opts.capacity)
		} else {
			budget = resource.Default()
		}
	}

	return &Walker{
		opts:     opts,
		budget:   budget,
		throttle: resource.NewThrottle(opts.readLimit),
	}
}

// Budget returns the descriptor budget streams of this walker draw from.
func (w *Walker) Budget() *resource.Budget {
	return w.budget
}

// Enumerate validates root and returns a lazy traversal over its regular
// files. No directory below root is read until the traversal is ranged
// over.
//
// ctx governs the traversal for its whole life: it is checked before every
// directory is read while the traversal is ranged over, and a canceled ctx
// stops it with ctx.Err() reported by Aborted. Streams opened from the
// yielded files use the context passed to Open or Stream.
//
// Returns ErrRootNotFound or ErrNotADirectory synchronously.
func (w *Walker) Enumerate(ctx context.Context, root string) (*Traversal, error) {
	abs, err := walk.Root(w.opts.fsys, root)
	if err != nil {
		return nil, err
	}

	ignore, err := w.ignoreFunc(abs)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()

	return &Traversal{
		id:     id,
		root:   abs,
		ctx:    ctx,
		w:      w,
		logger: w.opts.logger.WithTraversal(id).WithRoot(abs),
		seq: walk.Walk(ctx, abs, walk.Config{
			FS:             w.opts.fsys,
			FollowSymlinks: w.opts.followSymlinks,
			SkipHidden:     w.opts.skipHidden,
			Ignore:         ignore,
		}),
	}, nil
}

// CollectAll enumerates root and materializes every file handle.
//
// Skipped entries do not fail the call; they are passed to the error
// handler and logged. An error is returned only if root is invalid or ctx
// ends before the traversal completes, together with the files found so
// far.
func (w *Walker) CollectAll(ctx context.Context, root string) ([]*File, error) {
	t, err := w.Enumerate(ctx, root)
	if err != nil {
		return nil, err
	}

	var files []*File
	for f := range t.All() {
		files = append(files, f)
	}

	return files, t.Aborted()
}

func (w *Walker) ignoreFunc(root string) (func(string, bool) bool, error) {
	var matchers []gitignore.IgnoreMatcher

	if w.opts.gitIgnorePath != "" {
		m, err := gitignore.NewGitIgnore(w.opts.gitIgnorePath, root)
		if err != nil {
			return nil, fmt.Errorf("load gitignore %s: %w", w.opts.gitIgnorePath, err)
		}
		matchers = append(matchers, m)
	}

	if len(w.opts.ignorePatterns) > 0 {
		r := strings.NewReader(strings.Join(w.opts.ignorePatterns, "\n"))
		matchers = append(matchers, gitignore.NewGitIgnoreFromReader(root, r))
	}

	if len(matchers) == 0 {
		return nil, nil
	}

	return func(path string, isDir bool) bool {
		for _, m := range matchers {
			if m.Match(path, isDir) {
				return true
			}
		}
		return false
	}, nil
}

// Enumerate is a convenience wrapper for New(optFns...).Enumerate(ctx, root).
func Enumerate(ctx context.Context, root string, optFns ...Option) (*Traversal, error) {
	return New(optFns...).Enumerate(ctx, root)
}

// CollectAll is a convenience wrapper for New(optFns...).CollectAll(ctx, root).
func CollectAll(ctx context.Context, root string, optFns ...Option) ([]*File, error) {
	return New(optFns...).CollectAll(ctx, root)
}

// Traversal is a single-pass, lazy sequence of file handles.
type Traversal struct {
	id     string
	root   string
	ctx    context.Context // from Enumerate; bounds the walk run by All
	w      *Walker
	logger *Logger
	seq    iter.Seq2[walk.Entry, error]

	consumed atomic.Bool
	count    atomic.Int64

	mu      sync.Mutex
	skipped []error
	aborted error
}

// ID returns the unique identifier of the traversal, used in log output.
func (t *Traversal) ID() string { return t.id }

// Root returns the absolute traversal root.
func (t *Traversal) Root() string { return t.root }

// Count returns the number of file handles produced so far.
func (t *Traversal) Count() int { return int(t.count.Load()) }

// All returns the sequence of file handles in depth-first order.
//
// The sequence may be ranged over once. Breaking out of the loop stops the
// traversal; no further directories are read.
func (t *Traversal) All() iter.Seq[*File] {
	return func(yield func(*File) bool) {
		if !t.consumed.CompareAndSwap(false, true) {
			t.abort(ErrTraversalConsumed)
			return
		}

		defer func() {
			t.logger.LogTraversal(t.ctx, t.Count(), len(t.Skipped()), t.Aborted())
		}()

		for e, err := range t.seq {
			if err != nil {
				var entryErr *EntryError
				if errors.As(err, &entryErr) {
					t.skip(err)
					continue
				}
				t.abort(err)
				return
			}

			f := t.w.newFile(e, uint64(t.count.Add(1)-1))
			t.w.opts.metrics.RecordEntry(f.size)

			if !yield(f) {
				return
			}
		}
	}
}

// Skipped returns the errors of all entries skipped so far.
func (t *Traversal) Skipped() []error {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]error, len(t.skipped))
	copy(out, t.skipped)
	return out
}

// Err returns every error observed by the traversal: skipped entries and
// the reason the traversal stopped early, if any. Returns nil for a clean
// traversal.
//
// The returned error is a *multierror.Error; use errors.Is and errors.As
// to inspect individual causes.
func (t *Traversal) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var result *multierror.Error
	result = multierror.Append(result, t.skipped...)
	if t.aborted != nil {
		result = multierror.Append(result, t.aborted)
	}
	return result.ErrorOrNil()
}

func (t *Traversal) skip(err error) {
	t.mu.Lock()
	t.skipped = append(t.skipped, err)
	t.mu.Unlock()

	t.w.opts.metrics.RecordSkip(err)
	t.logger.LogSkip(t.ctx, err)

	if t.w.opts.errorHandler != nil {
		t.w.opts.errorHandler(err)
	}
}

func (t *Traversal) abort(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.aborted == nil {
		t.aborted = err
	}
}

// Aborted returns the error that stopped the traversal early, or nil if it
// ran to completion (or has not run). Skipped entries are not included.
func (t *Traversal) Aborted() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.aborted
}
