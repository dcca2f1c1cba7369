package pipeline

import (
	"context"
	"iter"
	"slices"
	"sync"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/pathfiles"
)

// Func processes one file and returns the number of bytes it handled.
type Func func(ctx context.Context, f *pathfiles.File) (int64, error)

// Options configures ForEach.
type Options struct {
	// Workers bounds the number of concurrently running Funcs.
	// 0 starts one goroutine per file.
	Workers int

	// FailFast cancels remaining work on the first error. Otherwise every
	// error is recorded in the report and processing continues.
	FailFast bool

	// OnDone, if set, is called after each file. It must be safe for
	// concurrent use.
	OnDone func(f *pathfiles.File, n int64, err error)
}

// Report summarizes a ForEach run.
type Report struct {
	mu sync.Mutex

	// Processed holds the index of every file whose Func succeeded.
	Processed *roaring64.Bitmap
	// Failed holds the index of every file whose Func returned an error.
	Failed *roaring64.Bitmap
	// Bytes is the total reported by successful Funcs.
	Bytes int64
	// Errors maps a file index to its error.
	Errors map[uint64]error
}

func newReport() *Report {
	return &Report{
		Processed: roaring64.New(),
		Failed:    roaring64.New(),
		Errors:    make(map[uint64]error),
	}
}

func (r *Report) record(idx uint64, n int64, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err != nil {
		r.Failed.Add(idx)
		r.Errors[idx] = err
		return
	}
	r.Processed.Add(idx)
	r.Bytes += n
}

// Count returns the number of files handled, successful or not.
func (r *Report) Count() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.Processed.GetCardinality() + r.Failed.GetCardinality()
}

// Err combines all recorded errors in index order. Returns nil if every
// file succeeded.
func (r *Report) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := make([]uint64, 0, len(r.Errors))
	for i := range r.Errors {
		idx = append(idx, i)
	}
	slices.Sort(idx)

	var result *multierror.Error
	for _, i := range idx {
		result = multierror.Append(result, r.Errors[i])
	}
	return result.ErrorOrNil()
}

// ForEach runs fn for every file of files.
//
// The returned error is non-nil only if ctx ended or, with FailFast, fn
// failed. Per-file errors are always available in the report.
func ForEach(ctx context.Context, files iter.Seq[*pathfiles.File], fn Func, opts Options) (*Report, error) {
	report := newReport()

	g, gctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}

	for f := range files {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			n, err := fn(gctx, f)
			report.record(f.Index(), n, err)

			if opts.OnDone != nil {
				opts.OnDone(f, n, err)
			}
			if err != nil && opts.FailFast {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, err
	}
	return report, ctx.Err()
}
