// Package upload copies the files of a traversal into a blob store,
// skipping files a ledger has already recorded.
package upload

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/pathfiles"
	"github.com/hupe1980/pathfiles/blobstore"
	"github.com/hupe1980/pathfiles/internal/hash"
	"github.com/hupe1980/pathfiles/ledger"
	"github.com/hupe1980/pathfiles/pipeline"
)

// Uploader streams files into Store.
type Uploader struct {
	// Store receives the files.
	Store blobstore.Store

	// Ledger, if set, records uploads. Files whose ledger entry matches
	// their current size are not uploaded again.
	Ledger ledger.Ledger

	// Workers bounds concurrent uploads. 0 starts one goroutine per file;
	// the walker's descriptor budget still bounds open files.
	Workers int

	// Logger receives per-file events. Defaults to a no-op logger.
	Logger *pathfiles.Logger

	// OnFile, if set, is called after each file. It must be safe for
	// concurrent use.
	OnFile func(f *pathfiles.File, unchanged bool, err error)
}

// Result summarizes an upload run.
type Result struct {
	*pipeline.Report

	// Unchanged holds the index of every file skipped because the ledger
	// already recorded it.
	Unchanged *roaring64.Bitmap
}

// BlobName returns the blob name a file is uploaded under.
func BlobName(f *pathfiles.File) (string, error) {
	return blobstore.CleanName(f.Name())
}

// Run uploads every file of t. Per-file failures are recorded in the
// result; the returned error is non-nil only if ctx ended.
func (u *Uploader) Run(ctx context.Context, t *pathfiles.Traversal) (*Result, error) {
	if u.Store == nil {
		return nil, fmt.Errorf("upload: no store")
	}

	logger := u.Logger
	if logger == nil {
		logger = pathfiles.NoopLogger()
	}

	var mu sync.Mutex
	unchanged := roaring64.New()

	report, err := pipeline.ForEach(ctx, t.All(), func(ctx context.Context, f *pathfiles.File) (int64, error) {
		n, skipped, err := u.upload(ctx, f)

		switch {
		case err != nil:
			logger.ErrorContext(ctx, "upload failed", "path", f.Path(), "error", err)
		case skipped:
			mu.Lock()
			unchanged.Add(f.Index())
			mu.Unlock()
			logger.DebugContext(ctx, "unchanged", "path", f.Path())
		default:
			logger.DebugContext(ctx, "uploaded", "path", f.Path(), "bytes", n)
		}

		if u.OnFile != nil {
			u.OnFile(f, skipped, err)
		}
		return n, err
	}, pipeline.Options{Workers: u.Workers})

	return &Result{Report: report, Unchanged: unchanged}, err
}

func (u *Uploader) upload(ctx context.Context, f *pathfiles.File) (int64, bool, error) {
	name, err := BlobName(f)
	if err != nil {
		return 0, false, err
	}

	if u.Ledger != nil {
		e, ok, err := u.Ledger.Lookup(ctx, name)
		if err != nil {
			return 0, false, err
		}
		if ok && e.Matches(f.Size()) {
			return 0, true, nil
		}
	}

	rc, err := f.Open(ctx)
	if err != nil {
		return 0, false, err
	}
	defer rc.Close()

	tee := hash.NewTeeReader(rc)
	if err := u.Store.Put(ctx, name, tee, f.Size()); err != nil {
		return tee.Size(), false, fmt.Errorf("put %s: %w", name, err)
	}

	if u.Ledger != nil {
		err := u.Ledger.Record(ctx, ledger.Entry{
			Name:       name,
			Size:       tee.Size(),
			CRC32C:     tee.Sum32(),
			UploadedAt: time.Now().UTC(),
		})
		if err != nil {
			return tee.Size(), false, err
		}
	}

	return tee.Size(), false, nil
}
