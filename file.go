package pathfiles

import (
	"context"
	"io"
	"iter"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/pathfiles/internal/fs"
	"github.com/hupe1980/pathfiles/internal/walk"
	"github.com/hupe1980/pathfiles/resource"
)

// File is a handle to one regular file found by a traversal.
//
// A File holds no descriptor. The file is opened only when Open or Stream
// is called, and every call yields an independent stream.
type File struct {
	w       *Walker
	index   uint64
	path    string
	name    string
	rel     string
	size    int64
	modTime time.Time
	mode    os.FileMode
}

func (w *Walker) newFile(e walk.Entry, index uint64) *File {
	name := e.Path
	if p := w.opts.pathPrefix; p != "" && strings.HasPrefix(name, p) {
		name = name[len(p):]
	}

	f := &File{
		w:     w,
		index: index,
		path:  e.Path,
		name:  name,
		rel:   e.Rel,
	}
	if e.Info != nil {
		f.size = e.Info.Size()
		f.modTime = e.Info.ModTime()
		f.mode = e.Info.Mode()
	}
	return f
}

// Name returns the absolute path with the configured prefix stripped.
// Concatenating the prefix and Name yields Path.
func (f *File) Name() string { return f.name }

// Path returns the absolute path of the file.
func (f *File) Path() string { return f.path }

// Rel returns the path relative to the traversal root, with forward slashes.
func (f *File) Rel() string { return f.rel }

// Size returns the size observed at traversal time.
func (f *File) Size() int64 { return f.size }

// ModTime returns the modification time observed at traversal time.
func (f *File) ModTime() time.Time { return f.modTime }

// Mode returns the file mode observed at traversal time.
func (f *File) Mode() os.FileMode { return f.mode }

// Index returns the zero-based discovery ordinal within the traversal.
func (f *File) Index() uint64 { return f.index }

// Open acquires a descriptor ticket and opens the file. It blocks while the
// budget is exhausted, until a ticket is released or ctx ends.
//
// The ticket is returned to the budget when the reader is closed. Close is
// idempotent. If the file cannot be opened, the ticket is released before
// an *OpenError is returned.
func (f *File) Open(ctx context.Context) (io.ReadCloser, error) {
	w := f.w
	start := time.Now()

	ticket, err := w.budget.Acquire(ctx)
	if err != nil {
		w.opts.metrics.RecordOpen(time.Since(start), err)
		return nil, &OpenError{Path: f.path, cause: err}
	}

	wait := time.Since(start)

	file, err := w.opts.fsys.Open(f.path)
	if err != nil {
		ticket.Release()
		w.opts.metrics.RecordOpen(wait, err)
		w.opts.logger.LogOpen(ctx, f.path, w.budget.InUse(), err)
		return nil, &OpenError{Path: f.path, cause: err}
	}

	w.opts.metrics.RecordOpen(wait, nil)
	w.opts.logger.LogOpen(ctx, f.path, w.budget.InUse(), nil)

	var r io.Reader = file
	if w.throttle != nil {
		r = resource.NewRateLimitedReader(ctx, file, w.throttle)
	}

	return &stream{
		ctx:    ctx,
		f:      f,
		file:   file,
		r:      r,
		ticket: ticket,
		start:  time.Now(),
	}, nil
}

// Stream returns the file content as a sequence of chunks. Every chunk is a
// freshly allocated slice of the configured chunk size; only the final
// chunk may be shorter.
//
// The descriptor is held from the first iteration until the content is
// exhausted, a read fails, or the loop is left early. On a read failure the
// stream is closed before the *ReadError is yielded.
func (f *File) Stream(ctx context.Context) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		rc, err := f.Open(ctx)
		if err != nil {
			yield(nil, err)
			return
		}
		defer rc.Close()

		size := f.w.opts.chunkSize
		for {
			buf := make([]byte, size)

			n, err := io.ReadFull(rc, buf)
			if n > 0 {
				if !yield(buf[:n], nil) {
					return
				}
			}

			switch err {
			case nil:
				continue
			case io.EOF, io.ErrUnexpectedEOF:
				return
			default:
				_ = rc.Close()
				yield(nil, err)
				return
			}
		}
	}
}

// stream is an open file holding one descriptor ticket.
type stream struct {
	ctx    context.Context
	f      *File
	file   fs.File
	r      io.Reader
	ticket *resource.Ticket
	start  time.Time

	read int64
	err  error

	once     sync.Once
	closeErr error
}

func (s *stream) Read(p []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	if err := s.ctx.Err(); err != nil {
		s.err = &ReadError{Path: s.f.path, Offset: s.read, cause: err}
		return 0, s.err
	}

	n, err := s.r.Read(p)
	s.read += int64(n)

	if err != nil && err != io.EOF {
		s.err = &ReadError{Path: s.f.path, Offset: s.read, cause: err}
		return n, s.err
	}
	return n, err
}

func (s *stream) Close() error {
	s.once.Do(func() {
		s.closeErr = s.file.Close()
		s.ticket.Release()
		s.f.w.opts.metrics.RecordStream(s.read, time.Since(s.start), s.err)
	})
	return s.closeErr
}
