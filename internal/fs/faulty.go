package fs

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

// Fault defines specific failure behavior.
type Fault struct {
	FailOnOpen     bool
	FailOnRead     bool  // Fail the first read.
	FailAfterBytes int64 // Fail reads after this many bytes were read FROM THIS FILE. 0 to disable.
	FailOnStat     bool
	FailOnReadDir  bool
	FailOnClose    bool
	Err            error
}

// FaultyFS is a FileSystem wrapper that can inject errors and counts open files.
type FaultyFS struct {
	FS      FileSystem
	mu      sync.Mutex
	rules   map[string]Fault // Path substring -> Fault
	Default Fault            // Fallback

	open   atomic.Int64
	peak   atomic.Int64
	opened atomic.Int64
	closed atomic.Int64
}

// NewFaultyFS creates a new FaultyFS wrapping the provided FS (or Default if nil).
func NewFaultyFS(fs FileSystem) *FaultyFS {
	if fs == nil {
		fs = Default
	}
	return &FaultyFS{
		FS:    fs,
		rules: make(map[string]Fault),
	}
}

// AddRule adds a fault injection rule for paths containing pattern.
func (f *FaultyFS) AddRule(pattern string, fault Fault) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules[pattern] = fault
}

// OpenCount returns the number of files currently open through f.
func (f *FaultyFS) OpenCount() int64 { return f.open.Load() }

// PeakOpen returns the highest number of simultaneously open files.
func (f *FaultyFS) PeakOpen() int64 { return f.peak.Load() }

// Opened returns the total number of successful opens.
func (f *FaultyFS) Opened() int64 { return f.opened.Load() }

// Closed returns the total number of closes.
func (f *FaultyFS) Closed() int64 { return f.closed.Load() }

func (f *FaultyFS) fault(name string) Fault {
	f.mu.Lock()
	defer f.mu.Unlock()

	fault := f.Default
	// Last winning match
	for pattern, rule := range f.rules {
		if strings.Contains(name, pattern) {
			fault = rule
		}
	}
	if fault.Err == nil {
		fault.Err = fmt.Errorf("injected fault error")
	}
	return fault
}

func (f *FaultyFS) Open(name string) (File, error) {
	fault := f.fault(name)
	if fault.FailOnOpen {
		return nil, &os.PathError{Op: "open", Path: name, Err: fault.Err}
	}

	file, err := f.FS.Open(name)
	if err != nil {
		return nil, err
	}

	f.opened.Add(1)
	n := f.open.Add(1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	return &faultyFile{File: file, fs: f, fault: fault}, nil
}

func (f *FaultyFS) Stat(name string) (os.FileInfo, error) {
	if fault := f.fault(name); fault.FailOnStat {
		return nil, &os.PathError{Op: "stat", Path: name, Err: fault.Err}
	}
	return f.FS.Stat(name)
}

func (f *FaultyFS) ReadDir(name string) ([]os.DirEntry, error) {
	if fault := f.fault(name); fault.FailOnReadDir {
		return nil, &os.PathError{Op: "readdirent", Path: name, Err: fault.Err}
	}
	entries, err := f.FS.ReadDir(name)
	if err != nil {
		return nil, err
	}

	// Entries whose path matches a FailOnStat rule report the fault from Info.
	out := make([]os.DirEntry, len(entries))
	for i, e := range entries {
		out[i] = &faultyDirEntry{DirEntry: e, fs: f, path: name + string(os.PathSeparator) + e.Name()}
	}
	return out, nil
}

type faultyDirEntry struct {
	os.DirEntry
	fs   *FaultyFS
	path string
}

func (e *faultyDirEntry) Info() (os.FileInfo, error) {
	if fault := e.fs.fault(e.path); fault.FailOnStat {
		return nil, &os.PathError{Op: "lstat", Path: e.path, Err: fault.Err}
	}
	return e.DirEntry.Info()
}

type faultyFile struct {
	File
	fs     *FaultyFS
	fault  Fault
	read   int64
	closed bool
}

func (ff *faultyFile) Read(p []byte) (int, error) {
	if ff.fault.FailOnRead {
		return 0, ff.fault.Err
	}
	if ff.fault.FailAfterBytes > 0 {
		remaining := ff.fault.FailAfterBytes - ff.read
		if remaining <= 0 {
			return 0, ff.fault.Err
		}
		if int64(len(p)) > remaining {
			p = p[:remaining]
		}
	}

	n, err := ff.File.Read(p)
	ff.read += int64(n)
	return n, err
}

func (ff *faultyFile) Close() error {
	if !ff.closed {
		ff.closed = true
		ff.fs.open.Add(-1)
		ff.fs.closed.Add(1)
	}

	err := ff.File.Close()
	if ff.fault.FailOnClose {
		return fmt.Errorf("injected close error: %w", ff.fault.Err)
	}
	return err
}
