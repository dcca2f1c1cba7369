// Package fs provides the read-side filesystem abstraction used by traversal
// and streaming, plus fault injection for tests.
//
// The package defines two key interfaces:
//
//   - [File]: an open file that can be read, stat'ed and closed
//   - [FileSystem]: open, stat, lstat and directory listing
//
// # Implementations
//
//   - [LocalFS]: Production implementation using standard os package
//   - [FaultyFS]: Test utility for fault injection and descriptor accounting
//
// # Usage
//
// Production code should use fs.Default (which is [LocalFS]):
//
//	f, err := fs.Default.Open(path)
//
// Tests can inject [FaultyFS] to simulate failures and to observe how many
// files are open at once:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("broken.bin", fs.Fault{FailAfterBytes: 1024})
//	// inject ffs into component under test
//	ffs.PeakOpen() // highest number of simultaneously open files
//
// # Design Notes
//
// This package intentionally does NOT include context.Context parameters.
// Local filesystem calls are not interruptible at the syscall level; waiting
// happens in the descriptor budget, which does take a context.
package fs
