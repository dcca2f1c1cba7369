// Package pathfiles enumerates every regular file beneath a directory and
// exposes each one as a lazily opened byte stream.
//
// Traversal is lazy: directories are read as the caller ranges over the
// returned sequence, so memory stays bounded for trees of any size.
// Opening a stream takes a ticket from a descriptor budget
// (resource.Budget). When the budget is exhausted, further opens wait in
// FIFO order until a stream is closed. Processing many files concurrently
// therefore never fails with "too many open files".
//
// Entries that cannot be read (permission denied, removed mid-walk,
// dangling links) are skipped and reported, never fatal.
//
// # Quick Start
//
//	t, err := pathfiles.Enumerate(ctx, "/data")
//	if err != nil {
//		return err
//	}
//	for f := range t.All() {
//		for chunk, err := range f.Stream(ctx) {
//			if err != nil {
//				return err
//			}
//			h.Write(chunk)
//		}
//	}
//	if err := t.Err(); err != nil {
//		log.Printf("skipped: %v", err)
//	}
//
// # Concurrency
//
// File values are safe to use from multiple goroutines; each call to
// Open or Stream yields an independent stream. Share a budget between
// walkers with WithBudget to bound their combined descriptor use.
package pathfiles
