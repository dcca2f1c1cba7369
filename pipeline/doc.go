// Package pipeline processes the files of a traversal concurrently.
//
// ForEach starts work as files are discovered. The descriptor budget of
// the walker bounds how many files are open at once, so even one
// goroutine per file (Workers == 0) is safe; a positive Workers value
// additionally bounds the number of goroutines and applies backpressure
// to the traversal.
//
// Results are keyed by File.Index in roaring bitmaps, which stay compact
// for traversals of millions of files.
package pipeline
