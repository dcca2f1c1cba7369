// Package walk implements lazy, single-pass directory traversal.
//
// [Walk] returns an iter.Seq2 that reads one directory at a time, only when
// the consumer pulls past the entries already listed. Memory is bounded by
// the pending-directory stack plus the listing of the directory being
// drained, not by the size of the tree.
//
// Every regular file produces exactly one (Entry, nil) pair. Entries that
// cannot be inspected produce (Entry{}, *EntryError) pairs and the walk
// continues. Context cancellation produces a final (Entry{}, ctx.Err())
// pair.
//
// # Symbolic links
//
// A link is resolved with Stat. Links to regular files are yielded under the
// link's own path; links to directories are descended. Links found below a
// directory that was itself reached through a link are not followed again,
// which bounds link cycles without tracking visited inodes. Dangling links
// are reported as ErrDanglingLink.
//
// # Order
//
// Within a directory, files are yielded before subdirectories are descended.
// No ordering is guaranteed to callers.
package walk
