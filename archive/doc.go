// Package archive writes the files of a traversal into a single tar
// stream, optionally compressed, followed by a manifest.
//
// Files are streamed one at a time, so writing an archive holds at most
// one descriptor of the walker's budget regardless of tree size.
//
// # Layout
//
//	<file entries ...>
//	MANIFEST.json    codec-encoded Manifest (name, size, CRC32C per file)
//
// The codec used for the manifest is stored in the PAX record
// "PATHFILES.codec" of the manifest entry.
//
// # Compression
//
//   - None: plain tar
//   - Zstd: klauspost/compress zstd stream (best ratio)
//   - LZ4:  pierrec/lz4 frame stream (fastest)
package archive
