// Package blobstore provides the upload targets for streamed files.
//
// Store is the interface for writing and inspecting named blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: a directory on the local file system
//   - MemoryStore: in-memory, for tests
//   - s3.Store: Amazon S3 with multipart streaming uploads and CRC32C
//   - minio.Store: MinIO and other S3-compatible services
//
// # Names
//
// Blob names use forward slashes. Implementations map them to keys below
// their configured prefix; a name must not escape that prefix.
package blobstore
