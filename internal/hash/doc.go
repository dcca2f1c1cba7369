// Package hash provides hardware-accelerated checksums for file content.
//
// # CRC32-Castagnoli (CRC32C)
//
// Archive manifests, blob uploads and the upload ledger all identify
// content by its CRC32C. S3 accepts the same checksum natively
// (x-amz-checksum-crc32c), so a value computed while streaming a file can
// be verified by the server without a second pass.
//
// # Usage
//
// For one-shot checksums:
//
//	checksum := hash.CRC32C(data)
//
// For streaming checksums:
//
//	h := hash.NewCRC32C()
//	h.Write(chunk1)
//	h.Write(chunk2)
//	checksum := h.Sum32()
//
// To checksum while copying:
//
//	tr := hash.NewTeeReader(r)
//	io.Copy(dst, tr)
//	tr.Sum32(), tr.Size()
package hash
