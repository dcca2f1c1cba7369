package hash

import (
	"encoding/base64"
	"encoding/binary"
	"hash"
	"hash/crc32"
	"io"
)

// crc32cTable is pre-computed for CRC32-Castagnoli polynomial.
var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// CRC32C computes the CRC32-Castagnoli checksum of data.
func CRC32C(data []byte) uint32 {
	return crc32.Checksum(data, crc32cTable)
}

// NewCRC32C returns a new CRC32-Castagnoli hash.Hash32.
func NewCRC32C() hash.Hash32 {
	return crc32.New(crc32cTable)
}

// Base64 encodes a checksum the way S3 expects it in checksum headers
// (big-endian bytes, standard base64).
func Base64(sum uint32) string {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], sum)
	return base64.StdEncoding.EncodeToString(b[:])
}

// TeeReader checksums and counts everything read through it.
type TeeReader struct {
	r    io.Reader
	h    hash.Hash32
	size int64
}

// NewTeeReader wraps r.
func NewTeeReader(r io.Reader) *TeeReader {
	return &TeeReader{r: r, h: NewCRC32C()}
}

func (t *TeeReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if n > 0 {
		_, _ = t.h.Write(p[:n])
		t.size += int64(n)
	}
	return n, err
}

// Sum32 returns the CRC32C of the bytes read so far.
func (t *TeeReader) Sum32() uint32 { return t.h.Sum32() }

// Size returns the number of bytes read so far.
func (t *TeeReader) Size() int64 { return t.size }
