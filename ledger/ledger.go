package ledger

import (
	"context"
	"sync"
	"time"
)

// Entry records one uploaded file.
type Entry struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	CRC32C     uint32    `json:"crc32c"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Matches reports whether e describes a file of the given size. The
// checksum is not compared: it is only known after reading the file.
func (e Entry) Matches(size int64) bool {
	return e.Size == size
}

// Ledger stores upload entries keyed by blob name.
// Implementations must be safe for concurrent use.
type Ledger interface {
	// Lookup returns the entry for name, if any.
	Lookup(ctx context.Context, name string) (Entry, bool, error)

	// Record stores e, replacing any entry with the same name.
	Record(ctx context.Context, e Entry) error

	// Close releases resources held by the ledger.
	Close() error
}

// Memory is an in-memory Ledger.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemory creates an empty in-memory ledger.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]Entry)}
}

// Lookup implements Ledger.
func (m *Memory) Lookup(_ context.Context, name string) (Entry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[name]
	return e, ok, nil
}

// Record implements Ledger.
func (m *Memory) Record(_ context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[e.Name] = e
	return nil
}

// Len returns the number of entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries)
}

// Close implements Ledger.
func (m *Memory) Close() error { return nil }
