package resource

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/pathfiles/internal/fdlimit"
	"golang.org/x/sync/semaphore"
)

// Budget limits the number of simultaneously open descriptors.
type Budget struct {
	capacity int64
	sem      *semaphore.Weighted

	inUse    atomic.Int64
	peak     atomic.Int64
	waiting  atomic.Int64
	acquired atomic.Int64
}

// NewBudget creates a budget admitting at most capacity tickets at once.
// If capacity <= 0, DefaultCapacity() is used.
func NewBudget(capacity int64) *Budget {
	if capacity <= 0 {
		capacity = DefaultCapacity()
	}
	return &Budget{
		capacity: capacity,
		sem:      semaphore.NewWeighted(capacity),
	}
}

// DefaultCapacity returns the soft descriptor limit of the process minus a
// reserve of max(10%, 8) descriptors.
func DefaultCapacity() int64 {
	return fdlimit.DefaultCapacity()
}

var (
	defaultOnce   sync.Once
	defaultBudget *Budget
)

// Default returns the process-wide budget. It is created on first use.
func Default() *Budget {
	defaultOnce.Do(func() {
		defaultBudget = NewBudget(DefaultCapacity())
	})
	return defaultBudget
}

// Acquire blocks until a ticket is available or ctx is done.
// On success the caller owns the ticket and must release it exactly once.
func (b *Budget) Acquire(ctx context.Context) (*Ticket, error) {
	if b == nil {
		return &Ticket{}, nil
	}

	b.waiting.Add(1)
	err := b.sem.Acquire(ctx, 1)
	b.waiting.Add(-1)
	if err != nil {
		return nil, err
	}

	b.admit()
	return &Ticket{b: b}, nil
}

// TryAcquire returns a ticket without blocking, or false if none is free.
func (b *Budget) TryAcquire() (*Ticket, bool) {
	if b == nil {
		return &Ticket{}, true
	}
	if !b.sem.TryAcquire(1) {
		return nil, false
	}

	b.admit()
	return &Ticket{b: b}, true
}

func (b *Budget) admit() {
	b.acquired.Add(1)
	n := b.inUse.Add(1)
	for {
		p := b.peak.Load()
		if n <= p || b.peak.CompareAndSwap(p, n) {
			return
		}
	}
}

func (b *Budget) release() {
	b.inUse.Add(-1)
	b.sem.Release(1)
}

// Capacity returns the maximum number of concurrently held tickets
// (0 for a nil budget, meaning unlimited).
func (b *Budget) Capacity() int64 {
	if b == nil {
		return 0
	}
	return b.capacity
}

// InUse returns the number of tickets currently held.
func (b *Budget) InUse() int64 {
	if b == nil {
		return 0
	}
	return b.inUse.Load()
}

// Peak returns the highest InUse value observed since creation.
func (b *Budget) Peak() int64 {
	if b == nil {
		return 0
	}
	return b.peak.Load()
}

// Waiting returns the number of callers currently suspended in Acquire.
func (b *Budget) Waiting() int64 {
	if b == nil {
		return 0
	}
	return b.waiting.Load()
}

// Acquired returns the total number of tickets granted since creation.
func (b *Budget) Acquired() int64 {
	if b == nil {
		return 0
	}
	return b.acquired.Load()
}

// Ticket is permission to hold one open descriptor.
type Ticket struct {
	b    *Budget
	once sync.Once
}

// Release returns the ticket to its budget. Only the first call has an
// effect; a nil ticket is ignored.
func (t *Ticket) Release() {
	if t == nil {
		return
	}
	t.once.Do(func() {
		if t.b != nil {
			t.b.release()
		}
	})
}
