// Package resource implements admission control for open file descriptors
// and optional read throttling.
//
// # Budget
//
// A [Budget] is a counting semaphore over descriptor tickets. Every stream
// that holds an open file holds exactly one [Ticket]:
//
//	b := resource.NewBudget(256)
//
//	t, err := b.Acquire(ctx) // suspends while InUse() == Capacity()
//	if err != nil {
//	    return err // ctx cancelled while waiting
//	}
//	defer t.Release()
//
// Waiters are admitted in FIFO order, so a request that has been queued since
// early in a large batch is never overtaken by later arrivals.
//
// [Default] returns a process-wide budget sized from the soft RLIMIT_NOFILE
// minus a reserve (see [DefaultCapacity]).
//
// # Throttle
//
// A [Throttle] is a token bucket over bytes per second. [NewRateLimitedReader]
// wraps a reader so every Read waits for enough tokens first.
//
// # Nil Safety
//
// A nil *Budget admits everything and a nil *Throttle never waits. This allows
// optional limiting without nil checks at call sites.
//
// # Deadlock hazard
//
// A caller that needs more tickets at once than Capacity() to make progress
// will suspend forever. The budget cannot detect this; size it for the
// caller's real concurrency.
package resource
