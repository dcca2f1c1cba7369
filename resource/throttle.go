package resource

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// Throttle limits read throughput in bytes per second.
type Throttle struct {
	limiter *rate.Limiter
	burst   int
}

// NewThrottle creates a throttle allowing bytesPerSec bytes per second with a
// burst of one second worth of bytes. It returns nil (unlimited) if
// bytesPerSec <= 0.
func NewThrottle(bytesPerSec int64) *Throttle {
	if bytesPerSec <= 0 {
		return nil
	}
	burst := int(bytesPerSec)
	return &Throttle{
		limiter: rate.NewLimiter(rate.Limit(bytesPerSec), burst),
		burst:   burst,
	}
}

// WaitN blocks until n bytes may be read. Requests larger than the burst are
// split so they never fail with a burst error.
func (t *Throttle) WaitN(ctx context.Context, n int) error {
	if t == nil || n <= 0 {
		return nil
	}
	for n > 0 {
		step := min(n, t.burst)
		if err := t.limiter.WaitN(ctx, step); err != nil {
			return err
		}
		n -= step
	}
	return nil
}

// Limit returns the configured bytes per second (0 for a nil throttle).
func (t *Throttle) Limit() int64 {
	if t == nil {
		return 0
	}
	return int64(t.limiter.Limit())
}

// RateLimitedReader wraps an io.Reader with a Throttle.
type RateLimitedReader struct {
	r   io.Reader
	t   *Throttle
	ctx context.Context
}

// NewRateLimitedReader creates a new RateLimitedReader.
func NewRateLimitedReader(ctx context.Context, r io.Reader, t *Throttle) *RateLimitedReader {
	return &RateLimitedReader{
		r:   r,
		t:   t,
		ctx: ctx,
	}
}

// Read reads at most one burst worth of bytes and then waits for as many
// tokens as bytes were read. Short reads are charged only for what they
// returned.
func (r *RateLimitedReader) Read(p []byte) (int, error) {
	if r.t != nil && len(p) > r.t.burst {
		p = p[:r.t.burst]
	}

	n, err := r.r.Read(p)
	if werr := r.t.WaitN(r.ctx, n); werr != nil {
		return n, werr
	}
	return n, err
}
