package pathfiles

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    waitHistogram prometheus.Histogram
//	    bytesCounter  prometheus.Counter
//	}
//
//	func (p *PrometheusCollector) RecordOpen(wait time.Duration, err error) {
//	    p.waitHistogram.Observe(wait.Seconds())
//	}
type MetricsCollector interface {
	// RecordEntry is called for every file yielded by a traversal.
	RecordEntry(size int64)

	// RecordSkip is called for every entry skipped during traversal.
	RecordSkip(err error)

	// RecordOpen is called after each stream open attempt.
	// wait is the time spent waiting for a descriptor ticket.
	RecordOpen(wait time.Duration, err error)

	// RecordStream is called when a stream is closed.
	// bytes is the number of bytes read, err is the terminal read error if any.
	RecordStream(bytes int64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordEntry(int64)                        {}
func (NoopMetricsCollector) RecordSkip(error)                         {}
func (NoopMetricsCollector) RecordOpen(time.Duration, error)          {}
func (NoopMetricsCollector) RecordStream(int64, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	EntryCount      atomic.Int64
	EntryBytes      atomic.Int64
	SkipCount       atomic.Int64
	OpenCount       atomic.Int64
	OpenErrors      atomic.Int64
	OpenWaitNanos   atomic.Int64
	StreamCount     atomic.Int64
	StreamErrors    atomic.Int64
	StreamBytes     atomic.Int64
	StreamTotalNano atomic.Int64
}

// RecordEntry implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEntry(size int64) {
	b.EntryCount.Add(1)
	b.EntryBytes.Add(size)
}

// RecordSkip implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSkip(error) {
	b.SkipCount.Add(1)
}

// RecordOpen implements MetricsCollector.
func (b *BasicMetricsCollector) RecordOpen(wait time.Duration, err error) {
	b.OpenCount.Add(1)
	b.OpenWaitNanos.Add(wait.Nanoseconds())
	if err != nil {
		b.OpenErrors.Add(1)
	}
}

// RecordStream implements MetricsCollector.
func (b *BasicMetricsCollector) RecordStream(bytes int64, duration time.Duration, err error) {
	b.StreamCount.Add(1)
	b.StreamBytes.Add(bytes)
	b.StreamTotalNano.Add(duration.Nanoseconds())
	if err != nil {
		b.StreamErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		EntryCount:       b.EntryCount.Load(),
		EntryBytes:       b.EntryBytes.Load(),
		SkipCount:        b.SkipCount.Load(),
		OpenCount:        b.OpenCount.Load(),
		OpenErrors:       b.OpenErrors.Load(),
		OpenAvgWaitNanos: avg(b.OpenWaitNanos.Load(), b.OpenCount.Load()),
		StreamCount:      b.StreamCount.Load(),
		StreamErrors:     b.StreamErrors.Load(),
		StreamBytes:      b.StreamBytes.Load(),
		StreamAvgNanos:   avg(b.StreamTotalNano.Load(), b.StreamCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	EntryCount       int64
	EntryBytes       int64
	SkipCount        int64
	OpenCount        int64
	OpenErrors       int64
	OpenAvgWaitNanos int64
	StreamCount      int64
	StreamErrors     int64
	StreamBytes      int64
	StreamAvgNanos   int64
}
