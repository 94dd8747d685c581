package batch

import "sync/atomic"

// Clock stamps results with strictly increasing seq numbers.
type Clock interface {
	Next() int64
}

// LogicalClock is a monotonic logical clock. Results are ordered by seq,
// never by wall time, so replaying a run yields the same order.
//
// Thread-safety: LogicalClock is safe for concurrent use, though the
// runner's single writer is the only caller in practice.
type LogicalClock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0.
func NewClock() *LogicalClock {
	return &LogicalClock{}
}

// NewClockAt creates a clock that resumes after start, typically the
// store's LastSeq.
func NewClockAt(start int64) *LogicalClock {
	c := &LogicalClock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number.
func (c *LogicalClock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last issued sequence number.
func (c *LogicalClock) Current() int64 {
	return c.seq.Load()
}
