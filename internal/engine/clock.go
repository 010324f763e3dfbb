package engine

import "sync/atomic"

// Clock is the logical clock that stamps events.
//
// Every event a container emits takes the next value, so seq numbers are
// strictly increasing per container and ordering never depends on wall
// time. A transaction's children are stamped as they apply, and the
// wrapping Transaction event after them.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations),
// which lets several containers share one clock for a global order.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock whose next value is start+1.
// Used to continue a journaled container's sequence.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last issued sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
