package session

import "sync/atomic"

// Clock is the monotonic logical clock for journal ordering.
//
// Every session, deal, and play row is stamped with a strictly
// increasing seq number from this clock. This ensures:
// - Deterministic ordering (no wall-clock race conditions)
// - Replay produces identical order
// - Causal relationships are explicit
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
// However, the session's synchronous design means only one goroutine
// typically calls Next().
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
// Calls are linearizable - each call returns a unique, increasing value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}

// ResumeFrom positions the clock so the next Next() call returns seq+1.
// Used when reopening a journal to continue after the last recorded row.
func (c *Clock) ResumeFrom(seq int64) {
	c.seq.Store(seq)
}
