// Package clock provides wall-clock injection for stamping records.
//
// Production code uses System. Tests use Fixed, which can be advanced so a
// scenario runs with reproducible dates and timestamps.
package clock

import (
	"sync"
	"time"
)

// Clock returns the current instant.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock.
//
// Thread-safety: System is stateless and safe for concurrent use.
type System struct{}

// Now returns time.Now().
func (System) Now() time.Time {
	return time.Now()
}

// Fixed is a manually driven clock for tests.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type Fixed struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixed creates a clock frozen at t.
func NewFixed(t time.Time) *Fixed {
	return &Fixed{now: t}
}

// Date creates a clock frozen at midnight UTC on the given day.
func Date(year int, month time.Month, day int) *Fixed {
	return NewFixed(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// Now returns the frozen instant.
func (c *Fixed) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Fixed) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set moves the clock to t.
func (c *Fixed) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
