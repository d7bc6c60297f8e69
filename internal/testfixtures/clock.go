package testfixtures

import (
	"sync"
	"time"
)

// Clock is a deterministic time source for tests. It only moves when a test
// moves it.
type Clock struct {
	mu      sync.RWMutex
	current time.Time
}

// NewClock returns a clock pinned to start, or to ReferenceTime when start
// is the zero value.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{current: start}
}

// Now reports the instant the clock currently points at.
func (c *Clock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// NowFunc adapts the clock to the func() time.Time shape the services take.
// A nil clock falls back to the real time.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Set pins the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.current = t
	c.mu.Unlock()
}

// Advance moves the clock forward by d and returns the new instant.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
	return c.current
}

// Current is a read-only alias for Now.
func (c *Clock) Current() time.Time {
	return c.Now()
}
