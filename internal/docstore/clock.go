// ABOUTME: Strictly increasing clock used for server timestamps.
// ABOUTME: Two writes never share a timestamp, so ordering by time is total.

package docstore

import (
	"sync"
	"time"
)

type clock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

func newClock(now func() time.Time) *clock {
	if now == nil {
		now = time.Now
	}
	return &clock{now: now}
}

// Next returns the current time in UTC, nudged forward if it would not be
// after the previous reading.
func (c *clock) Next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().Round(0).UTC()
	if !t.After(c.last) {
		t = c.last.Add(time.Microsecond)
	}
	c.last = t
	return t
}
