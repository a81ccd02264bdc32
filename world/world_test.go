package world

import (
	"sync"
	"testing"
	"time"

	"github.com/ceyewan/genesis/clog"
)

// testClock 可推进的测试时钟
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestWorld(t *testing.T) (*World, *testClock) {
	t.Helper()
	clock := newTestClock()
	w := New(
		WithLogger(clog.Discard()),
		WithClock(clock.Now),
	)
	return w, clock
}
