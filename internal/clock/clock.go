package clock

import (
	"sync"
	"time"
)

// Clock is the time source used by every pause in the panel.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

func (RealClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// MockClock never sleeps. After advances the mock time by d and returns a
// channel that has already fired. OnAfter, when set, runs inside After
// before the channel is returned; tests use it to inject events at a
// given pause.
type MockClock struct {
	mu          sync.Mutex
	CurrentTime time.Time
	Waits       []time.Duration
	OnAfter     func(call int, d time.Duration)
}

func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.CurrentTime
}

func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.CurrentTime = c.CurrentTime.Add(d)
	c.mu.Unlock()
}

func (c *MockClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.CurrentTime = c.CurrentTime.Add(d)
	c.Waits = append(c.Waits, d)
	call := len(c.Waits)
	now := c.CurrentTime
	hook := c.OnAfter
	c.mu.Unlock()

	if hook != nil {
		hook(call, d)
	}

	ch := make(chan time.Time, 1)
	ch <- now
	return ch
}

// Elapsed is the sum of all durations passed to After.
func (c *MockClock) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total time.Duration
	for _, d := range c.Waits {
		total += d
	}
	return total
}
