package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealClock_After(t *testing.T) {
	c := RealClock{}
	before := time.Now()
	<-c.After(5 * time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(before), 5*time.Millisecond)
	assert.False(t, c.Now().Before(before))
}

func TestMockClock_AfterFiresImmediately(t *testing.T) {
	start := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	c := &MockClock{CurrentTime: start}

	select {
	case got := <-c.After(500 * time.Millisecond):
		assert.Equal(t, start.Add(500*time.Millisecond), got)
	default:
		t.Fatal("mock After channel should already have fired")
	}

	c.After(300 * time.Millisecond)
	assert.Equal(t, []time.Duration{500 * time.Millisecond, 300 * time.Millisecond}, c.Waits)
	assert.Equal(t, 800*time.Millisecond, c.Elapsed())
	assert.Equal(t, start.Add(800*time.Millisecond), c.Now())
}

func TestMockClock_OnAfterHook(t *testing.T) {
	var calls []int
	c := &MockClock{OnAfter: func(call int, d time.Duration) {
		calls = append(calls, call)
	}}
	c.After(time.Second)
	c.After(time.Second)
	require.Equal(t, []int{1, 2}, calls)
}

func TestMockClock_Advance(t *testing.T) {
	start := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	c := &MockClock{CurrentTime: start}
	c.Advance(time.Hour)
	assert.Equal(t, start.Add(time.Hour), c.Now())
	assert.Empty(t, c.Waits)
}
