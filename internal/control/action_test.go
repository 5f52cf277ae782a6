package control

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAction(t *testing.T) {
	tests := []struct {
		in      string
		want    Action
		wantErr bool
	}{
		{in: "disable:3s", want: Action{Kind: TimedDisable, Duration: 3 * time.Second}},
		{in: "disable:30m", want: Action{Kind: TimedDisable, Duration: 30 * time.Minute}},
		{in: " Disable:1800s ", want: Action{Kind: TimedDisable, Duration: 1800 * time.Second}},
		{in: "suspend", want: Action{Kind: IndefiniteSuspend}},
		{in: "enable", want: Action{Kind: Enable}},
		{in: "stats", want: Action{Kind: ShowStats}},
		{in: "disable", wantErr: true},
		{in: "disable:", wantErr: true},
		{in: "disable:500ms", wantErr: true},
		{in: "disable:1.5s", wantErr: true},
		{in: "disable:-3s", wantErr: true},
		{in: "enable:3s", wantErr: true},
		{in: "reboot", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAction(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAction_String(t *testing.T) {
	assert.Equal(t, "disable:1800s", Action{Kind: TimedDisable, Duration: 30 * time.Minute}.String())
	assert.Equal(t, "suspend", Action{Kind: IndefiniteSuspend}.String())
	assert.Equal(t, "stats", Action{Kind: ShowStats}.String())

	a, err := ParseAction(Action{Kind: TimedDisable, Duration: 3 * time.Second}.String())
	require.NoError(t, err)
	assert.Equal(t, 3, a.Seconds())
}

func TestGeneration(t *testing.T) {
	var g Generation
	assert.Equal(t, uint64(0), g.Current())

	first := g.Next()
	assert.True(t, g.IsCurrent(first))

	second := g.Next()
	assert.False(t, g.IsCurrent(first))
	assert.True(t, g.IsCurrent(second))
	assert.Greater(t, second, first)
}

func TestGeneration_ConcurrentReaders(t *testing.T) {
	var g Generation
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				_ = g.Current()
			}
		}()
	}
	for i := 0; i < 1000; i++ {
		g.Next()
	}
	wg.Wait()
	assert.Equal(t, uint64(1000), g.Current())
}
