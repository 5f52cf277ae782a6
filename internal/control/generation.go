package control

import "sync/atomic"

// Generation is the epoch counter shared by the event loop and the actions
// it dispatches. Only the event loop calls Next; actions compare their
// captured epoch against Current at every loop iteration.
type Generation struct {
	n atomic.Uint64
}

// Next bumps the counter and returns the new epoch.
func (g *Generation) Next() uint64 {
	return g.n.Add(1)
}

func (g *Generation) Current() uint64 {
	return g.n.Load()
}

// IsCurrent reports whether epoch still owns the indicator and display.
func (g *Generation) IsCurrent(epoch uint64) bool {
	return g.n.Load() == epoch
}
