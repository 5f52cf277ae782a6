package screens

import (
	"github.com/rook-computer/pipanel/internal/render"
	"github.com/rook-computer/pipanel/internal/stats"
)

// Display puts the panel screens on a renderer. Every call redraws the
// whole frame and blocks until the device has it.
type Display struct {
	Renderer *render.Renderer
}

func (d Display) RenderStatus(ip, host string, snap stats.Snapshot) error {
	return d.Renderer.Show(StatusScreen{IP: ip, Host: host, Snapshot: snap})
}

// RenderCountdown clears the whole frame before drawing the countdown row.
func (d Display) RenderCountdown(seconds int) error {
	return d.Renderer.Show(CountdownScreen{Seconds: seconds})
}

func (d Display) Blank() error {
	return d.Renderer.Blank()
}
