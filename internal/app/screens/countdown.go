package screens

import (
	"fmt"
	"image"

	"github.com/rook-computer/pipanel/internal/render"
	"github.com/rook-computer/pipanel/internal/render/layout"
)

const countdownRow = 3

// CountdownScreen shows the remaining disable time on the bottom row. The
// rows above stay dark.
type CountdownScreen struct {
	Seconds int
}

func (s CountdownScreen) Text() string {
	return fmt.Sprintf("Pi-hole disabled for %d", s.Seconds)
}

func (s CountdownScreen) Draw(d render.Drawer) {
	d.DrawText(0, layout.Row(canvasRect(d), render.TopPadding, render.LineHeight, countdownRow), s.Text())
}

func canvasRect(d render.Drawer) image.Rectangle {
	w, h := d.Size()
	return image.Rect(0, 0, w, h)
}
