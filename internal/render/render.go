// Package render draws text onto a 1-bit canvas and pushes it to a display
// device.
package render

import (
	"fmt"
	"image"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/rook-computer/pipanel/internal/logging"
)

// Device is a display that accepts whole frames. *ssd1306.Dev satisfies it.
type Device interface {
	Bounds() image.Rectangle
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
	Halt() error
}

// Screen draws one full frame.
type Screen interface {
	Draw(d Drawer)
}

// Drawer is what screens see of the renderer.
type Drawer interface {
	// Size returns the canvas size in pixels.
	Size() (width int, height int)
	Clear()
	// DrawText draws text with its line top at y; the baseline sits at
	// y plus the font ascent.
	DrawText(x, y int, text string)
	MeasureText(text string) int
}

// Renderer owns the framebuffer. The canvas is allocated once and cleared in
// place; nothing reaches the device until Flush.
type Renderer struct {
	mu     sync.Mutex
	dev    Device
	canvas *image1bit.VerticalLSB
	face   font.Face
	ascent int
	logger logging.Logger
}

func New(dev Device, face font.Face, logger logging.Logger) *Renderer {
	if logger == nil {
		logger = logging.NoopLogger{}
	}
	bounds := dev.Bounds()
	if bounds.Empty() {
		bounds = image.Rect(0, 0, CanvasWidth, CanvasHeight)
	}
	return &Renderer{
		dev:    dev,
		canvas: image1bit.NewVerticalLSB(bounds),
		face:   face,
		ascent: face.Metrics().Ascent.Ceil(),
		logger: logger,
	}
}

func (r *Renderer) Size() (int, int) {
	b := r.canvas.Bounds()
	return b.Dx(), b.Dy()
}

// Clear sets every pixel off. The device is not touched.
func (r *Renderer) Clear() {
	clear(r.canvas.Pix)
}

func (r *Renderer) DrawText(x, y int, text string) {
	d := &font.Drawer{
		Dst:  r.canvas,
		Src:  image.NewUniform(image1bit.On),
		Face: r.face,
		Dot:  fixed.P(x, y+r.ascent),
	}
	d.DrawString(text)
}

func (r *Renderer) MeasureText(text string) int {
	return font.MeasureString(r.face, text).Ceil()
}

// Flush pushes the canvas to the device and blocks until the write is done.
func (r *Renderer) Flush() error {
	if err := r.dev.Draw(r.canvas.Bounds(), r.canvas, image.Point{}); err != nil {
		return fmt.Errorf("flush display: %w", err)
	}
	return nil
}

// Show clears the canvas, lets s draw a frame and flushes it.
func (r *Renderer) Show(s Screen) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Clear()
	s.Draw(r)
	return r.Flush()
}

// Blank clears the canvas and flushes it.
func (r *Renderer) Blank() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Clear()
	return r.Flush()
}

func (r *Renderer) Halt() error {
	r.logger.Debugf("render", "halting display")
	return r.dev.Halt()
}
