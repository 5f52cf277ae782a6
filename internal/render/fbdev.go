package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	fb "github.com/gonutz/framebuffer"

	"github.com/rook-computer/pipanel/internal/logging"
)

// Console is the virtual terminal behind a framebuffer.
type Console interface {
	EnterGraphics() error
	RestoreText() error
}

// FBDevice shows the panel canvas on a Linux framebuffer, scaled up with
// nearest-neighbour sampling. It is meant for HDMI bench setups that have no
// OLED attached.
type FBDevice struct {
	mu      sync.Mutex
	dst     draw.Image
	closer  func()
	console Console
	logger  logging.Logger
	logical image.Rectangle
}

// OpenFBDevice opens path (usually /dev/fb0) for a logical canvas of
// width x height pixels. console may be nil.
func OpenFBDevice(path string, width, height int, console Console, logger logging.Logger) (*FBDevice, error) {
	dev, err := fb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open framebuffer %s: %w", path, err)
	}
	return newFBDevice(dev, dev.Close, width, height, console, logger), nil
}

func newFBDevice(dst draw.Image, closer func(), width, height int, console Console, logger logging.Logger) *FBDevice {
	if logger == nil {
		logger = logging.NoopLogger{}
	}
	if console != nil {
		if err := console.EnterGraphics(); err != nil {
			logger.Warnf("render", "console graphics mode: %v", err)
		}
	}
	return &FBDevice{
		dst:     dst,
		closer:  closer,
		console: console,
		logger:  logger,
		logical: image.Rect(0, 0, width, height),
	}
}

func (d *FBDevice) Bounds() image.Rectangle { return d.logical }

func (d *FBDevice) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	blitScaled(d.dst, src, r.Sub(r.Min).Add(sp))
	return nil
}

// Halt paints the background, gives the console back and closes the
// framebuffer. Calling it again is a no-op.
func (d *FBDevice) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closer == nil {
		return nil
	}
	draw.Draw(d.dst, d.dst.Bounds(), &image.Uniform{C: Background}, image.Point{}, draw.Src)
	if d.console != nil {
		if err := d.console.RestoreText(); err != nil {
			d.logger.Warnf("render", "console text mode: %v", err)
		}
	}
	d.closer()
	d.closer = nil
	return nil
}

// blitScaled nearest-neighbour scales the srcRect part of a 1-bit source
// onto all of dst, mapping lit pixels to Foreground.
func blitScaled(dst draw.Image, src image.Image, srcRect image.Rectangle) {
	bounds := dst.Bounds()
	dstWidth, dstHeight := bounds.Dx(), bounds.Dy()
	srcWidth, srcHeight := srcRect.Dx(), srcRect.Dy()
	if srcWidth == 0 || srcHeight == 0 {
		return
	}
	for y := 0; y < dstHeight; y++ {
		sy := srcRect.Min.Y + (y*srcHeight)/dstHeight
		for x := 0; x < dstWidth; x++ {
			sx := srcRect.Min.X + (x*srcWidth)/dstWidth
			c := Background
			if lit(src.At(sx, sy)) {
				c = Foreground
			}
			dst.Set(bounds.Min.X+x, bounds.Min.Y+y, c)
		}
	}
}

func lit(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r+g+b >= 3*0x8000
}
