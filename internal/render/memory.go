package render

import (
	"image"
	"strings"
	"sync"

	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// MemoryDevice keeps pushed frames in memory. The simulator serves them as
// ASCII art and tests inspect them.
type MemoryDevice struct {
	mu     sync.Mutex
	bounds image.Rectangle
	frame  *image1bit.VerticalLSB
	pushes int
	halted bool
}

func NewMemoryDevice(width, height int) *MemoryDevice {
	b := image.Rect(0, 0, width, height)
	return &MemoryDevice{bounds: b, frame: image1bit.NewVerticalLSB(b)}
}

func (m *MemoryDevice) Bounds() image.Rectangle { return m.bounds }

func (m *MemoryDevice) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r = r.Intersect(m.bounds)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m.frame.Set(x, y, src.At(sp.X+x-r.Min.X, sp.Y+y-r.Min.Y))
		}
	}
	m.pushes++
	m.halted = false
	return nil
}

func (m *MemoryDevice) Halt() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.frame.Pix)
	m.halted = true
	return nil
}

// Pushes counts Draw calls.
func (m *MemoryDevice) Pushes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pushes
}

func (m *MemoryDevice) Halted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.halted
}

// Lit reports whether any pixel of the last frame is on.
func (m *MemoryDevice) Lit() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.frame.Pix {
		if b != 0 {
			return true
		}
	}
	return false
}

// ASCII renders the last frame with '#' for lit and '.' for dark pixels.
func (m *MemoryDevice) ASCII() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sb strings.Builder
	for y := m.bounds.Min.Y; y < m.bounds.Max.Y; y++ {
		for x := m.bounds.Min.X; x < m.bounds.Max.X; x++ {
			if m.frame.BitAt(x, y) {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
