package indicator

import (
	"fmt"
	"sync"

	"github.com/rook-computer/pipanel/internal/logging"
)

// Color is an 8-bit per channel RGB value for the status pixel.
type Color struct {
	Red   uint8
	Green uint8
	Blue  uint8
}

var (
	Off    = Color{}
	Red    = Color{Red: 255}
	Green  = Color{Green: 255}
	Blue   = Color{Blue: 255}
	Yellow = Color{Red: 255, Green: 255}
	Orange = Color{Red: 255, Green: 150}
)

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.Red, c.Green, c.Blue)
}

// Indicator drives the single status pixel.
type Indicator interface {
	SetColor(c Color) error
}

type NoopIndicator struct{}

func (NoopIndicator) SetColor(Color) error { return nil }

// LogIndicator stands in for boards without a pixel; it logs color changes
// at debug level.
type LogIndicator struct {
	Logger logging.Logger

	mu   sync.Mutex
	last Color
}

func (l *LogIndicator) SetColor(c Color) error {
	l.mu.Lock()
	changed := c != l.last
	l.last = c
	l.mu.Unlock()
	if l.Logger != nil && changed {
		l.Logger.Debugf("indicator", "color %s", c)
	}
	return nil
}

// Last returns the most recently set color.
func (l *LogIndicator) Last() Color {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last
}
