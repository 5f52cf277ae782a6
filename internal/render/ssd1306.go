package render

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/devices/v3/ssd1306"
)

// SSD1306Opts describes the OLED module. Sequential selects the COM pin
// layout used by 128x32 panels.
type SSD1306Opts struct {
	Width      int
	Height     int
	Sequential bool
	Rotated    bool
}

// OpenSSD1306 initializes an SSD1306 OLED on an already opened I2C bus.
func OpenSSD1306(bus i2c.Bus, opts SSD1306Opts) (*ssd1306.Dev, error) {
	if opts.Width == 0 {
		opts.Width = CanvasWidth
	}
	if opts.Height == 0 {
		opts.Height = CanvasHeight
	}
	dev, err := ssd1306.NewI2C(bus, &ssd1306.Opts{
		W:          opts.Width,
		H:          opts.Height,
		Rotated:    opts.Rotated,
		Sequential: opts.Sequential,
	})
	if err != nil {
		return nil, fmt.Errorf("ssd1306: %w", err)
	}
	return dev, nil
}

var _ Device = (*ssd1306.Dev)(nil)
