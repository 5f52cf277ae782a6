package render

import "image/color"

// Global render configuration for the panel's text layout.
var (
	// Colors used when a 1-bit frame is shown on a color framebuffer.
	Foreground = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	Background = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xFF}

	// Default canvas size, a 128x32 OLED.
	CanvasWidth  = 128
	CanvasHeight = 32

	// Text rows are LineHeight apart, starting at TopPadding. The negative
	// padding pulls the first row's ascender tight against the top edge.
	LineHeight = 8
	TopPadding = -2

	FontSize = 8.0
	FontDPI  = 72.0
)
