package render

import (
	"fmt"
	"os"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"

	"github.com/rook-computer/pipanel/internal/logging"
)

// LoadFace returns the panel font. A TrueType file at path wins; without
// one the embedded Go Mono is used. Any failure falls back to the 7x13
// bitmap face so the display keeps working.
func LoadFace(path string, size float64, logger logging.Logger) font.Face {
	if logger == nil {
		logger = logging.NoopLogger{}
	}
	if size <= 0 {
		size = FontSize
	}

	if path != "" {
		face, err := loadTrueType(path, size)
		if err == nil {
			logger.Infof("render", "loaded font %s at %.0fpt", path, size)
			return face
		}
		logger.Errorf("render", "font %s: %v, using Go Mono", path, err)
	}

	fnt, err := opentype.Parse(gomono.TTF)
	if err != nil {
		logger.Errorf("render", "font parse failed, using basicfont: %v", err)
		return basicfont.Face7x13
	}
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{Size: size, DPI: FontDPI, Hinting: font.HintingFull})
	if err != nil {
		logger.Errorf("render", "font face create failed, using basicfont: %v", err)
		return basicfont.Face7x13
	}
	return face
}

func loadTrueType(path string, size float64) (font.Face, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	tt, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("truetype parse: %w", err)
	}
	return truetype.NewFace(tt, &truetype.Options{Size: size, DPI: FontDPI, Hinting: font.HintingFull}), nil
}
