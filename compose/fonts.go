package compose

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontManager loads and caches the parsed display font.
type FontManager struct {
	parsed *opentype.Font
}

// NewFontManager loads the font at path. If path is empty or unreadable, the
// embedded Go Regular font is used.
func NewFontManager(path string, logger *log.Logger) (*FontManager, error) {
	data := goregular.TTF

	if path != "" {
		if custom, err := os.ReadFile(path); err != nil {
			if logger != nil {
				logger.Warn("display font unavailable, using default", "path", path, "err", err)
			}
		} else {
			data = custom
		}
	}

	return NewFontManagerFromBytes(data)
}

// NewFontManagerFromBytes parses raw TTF/OTF data, defaulting to Go Regular.
func NewFontManagerFromBytes(data []byte) (*FontManager, error) {
	if len(data) == 0 {
		data = goregular.TTF
	}

	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}

	return &FontManager{parsed: parsed}, nil
}

// Face returns a new face at size pixels. Faces are not safe for concurrent
// use, so every drawing call gets its own.
func (fm *FontManager) Face(size float64) (font.Face, error) {
	face, err := opentype.NewFace(fm.parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face at %.1fpx: %w", size, err)
	}
	return face, nil
}
