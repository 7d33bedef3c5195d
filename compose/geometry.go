package compose

import (
	"errors"
	"math"

	"nameplate/model"
)

const (
	// DefaultExportFrameScale shrinks the exported frame and name relative to
	// their on-screen size.
	DefaultExportFrameScale = 0.78

	// MinimumFontSize is the smallest name font size, in bitmap pixels.
	MinimumFontSize = 24

	fontSizeRatio   = 0.26
	shadowBlurRatio = 0.14
)

var (
	ErrInvalidExportScale = errors.New("export frame scale must be in (0, 1]")
	ErrInvalidCanvas      = errors.New("canvas has no displayed width")
)

// Layout is the pixel-space geometry of one composition.
type Layout struct {
	Scale       float64    `json:"scale"`
	FramePixel  model.Rect `json:"framePixel"`
	ExportFrame model.Rect `json:"exportFrame"`
	FontSize    int        `json:"fontSize"`
	ShadowBlur  int        `json:"shadowBlur"`
	TextX       float64    `json:"textX"`
	TextY       float64    `json:"textY"`
}

// PixelScale is the ratio between a bitmap's pixel width and the CSS width it
// is displayed at. It applies to both axes.
func PixelScale(pixelWidth int, displayedWidth float64) (float64, error) {
	if displayedWidth <= 0 || pixelWidth <= 0 {
		return 0, ErrInvalidCanvas
	}
	return float64(pixelWidth) / displayedWidth, nil
}

// ToPixelSpace converts a viewport-relative CSS rectangle into bitmap pixels
// relative to the canvas origin.
func ToPixelSpace(r, canvas model.Rect, scale float64) model.Rect {
	return model.Rect{
		Left:   (r.Left - canvas.Left) * scale,
		Top:    (r.Top - canvas.Top) * scale,
		Width:  r.Width * scale,
		Height: r.Height * scale,
	}
}

// ScaleAboutCenter scales r by s keeping its center fixed.
func ScaleAboutCenter(r model.Rect, s float64) model.Rect {
	cx, cy := r.Center()
	w := r.Width * s
	h := r.Height * s
	return model.Rect{
		Left:   cx - w/2,
		Top:    cy - h/2,
		Width:  w,
		Height: h,
	}
}

// FontSize is the name font size for a frame of the given pixel height.
func FontSize(frameHeight float64) int {
	return max(MinimumFontSize, int(math.Floor(frameHeight*fontSizeRatio)))
}

// ShadowBlur is the drop shadow blur radius for a font size.
func ShadowBlur(fontSize int) int {
	return int(math.Floor(float64(fontSize) * shadowBlurRatio))
}

// ValidExportScale reports whether s is in (0, 1].
func ValidExportScale(s float64) bool {
	return s > 0 && s <= 1
}

// Plan computes the composition geometry for a page displayed at canvas and
// a frame overlay displayed at frame, both in CSS pixels.
func Plan(page *model.PageEntry, canvas, frame model.Rect, exportScale float64) (Layout, error) {
	if !ValidExportScale(exportScale) {
		return Layout{}, ErrInvalidExportScale
	}

	scale, err := PixelScale(page.PixelWidth, canvas.Width)
	if err != nil {
		return Layout{}, err
	}

	framePixel := ToPixelSpace(frame, canvas, scale)
	export := ScaleAboutCenter(framePixel, exportScale)
	size := FontSize(export.Height)
	tx, ty := export.Center()

	return Layout{
		Scale:       scale,
		FramePixel:  framePixel,
		ExportFrame: export,
		FontSize:    size,
		ShadowBlur:  ShadowBlur(size),
		TextX:       tx,
		TextY:       ty,
	}, nil
}
