package model

import (
	"image"
	"math"
	"time"
)

// Rect is an axis-aligned rectangle. Depending on where it comes from it is
// either in CSS pixels (as reported by getBoundingClientRect) or in bitmap
// pixels.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Center returns the center point of the rectangle.
func (r Rect) Center() (x, y float64) {
	return r.Left + r.Width/2, r.Top + r.Height/2
}

func (r Rect) Right() float64  { return r.Left + r.Width }
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Grow grows the rectangle by pad on every side (shrinks it for negative pad).
func (r Rect) Grow(pad float64) Rect {
	return Rect{
		Left:   r.Left - pad,
		Top:    r.Top - pad,
		Width:  r.Width + 2*pad,
		Height: r.Height + 2*pad,
	}
}

// Pixels rounds the rectangle outwards to whole pixels.
func (r Rect) Pixels() image.Rectangle {
	return image.Rect(
		int(math.Floor(r.Left)),
		int(math.Floor(r.Top)),
		int(math.Ceil(r.Right())),
		int(math.Ceil(r.Bottom())),
	)
}

// Viewport describes the browser window the overlay is displayed in.
type Viewport struct {
	Width            float64 `json:"width"`
	Height           float64 `json:"height"`
	DevicePixelRatio float64 `json:"devicePixelRatio"`
}

// DPR returns the device pixel ratio, defaulting to 1.
func (v Viewport) DPR() float64 {
	if v.DevicePixelRatio <= 0 {
		return 1
	}
	return v.DevicePixelRatio
}

// ContainerMetrics is the on-screen state of the scrollable page container.
type ContainerMetrics struct {
	Top          float64 `json:"top"`
	Height       float64 `json:"height"`
	ScrollTop    float64 `json:"scrollTop"`
	ScrollHeight float64 `json:"scrollHeight"`
	ClientHeight float64 `json:"clientHeight"`
}

// PageMetrics is the on-screen geometry of one page item inside the container.
// Top is viewport relative; OffsetTop is relative to the container content.
type PageMetrics struct {
	PageNumber int     `json:"pageNumber"`
	Top        float64 `json:"top"`
	Height     float64 `json:"height"`
	OffsetTop  float64 `json:"offsetTop"`
}

// PageEntry is one rasterized document page.
type PageEntry struct {
	PageNumber    int
	Bitmap        image.Image
	PixelWidth    int
	PixelHeight   int
	ViewportScale float64
}

// ExportRecord describes one saved export.
type ExportRecord struct {
	Filename   string    `json:"filename"`
	Name       string    `json:"name"`
	PageNumber int       `json:"pageNumber"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Mode       string    `json:"mode"`
	Theme      string    `json:"theme,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
