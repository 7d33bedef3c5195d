package capture

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"nameplate/model"
)

// Crop cuts target, grown by padding, out of a capture of vp. Target and
// padding are in CSS pixels and are scaled per axis by the ratio between the
// captured size and the viewport size. The result always has the size of the
// padded target; parts of it outside the capture are transparent. An empty
// target keeps the whole image.
func Crop(img image.Image, vp model.Viewport, target model.Rect, padding float64) image.Image {
	b := img.Bounds()
	if target.Empty() || vp.Width <= 0 || vp.Height <= 0 {
		return imaging.Clone(img)
	}

	sx := float64(b.Dx()) / vp.Width
	sy := float64(b.Dy()) / vp.Height

	r := target.Grow(padding)
	px := model.Rect{
		Left:   r.Left * sx,
		Top:    r.Top * sy,
		Width:  r.Width * sx,
		Height: r.Height * sy,
	}.Pixels().Add(b.Min)

	if px.Empty() {
		return imaging.Clone(img)
	}
	dst := imaging.New(px.Dx(), px.Dy(), color.Transparent)
	if in := px.Intersect(b); !in.Empty() {
		dst = imaging.Paste(dst, imaging.Crop(img, in), in.Min.Sub(px.Min))
	}
	return dst
}
