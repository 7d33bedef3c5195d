package compose

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"nameplate/model"
)

var (
	// TextColor is the fill of the drawn name.
	TextColor color.Color = color.White
	// ShadowColor is rgba(0,0,0,0.45).
	ShadowColor color.Color = color.NRGBA{A: 115}
)

// DrawBackground draws img at the surface origin at its natural size.
func DrawBackground(dc *gg.Context, img image.Image) {
	b := img.Bounds()
	dc.DrawImage(img, -b.Min.X, -b.Min.Y)
}

// DrawStretched stretches img into r.
func DrawStretched(dc *gg.Context, img image.Image, r model.Rect) {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 || r.Empty() {
		return
	}

	dc.Push()
	defer dc.Pop()
	dc.Translate(r.Left, r.Top)
	dc.Scale(r.Width/float64(b.Dx()), r.Height/float64(b.Dy()))
	dc.DrawImage(img, -b.Min.X, -b.Min.Y)
}

// DrawName draws name centered on (cx, cy) at size pixels with a blurred
// drop shadow beneath it.
func DrawName(dc *gg.Context, fonts *FontManager, name string, cx, cy float64, size int) error {
	if name == "" {
		return nil
	}

	face, err := fonts.Face(float64(size))
	if err != nil {
		return err
	}
	defer face.Close()

	dc.SetFontFace(face)
	tw, _ := dc.MeasureString(name)

	blur := ShadowBlur(size)
	if layer := shadowBounds(cx, cy, tw, size, blur, dc.Width(), dc.Height()); !layer.Empty() {
		sc := gg.NewContext(layer.Dx(), layer.Dy())
		sc.SetFontFace(face)
		sc.SetColor(ShadowColor)
		sc.DrawStringAnchored(name, cx-float64(layer.Min.X), cy-float64(layer.Min.Y), 0.5, 0.5)

		var shadow image.Image = sc.Image()
		if blur > 0 {
			// imaging.Blur takes a gaussian sigma; CSS blur lengths are 2 sigma.
			shadow = imaging.Blur(shadow, float64(blur)/2)
		}
		dc.DrawImage(shadow, layer.Min.X, layer.Min.Y)
	}

	dc.SetColor(TextColor)
	dc.DrawStringAnchored(name, cx, cy, 0.5, 0.5)
	return nil
}

// shadowBounds is the region of a w x h surface the shadow of a text of
// width tw centered on (cx, cy) can reach, including room for the blur.
func shadowBounds(cx, cy, tw float64, size, blur, w, h int) image.Rectangle {
	pad := float64(3*blur + size)
	r := image.Rect(
		int(math.Floor(cx-tw/2-pad)),
		int(math.Floor(cy-float64(size)-pad)),
		int(math.Ceil(cx+tw/2+pad)),
		int(math.Ceil(cy+float64(size)+pad)),
	)
	return r.Intersect(image.Rect(0, 0, w, h))
}
