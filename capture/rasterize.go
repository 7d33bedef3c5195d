package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/charmbracelet/log"
	"github.com/fogleman/gg"

	"nameplate/compose"
	"nameplate/model"
)

// Background is the fill behind the page canvas.
var Background color.Color = color.RGBA{R: 0x1a, G: 0x1a, B: 0x2e, A: 0xff}

// Rasterizer redraws the displayed scene on the server: the centered page
// at its canvas rect, the frame at its displayed rect and the name centered
// in it.
type Rasterizer struct {
	fonts  *compose.FontManager
	logger *log.Logger
}

// NewRasterizer returns the DOM rasterization strategy drawing the name with
// fonts. A rasterizer without fonts is never available.
func NewRasterizer(fonts *compose.FontManager, logger *log.Logger) *Rasterizer {
	if logger == nil {
		logger = log.Default()
	}
	return &Rasterizer{fonts: fonts, logger: logger.WithPrefix("capture")}
}

func (r *Rasterizer) Kind() Kind { return DOMRasterize }

func (r *Rasterizer) Available(context.Context) bool {
	if r.fonts == nil {
		r.logger.Error("rasterizer has no fonts")
		return false
	}
	return true
}

func (r *Rasterizer) Capture(ctx context.Context, req Request) (image.Image, error) {
	if r.fonts == nil {
		return nil, fmt.Errorf("%w: rasterizer has no fonts", ErrStrategyUnavailable)
	}
	if req.Scene.Page == nil || req.Scene.Page.Bitmap == nil {
		return nil, errors.New("rasterize: no page displayed")
	}

	snap := req.Snapshot
	dpr := snap.Viewport.DPR()
	w := int(math.Ceil(snap.Viewport.Width * dpr))
	h := int(math.Ceil(snap.Viewport.Height * dpr))

	dc := gg.NewContext(w, h)
	dc.SetColor(Background)
	dc.Clear()

	compose.DrawStretched(dc, req.Scene.Page.Bitmap, scaleRect(snap.CanvasRect, dpr))

	frameRect := scaleRect(snap.FrameRect, dpr)
	if req.Scene.Frame != nil && !frameRect.Empty() {
		frame, err := req.Scene.Frame.Frame(ctx)
		if err != nil {
			r.logger.Warn("frame image unavailable", "err", err)
		} else {
			compose.DrawStretched(dc, frame, frameRect)
		}

		cx, cy := frameRect.Center()
		if err := compose.DrawName(dc, r.fonts, req.Scene.Name, cx, cy, compose.FontSize(frameRect.Height)); err != nil {
			return nil, fmt.Errorf("rasterize name: %w", err)
		}
	}

	return dc.Image(), nil
}

func scaleRect(r model.Rect, s float64) model.Rect {
	return model.Rect{Left: r.Left * s, Top: r.Top * s, Width: r.Width * s, Height: r.Height * s}
}
