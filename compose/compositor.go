package compose

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/charmbracelet/log"
	"github.com/fogleman/gg"

	"nameplate/model"
)

var (
	ErrNoCenteredPage = errors.New("no centered page to export")
	ErrFrameNotFound  = errors.New("frame overlay not found")
)

// Request describes one export. Rects are in CSS pixels relative to the
// viewport, as reported by the browser.
type Request struct {
	Page             *model.PageEntry
	CanvasRect       model.Rect
	FrameRect        model.Rect
	Frame            FrameSource
	Name             string
	ExportFrameScale float64
}

// Result is an encoded composition.
type Result struct {
	PNG    []byte
	Width  int
	Height int
	Layout Layout
}

// Compositor renders a page bitmap with the frame overlay and name on top.
// It holds no per-request state and is safe for concurrent use.
type Compositor struct {
	fonts  *FontManager
	logger *log.Logger
}

// New creates a compositor drawing names with fonts.
func New(fonts *FontManager, logger *log.Logger) *Compositor {
	if logger == nil {
		logger = log.Default()
	}
	return &Compositor{
		fonts:  fonts,
		logger: logger.WithPrefix("compose"),
	}
}

// Render draws the composition without encoding it.
func (c *Compositor) Render(ctx context.Context, req Request) (image.Image, Layout, error) {
	if req.Page == nil || req.Page.Bitmap == nil {
		return nil, Layout{}, ErrNoCenteredPage
	}
	if req.Frame == nil || req.FrameRect.Empty() {
		return nil, Layout{}, ErrFrameNotFound
	}
	if err := ctx.Err(); err != nil {
		return nil, Layout{}, err
	}

	layout, err := Plan(req.Page, req.CanvasRect, req.FrameRect, req.ExportFrameScale)
	if err != nil {
		return nil, Layout{}, err
	}

	b := req.Page.Bitmap.Bounds()
	dc := gg.NewContext(b.Dx(), b.Dy())
	DrawBackground(dc, req.Page.Bitmap)

	frame, err := req.Frame.Frame(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, Layout{}, ctxErr
		}
		c.logger.Warn("frame image unavailable, exporting without it", "err", err)
	} else {
		DrawStretched(dc, frame, layout.ExportFrame)
	}

	if err := DrawName(dc, c.fonts, req.Name, layout.TextX, layout.TextY, layout.FontSize); err != nil {
		return nil, Layout{}, fmt.Errorf("draw name: %w", err)
	}

	return dc.Image(), layout, nil
}

// Compose renders the request and encodes it as PNG.
func (c *Compositor) Compose(ctx context.Context, req Request) (*Result, error) {
	img, layout, err := c.Render(ctx, req)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}

	b := img.Bounds()
	c.logger.Debug("composed nameplate",
		"page", req.Page.PageNumber,
		"size", fmt.Sprintf("%dx%d", b.Dx(), b.Dy()),
		"font", layout.FontSize,
	)

	return &Result{
		PNG:    buf.Bytes(),
		Width:  b.Dx(),
		Height: b.Dy(),
		Layout: layout,
	}, nil
}
