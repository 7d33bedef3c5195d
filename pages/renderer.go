// Package pages loads a paged document and rasterizes every page to a bitmap
// sized to cover the viewport, and tracks which page is centered in the
// scrollable page container.
package pages

import (
	"context"
	"errors"
	"image"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	"nameplate/model"
)

// Renderer holds the rasterized pages of the loaded document.
type Renderer struct {
	opener Opener
	client *http.Client
	logger *log.Logger

	mu     sync.RWMutex
	pages  []*model.PageEntry
	source string
}

// NewRenderer creates a renderer that parses documents with opener.
func NewRenderer(opener Opener, logger *log.Logger) *Renderer {
	if logger == nil {
		logger = log.Default()
	}
	return &Renderer{
		opener: opener,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger.WithPrefix("pages"),
	}
}

// RenderScale returns the scale at which a page of the given size in points
// covers the viewport at the device pixel density.
func RenderScale(vp model.Viewport, pageWidth, pageHeight float64) float64 {
	dpr := vp.DPR()
	return math.Max(vp.Width*dpr/pageWidth, vp.Height*dpr/pageHeight)
}

// Load fetches source and rasterizes every page for vp. On success the page
// list is replaced; on failure it is left untouched and a *DocumentLoadError
// is returned.
func (r *Renderer) Load(ctx context.Context, source string, vp model.Viewport) error {
	fail := func(err error) error {
		r.logger.Error("error loading document", "source", source, "err", err)
		return &DocumentLoadError{Source: source, Err: err}
	}

	if vp.Width <= 0 || vp.Height <= 0 {
		return fail(errors.New("viewport has no size"))
	}

	data, err := Fetch(ctx, r.client, source)
	if err != nil {
		return fail(err)
	}

	doc, err := r.opener.Open(data)
	if err != nil {
		return fail(err)
	}
	defer doc.Close()

	total := doc.NumPages()
	if total == 0 {
		return fail(ErrNoPages)
	}

	entries := make([]*model.PageEntry, 0, total)
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}

		pw, ph, err := doc.PageSize(i)
		if err != nil {
			return fail(err)
		}
		if pw <= 0 || ph <= 0 {
			return fail(errors.New("page has no size"))
		}

		scale := RenderScale(vp, pw, ph)
		img, err := doc.Render(i, 72*scale)
		if err != nil {
			return fail(err)
		}

		// The page is floor(size x scale) pixels; rasterizers that round the
		// page box outward render a pixel more on either axis.
		w := int(math.Floor(pw*scale + 1e-9))
		h := int(math.Floor(ph*scale + 1e-9))
		if b := img.Bounds(); b.Dx() > w || b.Dy() > h {
			img = imaging.Crop(img, image.Rect(b.Min.X, b.Min.Y, b.Min.X+min(w, b.Dx()), b.Min.Y+min(h, b.Dy())))
		}

		b := img.Bounds()
		entries = append(entries, &model.PageEntry{
			PageNumber:    i + 1,
			Bitmap:        img,
			PixelWidth:    b.Dx(),
			PixelHeight:   b.Dy(),
			ViewportScale: scale,
		})
	}

	r.mu.Lock()
	r.pages = entries
	r.source = source
	r.mu.Unlock()

	r.logger.Info("document loaded", "source", source, "pages", total)
	return nil
}

// Pages returns the loaded pages in page order.
func (r *Renderer) Pages() []*model.PageEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*model.PageEntry(nil), r.pages...)
}

// Page returns the entry for a one-based page number.
func (r *Renderer) Page(number int) (*model.PageEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if number < 1 || number > len(r.pages) {
		return nil, false
	}
	return r.pages[number-1], true
}

// Source returns the source of the loaded document.
func (r *Renderer) Source() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.source
}

// Centered resolves the page centered in the container to its entry.
func (r *Renderer) Centered(container model.ContainerMetrics, items []model.PageMetrics) (*model.PageEntry, bool) {
	item, ok := CenteredPage(container, items)
	if !ok {
		return nil, false
	}
	return r.Page(item.PageNumber)
}
