package capture

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"nameplate/compose"
	"nameplate/model"
	"nameplate/view"
)

type fakeStrategy struct {
	kind      Kind
	available bool
	err       error
	img       image.Image

	mu     sync.Mutex
	checks int
	calls  int
	hidden func() bool
	sawHid bool
}

func (f *fakeStrategy) Kind() Kind { return f.kind }

func (f *fakeStrategy) Available(context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checks++
	return f.available
}

func (f *fakeStrategy) Capture(ctx context.Context, req Request) (image.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.hidden != nil {
		f.sawHid = f.hidden()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.img, nil
}

type chromeApplier struct {
	view.Discard

	mu      sync.Mutex
	hidden  bool
	hides   int
	shows   int
	hideErr error
}

func (a *chromeApplier) Hide(...string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hides++
	a.hidden = true
	return a.hideErr
}

func (a *chromeApplier) Show(...string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.shows++
	a.hidden = false
	return nil
}

func (a *chromeApplier) isHidden() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.hidden
}

func quietLogger() *log.Logger { return log.New(io.Discard) }

func fill(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func testRequest() Request {
	return Request{
		Snapshot: view.Snapshot{
			Viewport:           model.Viewport{Width: 400, Height: 300, DevicePixelRatio: 1},
			CanvasRect:         model.Rect{Width: 400, Height: 300},
			FrameRect:          model.Rect{Left: 100, Top: 100, Width: 200, Height: 80},
			FrameContainerRect: model.Rect{Left: 100, Top: 100, Width: 200, Height: 80},
		},
		URL: "http://localhost:8080/",
	}
}

func TestChainPrefersFirstAvailable(t *testing.T) {
	t.Parallel()

	applier := &chromeApplier{}
	native := &fakeStrategy{kind: Native, available: true, img: fill(400, 300, color.White), hidden: applier.isHidden}
	raster := &fakeStrategy{kind: DOMRasterize, available: true, img: fill(400, 300, color.Black)}
	chain := NewChain(applier, DefaultPadding, quietLogger(), native, raster)

	res, err := chain.Capture(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Capture() unexpected error: %v", err)
	}
	if res.Strategy != Native {
		t.Fatalf("Strategy = %v, want native", res.Strategy)
	}
	if res.Width != 300 || res.Height != 180 {
		t.Fatalf("size = %dx%d, want 300x180", res.Width, res.Height)
	}
	if raster.calls != 0 {
		t.Fatal("fallback strategy ran although native succeeded")
	}
	if !native.sawHid {
		t.Fatal("chrome was visible during capture")
	}
	if applier.isHidden() || applier.shows != 1 {
		t.Fatalf("chrome not restored: hidden=%v shows=%d", applier.isHidden(), applier.shows)
	}
}

func TestChainFallsBackOnFailure(t *testing.T) {
	t.Parallel()

	native := &fakeStrategy{kind: Native, available: true, err: errors.New("permission denied")}
	raster := &fakeStrategy{kind: DOMRasterize, available: true, img: fill(400, 300, color.Black)}
	chain := NewChain(nil, DefaultPadding, quietLogger(), native, raster)

	res, err := chain.Capture(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Capture() unexpected error: %v", err)
	}
	if res.Strategy != DOMRasterize {
		t.Fatalf("Strategy = %v, want dom-rasterize", res.Strategy)
	}
	if _, err := png.Decode(bytes.NewReader(res.PNG)); err != nil {
		t.Fatalf("result is not a png: %v", err)
	}
}

func TestChainSkipsUnavailable(t *testing.T) {
	t.Parallel()

	native := &fakeStrategy{kind: Native, available: false}
	raster := &fakeStrategy{kind: DOMRasterize, available: true, img: fill(400, 300, color.Black)}
	chain := NewChain(nil, DefaultPadding, quietLogger(), native, raster)

	for range 3 {
		if _, err := chain.Capture(context.Background(), testRequest()); err != nil {
			t.Fatalf("Capture() unexpected error: %v", err)
		}
	}
	if native.calls != 0 {
		t.Fatal("unavailable strategy was asked to capture")
	}
	if native.checks != 1 || raster.checks != 1 {
		t.Fatalf("capabilities checked %d/%d times, want once", native.checks, raster.checks)
	}
	if kinds := chain.Plan(context.Background()); len(kinds) != 1 || kinds[0] != DOMRasterize {
		t.Fatalf("Plan() = %v, want [dom-rasterize]", kinds)
	}
}

func TestChainBothUnavailable(t *testing.T) {
	t.Parallel()

	applier := &chromeApplier{}
	chain := NewChain(applier, DefaultPadding, quietLogger(),
		&fakeStrategy{kind: Native},
		&fakeStrategy{kind: DOMRasterize},
	)

	_, err := chain.Capture(context.Background(), testRequest())
	var unavailable *CaptureUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("Capture() error = %v, want *CaptureUnavailableError", err)
	}
	if applier.hides != 0 {
		t.Fatal("chrome hidden although nothing could capture")
	}
}

func TestChainBothFail(t *testing.T) {
	t.Parallel()

	applier := &chromeApplier{}
	nativeErr := errors.New("no display")
	chain := NewChain(applier, DefaultPadding, quietLogger(),
		&fakeStrategy{kind: Native, available: true, err: nativeErr},
		&fakeStrategy{kind: DOMRasterize, available: true, err: errors.New("canvas tainted")},
	)

	_, err := chain.Capture(context.Background(), testRequest())
	var unavailable *CaptureUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("Capture() error = %v, want *CaptureUnavailableError", err)
	}
	if len(unavailable.Attempts) != 2 {
		t.Fatalf("attempts = %+v, want 2", unavailable.Attempts)
	}
	if !errors.Is(err, nativeErr) {
		t.Fatal("strategy error not reachable through errors.Is")
	}
	if applier.isHidden() {
		t.Fatal("chrome not restored after failure")
	}
}

func TestChainRestoresChromeWhenHideFails(t *testing.T) {
	t.Parallel()

	applier := &chromeApplier{hideErr: errors.New("socket closed")}
	chain := NewChain(applier, DefaultPadding, quietLogger(),
		&fakeStrategy{kind: DOMRasterize, available: true, img: fill(400, 300, color.Black)},
	)

	if _, err := chain.Capture(context.Background(), testRequest()); err != nil {
		t.Fatalf("Capture() unexpected error: %v", err)
	}
	if applier.shows != 1 {
		t.Fatalf("Show called %d times, want 1", applier.shows)
	}
}

func TestChainRejectsInvalidSnapshot(t *testing.T) {
	t.Parallel()

	chain := NewChain(nil, DefaultPadding, quietLogger(), &fakeStrategy{kind: DOMRasterize, available: true})
	if _, err := chain.Capture(context.Background(), Request{}); !errors.Is(err, view.ErrInvalidSnapshot) {
		t.Fatalf("Capture() error = %v, want ErrInvalidSnapshot", err)
	}
}

func TestCropScalesPerAxis(t *testing.T) {
	t.Parallel()

	img := fill(200, 100, color.White)
	vp := model.Viewport{Width: 100, Height: 100}

	got := Crop(img, vp, model.Rect{Left: 20, Top: 20, Width: 10, Height: 10}, 5)
	if b := got.Bounds(); b.Dx() != 40 || b.Dy() != 20 {
		t.Fatalf("Crop() size = %dx%d, want 40x20", b.Dx(), b.Dy())
	}
}

func TestCropKeepsPaddedSize(t *testing.T) {
	t.Parallel()

	img := fill(100, 100, color.White)
	vp := model.Viewport{Width: 100, Height: 100}

	got := Crop(img, vp, model.Rect{Left: 10, Top: 10, Width: 20, Height: 20}, 50)
	if b := got.Bounds(); b.Dx() != 120 || b.Dy() != 120 {
		t.Fatalf("Crop() size = %dx%d, want 120x120", b.Dx(), b.Dy())
	}
	tests := []struct {
		name  string
		x, y  int
		alpha uint32
	}{
		{name: "padding outside capture", x: 10, y: 10, alpha: 0},
		{name: "just outside capture", x: 39, y: 39, alpha: 0},
		{name: "capture corner", x: 40, y: 40, alpha: 0xffff},
		{name: "target", x: 60, y: 60, alpha: 0xffff},
		{name: "padding inside capture", x: 119, y: 119, alpha: 0xffff},
	}
	for _, tt := range tests {
		if _, _, _, a := got.At(tt.x, tt.y).RGBA(); a != tt.alpha {
			t.Fatalf("%s: alpha at (%d,%d) = %#x, want %#x", tt.name, tt.x, tt.y, a, tt.alpha)
		}
	}

	whole := Crop(img, vp, model.Rect{}, 50)
	if b := whole.Bounds(); b.Dx() != 100 || b.Dy() != 100 {
		t.Fatalf("Crop() with empty target = %v, want full image", b)
	}
}

func TestRasterizerDrawsScene(t *testing.T) {
	t.Parallel()

	fonts, err := compose.NewFontManager("", nil)
	if err != nil {
		t.Fatal(err)
	}
	r := NewRasterizer(fonts, quietLogger())
	if !r.Available(context.Background()) {
		t.Fatal("rasterizer unavailable")
	}

	req := testRequest()
	req.Snapshot.Viewport.DevicePixelRatio = 2
	req.Scene = Scene{
		Page:  &model.PageEntry{PageNumber: 1, Bitmap: fill(10, 10, color.RGBA{B: 255, A: 255}), PixelWidth: 10, PixelHeight: 10},
		Frame: compose.ImageFrame{Image: fill(4, 4, color.RGBA{R: 255, A: 255})},
	}

	img, err := r.Capture(context.Background(), req)
	if err != nil {
		t.Fatalf("Capture() unexpected error: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 800 || b.Dy() != 600 {
		t.Fatalf("size = %v, want 800x600", b)
	}

	tests := []struct {
		name string
		x, y int
		want color.RGBA
	}{
		{name: "page", x: 20, y: 20, want: color.RGBA{B: 255, A: 255}},
		{name: "frame", x: 220, y: 220, want: color.RGBA{R: 255, A: 255}},
	}
	for _, tt := range tests {
		r, g, b, a := img.At(tt.x, tt.y).RGBA()
		wr, wg, wb, wa := tt.want.RGBA()
		if r != wr || g != wg || b != wb || a != wa {
			t.Fatalf("%s pixel = %v, want %v", tt.name, img.At(tt.x, tt.y), tt.want)
		}
	}

	req.Scene.Page = nil
	if _, err := r.Capture(context.Background(), req); err == nil {
		t.Fatal("Capture() without page expected error")
	}
}

func TestRasterizerWithoutFonts(t *testing.T) {
	t.Parallel()

	r := NewRasterizer(nil, quietLogger())
	if r.Available(context.Background()) {
		t.Fatal("rasterizer without fonts reported available")
	}
	if _, err := r.Capture(context.Background(), testRequest()); !errors.Is(err, ErrStrategyUnavailable) {
		t.Fatalf("Capture() error = %v, want ErrStrategyUnavailable", err)
	}
}

func TestBrowserUnavailable(t *testing.T) {
	t.Parallel()

	b := NewBrowser("/nonexistent/chrome-binary", 0, quietLogger())
	if b.Available(context.Background()) {
		t.Fatal("Available() = true for missing binary")
	}
	if _, err := b.Capture(context.Background(), testRequest()); !errors.Is(err, ErrStrategyUnavailable) {
		t.Fatalf("Capture() error = %v, want ErrStrategyUnavailable", err)
	}
}

func TestPrepareScript(t *testing.T) {
	t.Parallel()

	script, err := prepareScript(120)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`".theme-selector"`, `"#pages"`, "scrollTop = 120.000000"} {
		if !bytes.Contains([]byte(script), []byte(want)) {
			t.Fatalf("script missing %q:\n%s", want, script)
		}
	}
}
