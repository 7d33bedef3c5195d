package compose

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"nameplate/model"
)

var (
	blue = color.RGBA{B: 255, A: 255}
	red  = color.RGBA{R: 255, A: 255}
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

type failingFrame struct{}

func (failingFrame) Frame(context.Context) (image.Image, error) {
	return nil, errors.New("frame image missing")
}

func newTestCompositor(t *testing.T) *Compositor {
	t.Helper()
	fonts, err := NewFontManager("", nil)
	if err != nil {
		t.Fatalf("NewFontManager() unexpected error: %v", err)
	}
	return New(fonts, log.New(io.Discard))
}

func scenarioRequest(name string, frame FrameSource) Request {
	return Request{
		Page: &model.PageEntry{
			PageNumber:  1,
			Bitmap:      solid(800, 400, blue),
			PixelWidth:  800,
			PixelHeight: 400,
		},
		CanvasRect:       model.Rect{Width: 400, Height: 200},
		FrameRect:        model.Rect{Left: 100, Top: 50, Width: 200, Height: 80},
		Frame:            frame,
		Name:             name,
		ExportFrameScale: DefaultExportFrameScale,
	}
}

func decode(t *testing.T, res *Result) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(res.PNG))
	if err != nil {
		t.Fatalf("decode result: %v", err)
	}
	return img
}

func sameColor(a, b color.Color) bool {
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	return ar == br && ag == bg && ab == bb && aa == ba
}

func TestComposeFrameInExportRect(t *testing.T) {
	t.Parallel()

	c := newTestCompositor(t)
	res, err := c.Compose(context.Background(), scenarioRequest("", ImageFrame{Image: solid(50, 20, red)}))
	if err != nil {
		t.Fatalf("Compose() unexpected error: %v", err)
	}
	if res.Width != 800 || res.Height != 400 {
		t.Fatalf("size = %dx%d, want 800x400", res.Width, res.Height)
	}

	img := decode(t, res)
	tests := []struct {
		name string
		x, y int
		want color.Color
	}{
		{name: "export rect interior", x: 400, y: 180, want: red},
		{name: "near export rect corner", x: 250, y: 123, want: red},
		{name: "displayed frame outside export rect", x: 205, y: 105, want: blue},
		{name: "outside frame", x: 10, y: 10, want: blue},
	}
	for _, tt := range tests {
		if got := img.At(tt.x, tt.y); !sameColor(got, tt.want) {
			t.Fatalf("%s: pixel (%d,%d) = %v, want %v", tt.name, tt.x, tt.y, got, tt.want)
		}
	}
}

func TestComposeDrawsName(t *testing.T) {
	t.Parallel()

	c := newTestCompositor(t)
	res, err := c.Compose(context.Background(), scenarioRequest("Your Name", ImageFrame{Image: solid(50, 20, red)}))
	if err != nil {
		t.Fatalf("Compose() unexpected error: %v", err)
	}

	img := decode(t, res)
	white := 0
	for y := 160; y < 200; y++ {
		for x := 320; x < 480; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			if r > 0xf000 && g > 0xf000 && b > 0xf000 {
				white++
			}
		}
	}
	if white == 0 {
		t.Fatal("no white name pixels around the export rect center")
	}
}

func TestComposeVeryLongName(t *testing.T) {
	t.Parallel()

	c := newTestCompositor(t)
	res, err := c.Compose(context.Background(), scenarioRequest(strings.Repeat("W", 5000), ImageFrame{Image: solid(50, 20, red)}))
	if err != nil {
		t.Fatalf("Compose() unexpected error: %v", err)
	}
	if res.Width != 800 || res.Height != 400 {
		t.Fatalf("size = %dx%d, want 800x400", res.Width, res.Height)
	}
	if b := decode(t, res).Bounds(); b.Dx() != 800 || b.Dy() != 400 {
		t.Fatalf("decoded bounds = %v, want 800x400", b)
	}
}

func TestShadowBoundsStayOnSurface(t *testing.T) {
	t.Parallel()

	surface := image.Rect(0, 0, 800, 400)
	tests := []struct {
		name       string
		cx, cy, tw float64
		want       image.Rectangle
	}{
		{name: "short name", cx: 400, cy: 200, tw: 100, want: image.Rect(306, 124, 494, 276)},
		{name: "text wider than surface", cx: 400, cy: 200, tw: 1e6, want: image.Rect(0, 124, 800, 276)},
		{name: "off surface", cx: -5000, cy: 200, tw: 100, want: image.Rectangle{}},
	}
	for _, tt := range tests {
		got := shadowBounds(tt.cx, tt.cy, tt.tw, 32, 4, surface.Dx(), surface.Dy())
		if !got.Eq(tt.want) {
			t.Fatalf("%s: shadowBounds() = %v, want %v", tt.name, got, tt.want)
		}
		if !got.In(surface) {
			t.Fatalf("%s: shadowBounds() = %v outside %v", tt.name, got, surface)
		}
	}
}

func TestComposeIsDeterministic(t *testing.T) {
	t.Parallel()

	c := newTestCompositor(t)
	req := scenarioRequest("Ada Lovelace", ImageFrame{Image: solid(50, 20, red)})

	first, err := c.Compose(context.Background(), req)
	if err != nil {
		t.Fatalf("Compose() unexpected error: %v", err)
	}
	second, err := c.Compose(context.Background(), req)
	if err != nil {
		t.Fatalf("Compose() unexpected error: %v", err)
	}
	if !bytes.Equal(first.PNG, second.PNG) {
		t.Fatal("identical requests produced different images")
	}
}

func TestComposeDoesNotMutateInputs(t *testing.T) {
	t.Parallel()

	c := newTestCompositor(t)
	req := scenarioRequest("Name", ImageFrame{Image: solid(50, 20, red)})
	page := req.Page.Bitmap.(*image.RGBA)
	before := append([]uint8(nil), page.Pix...)

	if _, err := c.Compose(context.Background(), req); err != nil {
		t.Fatalf("Compose() unexpected error: %v", err)
	}
	if !bytes.Equal(before, page.Pix) {
		t.Fatal("page bitmap was modified")
	}
	if req.FrameRect != (model.Rect{Left: 100, Top: 50, Width: 200, Height: 80}) {
		t.Fatalf("frame rect modified: %+v", req.FrameRect)
	}
}

func TestComposeContinuesWithoutFrameImage(t *testing.T) {
	t.Parallel()

	c := newTestCompositor(t)
	res, err := c.Compose(context.Background(), scenarioRequest("", failingFrame{}))
	if err != nil {
		t.Fatalf("Compose() unexpected error: %v", err)
	}
	if got := decode(t, res).At(400, 180); !sameColor(got, blue) {
		t.Fatalf("pixel at export center = %v, want background", got)
	}
}

func TestComposeErrors(t *testing.T) {
	t.Parallel()

	c := newTestCompositor(t)
	frame := ImageFrame{Image: solid(10, 10, red)}

	noPage := scenarioRequest("", frame)
	noPage.Page = nil

	noFrameRect := scenarioRequest("", frame)
	noFrameRect.FrameRect = model.Rect{}

	noFrameSource := scenarioRequest("", nil)

	badScale := scenarioRequest("", frame)
	badScale.ExportFrameScale = 1.2

	tests := []struct {
		name string
		req  Request
		want error
	}{
		{name: "no page", req: noPage, want: ErrNoCenteredPage},
		{name: "empty frame rect", req: noFrameRect, want: ErrFrameNotFound},
		{name: "no frame source", req: noFrameSource, want: ErrFrameNotFound},
		{name: "bad scale", req: badScale, want: ErrInvalidExportScale},
	}

	for _, tt := range tests {
		if _, err := c.Compose(context.Background(), tt.req); !errors.Is(err, tt.want) {
			t.Fatalf("%s: Compose() error = %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestComposeCancelled(t *testing.T) {
	t.Parallel()

	c := newTestCompositor(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Compose(ctx, scenarioRequest("", ImageFrame{Image: solid(1, 1, red)})); !errors.Is(err, context.Canceled) {
		t.Fatalf("Compose() error = %v, want context.Canceled", err)
	}
}

func TestFileFrame(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trans.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, solid(4, 3, red)); err != nil {
		t.Fatal(err)
	}
	f.Close()

	frame := NewFileFrame(path)
	first, err := frame.Frame(context.Background())
	if err != nil {
		t.Fatalf("Frame() unexpected error: %v", err)
	}
	if b := first.Bounds(); b.Dx() != 4 || b.Dy() != 3 {
		t.Fatalf("Frame() bounds = %v", b)
	}
	second, _ := frame.Frame(context.Background())
	if first != second {
		t.Fatal("Frame() decoded the image twice")
	}

	missing := NewFileFrame(filepath.Join(t.TempDir(), "nope.png"))
	if _, err := missing.Frame(context.Background()); err == nil {
		t.Fatal("Frame() expected error for missing file")
	}
}

func TestFileFrameRetriesFailedLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trans.png")
	frame := NewFileFrame(path)
	if _, err := frame.Frame(context.Background()); err == nil {
		t.Fatal("Frame() expected error before the file exists")
	}

	if err := os.WriteFile(path, []byte("not a png"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := frame.Frame(context.Background()); err == nil {
		t.Fatal("Frame() expected decode error")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, solid(4, 3, red)); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	img, err := frame.Frame(context.Background())
	if err != nil {
		t.Fatalf("Frame() unexpected error after the file appeared: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 3 {
		t.Fatalf("Frame() bounds = %v", b)
	}
}

func TestFontManagerFallback(t *testing.T) {
	t.Parallel()

	fm, err := NewFontManager(filepath.Join(t.TempDir(), "missing.ttf"), log.New(io.Discard))
	if err != nil {
		t.Fatalf("NewFontManager() unexpected error: %v", err)
	}
	face, err := fm.Face(32)
	if err != nil {
		t.Fatalf("Face() unexpected error: %v", err)
	}
	defer face.Close()
	if face.Metrics().Height <= 0 {
		t.Fatal("face has no height")
	}

	if _, err := NewFontManagerFromBytes([]byte("not a font")); err == nil {
		t.Fatal("NewFontManagerFromBytes() expected parse error")
	}
}
