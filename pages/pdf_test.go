package pages

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"nameplate/model"
)

// buildPDF writes a minimal PDF with one blank page per media box.
func buildPDF(boxes ...[2]int) []byte {
	var objs []string
	kids := make([]string, len(boxes))
	for i := range boxes {
		kids[i] = fmt.Sprintf("%d 0 R", i+3)
	}
	objs = append(objs,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(boxes)),
	)
	for _, b := range boxes {
		objs = append(objs, fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %d %d] /Resources << >> >>", b[0], b[1]))
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, obj := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

func writePDF(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nametap.pdf")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	return path
}

func TestPDFOpenerPageSizes(t *testing.T) {
	t.Parallel()

	doc, err := PDFOpener{}.Open(buildPDF([2]int{200, 100}, [2]int{300, 400}))
	if err != nil {
		t.Fatalf("Open() unexpected error: %v", err)
	}
	defer doc.Close()

	if n := doc.NumPages(); n != 2 {
		t.Fatalf("NumPages() = %d, want 2", n)
	}
	tests := []struct {
		page int
		w, h float64
	}{
		{page: 0, w: 200, h: 100},
		{page: 1, w: 300, h: 400},
	}
	for _, tt := range tests {
		w, h, err := doc.PageSize(tt.page)
		if err != nil {
			t.Fatalf("PageSize(%d) unexpected error: %v", tt.page, err)
		}
		if w != tt.w || h != tt.h {
			t.Fatalf("PageSize(%d) = %vx%v, want %vx%v", tt.page, w, h, tt.w, tt.h)
		}
	}
}

func TestLoadPDFFloorsPageDimensions(t *testing.T) {
	t.Parallel()

	r := NewRenderer(PDFOpener{}, quietLogger())
	source := writePDF(t, buildPDF([2]int{200, 100}, [2]int{200, 100}, [2]int{200, 100}))
	vp := model.Viewport{Width: 333, Height: 111, DevicePixelRatio: 1.5}

	if err := r.Load(context.Background(), source, vp); err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	pages := r.Pages()
	if len(pages) != 3 {
		t.Fatalf("got %d pages, want 3", len(pages))
	}
	for i, p := range pages {
		if p.PageNumber != i+1 {
			t.Fatalf("pages[%d].PageNumber = %d, want %d", i, p.PageNumber, i+1)
		}
		if p.PixelWidth != 499 || p.PixelHeight != 249 {
			t.Fatalf("page %d is %dx%d, want 499x249", p.PageNumber, p.PixelWidth, p.PixelHeight)
		}
		if b := p.Bitmap.Bounds(); b.Dx() != p.PixelWidth || b.Dy() != p.PixelHeight {
			t.Fatalf("page %d bitmap = %v, want %dx%d", p.PageNumber, b, p.PixelWidth, p.PixelHeight)
		}
	}
}

func TestLoadPDFWithoutPages(t *testing.T) {
	t.Parallel()

	r := NewRenderer(PDFOpener{}, quietLogger())
	err := r.Load(context.Background(), writePDF(t, buildPDF()), model.Viewport{Width: 800, Height: 600})

	var loadErr *DocumentLoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("Load() error = %v, want *DocumentLoadError", err)
	}
	if len(r.Pages()) != 0 {
		t.Fatal("pages populated after failed load")
	}
}
