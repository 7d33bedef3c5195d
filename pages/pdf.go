package pages

import (
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// Document is an opened paged document.
type Document interface {
	NumPages() int
	// PageSize returns the size of page i (zero based) in points.
	PageSize(i int) (width, height float64, err error)
	// Render rasterizes page i at the given resolution.
	Render(i int, dpi float64) (image.Image, error)
	Close() error
}

// Opener parses document bytes.
type Opener interface {
	Open(data []byte) (Document, error)
}

// PDFOpener opens PDF documents with MuPDF.
type PDFOpener struct{}

// Open implements Opener.
func (PDFOpener) Open(data []byte) (Document, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("parse pdf: %w", err)
	}
	return &pdfDocument{doc: doc}, nil
}

type pdfDocument struct {
	doc *fitz.Document
}

func (d *pdfDocument) NumPages() int { return d.doc.NumPage() }

func (d *pdfDocument) PageSize(i int) (float64, float64, error) {
	b, err := d.doc.Bound(i)
	if err != nil {
		return 0, 0, err
	}
	return float64(b.Dx()), float64(b.Dy()), nil
}

func (d *pdfDocument) Render(i int, dpi float64) (image.Image, error) {
	return d.doc.ImageDPI(i, dpi)
}

func (d *pdfDocument) Close() error { return d.doc.Close() }
