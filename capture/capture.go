// Package capture takes a screenshot of the displayed nameplate. A headless
// browser is preferred; when none is available or it fails, the scene is
// rasterized on the server instead.
package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"

	"nameplate/compose"
	"nameplate/model"
	"nameplate/view"
)

// DefaultPadding is the margin kept around the frame container, in CSS pixels.
const DefaultPadding = 50

// Kind identifies a capture strategy.
type Kind int

const (
	Native Kind = iota
	DOMRasterize
)

func (k Kind) String() string {
	switch k {
	case Native:
		return "native"
	case DOMRasterize:
		return "dom-rasterize"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Scene is what the browser displays at capture time.
type Scene struct {
	Page  *model.PageEntry
	Frame compose.FrameSource
	Name  string
}

// Request describes one capture.
type Request struct {
	Snapshot view.Snapshot
	// URL the native strategy opens.
	URL   string
	Scene Scene
}

// Result is the cropped capture encoded as PNG.
type Result struct {
	PNG      []byte
	Width    int
	Height   int
	Strategy Kind
}

// Strategy produces a full viewport image.
type Strategy interface {
	Kind() Kind
	// Available reports whether the strategy can run at all.
	Available(ctx context.Context) bool
	Capture(ctx context.Context, req Request) (image.Image, error)
}

// ErrStrategyUnavailable is returned by a strategy asked to capture while
// unavailable.
var ErrStrategyUnavailable = errors.New("capture strategy unavailable")

// Attempt records one failed strategy.
type Attempt struct {
	Kind Kind
	Err  error
}

// CaptureUnavailableError is returned when no strategy produced an image.
type CaptureUnavailableError struct {
	Attempts []Attempt
}

func (e *CaptureUnavailableError) Error() string {
	if len(e.Attempts) == 0 {
		return "screen capture unavailable: no capture strategy available"
	}
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.Kind, a.Err))
	}
	return "screen capture unavailable: " + strings.Join(parts, "; ")
}

func (e *CaptureUnavailableError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		errs = append(errs, a.Err)
	}
	return errs
}
