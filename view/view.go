// Package view describes the browser side of the application as the core
// components see it: a geometry snapshot the page reports, and an Applier
// through which components change what is displayed.
package view

import (
	"errors"

	"nameplate/model"
)

// Selectors of UI chrome that must not appear in exported images.
var ChromeSelectors = []string{".theme-selector", ".bottom-controls", ".container"}

// Snapshot is the DOM geometry reported by the browser at export time.
type Snapshot struct {
	Viewport           model.Viewport         `json:"viewport"`
	Container          model.ContainerMetrics `json:"container"`
	Pages              []model.PageMetrics    `json:"pages"`
	CanvasRect         model.Rect             `json:"canvasRect"`
	FrameRect          model.Rect             `json:"frameRect"`
	FrameContainerRect model.Rect             `json:"frameContainerRect"`
}

// ErrInvalidSnapshot is returned when a snapshot lacks the viewport size.
var ErrInvalidSnapshot = errors.New("snapshot has no viewport size")

// Validate checks the fields every consumer relies on.
func (s Snapshot) Validate() error {
	if s.Viewport.Width <= 0 || s.Viewport.Height <= 0 {
		return ErrInvalidSnapshot
	}
	return nil
}

// Applier mutates the displayed document.
type Applier interface {
	SetProperties(props map[string]string) error
	AddClass(class string) error
	RemoveClass(class string) error
	Hide(selectors ...string) error
	Show(selectors ...string) error
}

// Discard is an Applier with no display attached.
type Discard struct{}

func (Discard) SetProperties(map[string]string) error { return nil }
func (Discard) AddClass(string) error                 { return nil }
func (Discard) RemoveClass(string) error              { return nil }
func (Discard) Hide(...string) error                  { return nil }
func (Discard) Show(...string) error                  { return nil }

// HideChrome hides the given selectors and returns a function restoring them.
// The restore function is safe to call when Hide failed part way.
func HideChrome(a Applier, selectors ...string) (restore func() error, err error) {
	restore = func() error { return a.Show(selectors...) }
	if err := a.Hide(selectors...); err != nil {
		return restore, err
	}
	return restore, nil
}
