package pages

import (
	"errors"
	"fmt"
)

// ErrNoPages is wrapped by DocumentLoadError when a document has zero pages.
var ErrNoPages = errors.New("document has no pages")

// DocumentLoadError reports a document that could not be fetched, parsed or
// rendered. It is fatal to page rendering.
type DocumentLoadError struct {
	Source string
	Err    error
}

func (e *DocumentLoadError) Error() string {
	return fmt.Sprintf("unable to load document %s: %v", e.Source, e.Err)
}

func (e *DocumentLoadError) Unwrap() error { return e.Err }
