package app

import (
	"context"
	"errors"

	"nameplate/capture"
	"nameplate/compose"
	"nameplate/events"
	"nameplate/pages"
	"nameplate/theme"
	"nameplate/view"
)

// Notice codes.
const (
	CodeNoCenteredPage     = "no_centered_page"
	CodeFrameNotFound      = "frame_not_found"
	CodeCaptureUnavailable = "capture_unavailable"
	CodeDocumentLoad       = "document_load"
	CodeInvalidRequest     = "invalid_request"
	CodeThemeNotFound      = "theme_not_found"
	CodeTransition         = "transition_in_progress"
	CodeTimeout            = "timeout"
	CodeInternal           = "internal"
)

// NoticeFor turns an error into the notification shown to the user.
func NoticeFor(err error) events.Notice {
	n := events.Notice{Kind: events.NoticeError, Dismiss: events.NoticeDuration}

	var unavailable *capture.CaptureUnavailableError
	var loadErr *pages.DocumentLoadError

	switch {
	case errors.Is(err, compose.ErrNoCenteredPage):
		n.Code, n.Message = CodeNoCenteredPage, "No page is centered in view. Scroll to a page and try again."
	case errors.Is(err, compose.ErrFrameNotFound):
		n.Code, n.Message = CodeFrameNotFound, "The name frame could not be found."
	case errors.As(err, &unavailable):
		n.Code, n.Message = CodeCaptureUnavailable, "Screen capture failed, please try again."
	case errors.As(err, &loadErr):
		n.Code, n.Message = CodeDocumentLoad, "Unable to load the document. Please check the file path."
	case errors.Is(err, view.ErrInvalidSnapshot),
		errors.Is(err, ErrUnknownMode),
		errors.Is(err, compose.ErrInvalidExportScale),
		errors.Is(err, compose.ErrInvalidCanvas):
		n.Code, n.Message = CodeInvalidRequest, "The export request was incomplete."
	case errors.Is(err, theme.ErrThemeNotFound):
		n.Code, n.Message = CodeThemeNotFound, "Theme not found."
	case errors.Is(err, theme.ErrTransitionInProgress):
		n.Code, n.Message = CodeTransition, "A theme change is already in progress."
	case errors.Is(err, context.DeadlineExceeded):
		n.Code, n.Message = CodeTimeout, "The export took too long, please try again."
	default:
		n.Code, n.Message = CodeInternal, "Export failed, please try again."
	}
	return n
}
