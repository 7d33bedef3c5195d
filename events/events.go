package events

import "time"

// Event names published on the bus.
const (
	ThemeSwitch   = "theme:switch"
	ThemeChanging = "theme:changing"
	ThemeChanged  = "theme:changed"
	ThemeError    = "theme:error"

	NameChanged = "name:changed"

	AppReady  = "app:ready"
	AppReset  = "app:reset"
	AppBanner = "app:banner"
	AppNotice = "app:notice"

	WindowResize = "window:resize"
	PageSnap     = "page:snap"

	ExportSuccess = "export:success"
	ExportError   = "export:error"
)

// NoticeDuration is how long transient notifications stay on screen.
const NoticeDuration = 3 * time.Second

// NoticeKind distinguishes success from error notifications.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a transient, user-facing notification.
type Notice struct {
	Kind     NoticeKind    `json:"kind"`
	Code     string        `json:"code,omitempty"`
	Message  string        `json:"message"`
	Dismiss  time.Duration `json:"-"`
	Filename string        `json:"filename,omitempty"`
}

// Banner is a persistent, user-facing error message.
type Banner struct {
	Message string `json:"message"`
}

// NameChange is the payload of NameChanged.
type NameChange struct {
	Name string `json:"name"`
}
