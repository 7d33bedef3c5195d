// Package nameplate holds the user-facing state of the nameplate: the name
// shown in the frame, keyboard shortcuts and export file naming.
package nameplate

import (
	"strings"
	"sync"
	"unicode/utf8"

	"nameplate/events"
	"nameplate/model"
)

// Placeholder is shown when no name has been entered.
const Placeholder = "Your Name"

// MaxNameLength is the longest name kept, in runes. Longer names are cut.
const MaxNameLength = 64

// State is the current name and the frame geometry last reported by the
// browser.
type State struct {
	mu    sync.Mutex
	name  string
	frame model.Rect
	bus   *events.Bus
}

// NewState returns a state showing the placeholder.
func NewState(bus *events.Bus) *State {
	return &State{name: Placeholder, bus: bus}
}

// Name returns the name drawn in the frame.
func (s *State) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// SetName updates the name as the user types. An empty value shows the
// placeholder.
func (s *State) SetName(v string) string {
	if v == "" {
		v = Placeholder
	}
	return s.set(v)
}

// Blur is called when the name input loses focus. A blank value shows the
// placeholder.
func (s *State) Blur(v string) string {
	if strings.TrimSpace(v) == "" {
		v = Placeholder
	}
	return s.set(v)
}

// Reset restores the placeholder.
func (s *State) Reset() string {
	return s.set(Placeholder)
}

func (s *State) set(v string) string {
	if utf8.RuneCountInString(v) > MaxNameLength {
		v = string([]rune(v)[:MaxNameLength])
	}

	s.mu.Lock()
	s.name = v
	s.mu.Unlock()

	if s.bus != nil {
		s.bus.Emit(events.NameChanged, events.NameChange{Name: v})
	}
	return v
}

// SetFrameGeometry stores the frame overlay rect reported by the browser.
func (s *State) SetFrameGeometry(r model.Rect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame = r
}

// FrameGeometry returns the last reported frame overlay rect.
func (s *State) FrameGeometry() model.Rect {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}
