package theme

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"nameplate/events"
	"nameplate/view"
)

// TransitionDuration matches the CSS transition duration of theme changes.
const TransitionDuration = 500 * time.Millisecond

const transitioningClass = "theme-transitioning"

var (
	ErrInvalidTheme         = errors.New("theme must have id and name")
	ErrThemeNotFound        = errors.New("theme not found")
	ErrTransitionInProgress = errors.New("theme transition already in progress")
)

// ChangingEvent is published before a theme switch mutates anything.
type ChangingEvent struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ChangedEvent is published after the current theme changed.
type ChangedEvent struct {
	Theme    Theme  `json:"theme"`
	Previous *Theme `json:"previous,omitempty"`
}

// ErrorEvent is published when a switch fails during its transition.
type ErrorEvent struct {
	Err     error  `json:"-"`
	ThemeID string `json:"themeId"`
}

// Manager owns the current theme. At most one transition runs at a time;
// switch requests arriving during a transition are rejected.
type Manager struct {
	mu            sync.Mutex
	themes        map[string]Theme
	order         []string
	current       *Theme
	transitioning bool
	preloaded     map[string]bool

	bus        *events.Bus
	applier    view.Applier
	loader     AssetLoader
	transition time.Duration
	logger     *log.Logger

	preloads sync.WaitGroup
}

// Option configures a Manager.
type Option func(*Manager)

// WithAssetLoader sets the loader used to preload theme assets.
func WithAssetLoader(l AssetLoader) Option {
	return func(m *Manager) { m.loader = l }
}

// WithTransitionDuration overrides TransitionDuration.
func WithTransitionDuration(d time.Duration) Option {
	return func(m *Manager) { m.transition = d }
}

// WithLogger sets the manager's logger.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) { m.logger = l.WithPrefix("theme") }
}

// NewManager creates a manager and registers themes in order. It subscribes
// to events.ThemeSwitch on bus.
func NewManager(bus *events.Bus, applier view.Applier, themes []Theme, opts ...Option) *Manager {
	m := &Manager{
		themes:     make(map[string]Theme),
		preloaded:  make(map[string]bool),
		bus:        bus,
		applier:    applier,
		transition: TransitionDuration,
		logger:     log.Default().WithPrefix("theme"),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.applier == nil {
		m.applier = view.Discard{}
	}

	for _, t := range themes {
		_ = m.AddTheme(t)
	}

	bus.On(events.ThemeSwitch, func(data any) {
		id, ok := data.(string)
		if !ok {
			m.logger.Warn("ignoring theme switch request", "payload", data)
			return
		}
		go func() { _ = m.SwitchTheme(context.Background(), id) }()
	})

	return m
}

// AddTheme registers a theme and starts preloading its assets in the
// background. Re-registering an id replaces the theme in place.
func (m *Manager) AddTheme(t Theme) error {
	if t.ID == "" || t.Name == "" {
		m.logger.Error("theme must have id and name properties", "id", t.ID, "name", t.Name)
		return ErrInvalidTheme
	}

	m.mu.Lock()
	if _, exists := m.themes[t.ID]; !exists {
		m.order = append(m.order, t.ID)
	}
	m.themes[t.ID] = t.clone()
	m.mu.Unlock()

	m.startPreload(t.ID, t.Assets.List())
	return nil
}

func (m *Manager) startPreload(id string, assets []string) {
	if m.loader == nil || len(assets) == 0 {
		return
	}

	m.preloads.Add(1)
	go func() {
		defer m.preloads.Done()

		if err := preload(context.Background(), m.loader, assets); err != nil {
			m.logger.Warn("failed to preload some assets", "theme", id, "err", err)
			return
		}

		m.mu.Lock()
		m.preloaded[id] = true
		m.mu.Unlock()
		m.logger.Debug("theme assets preloaded", "theme", id, "count", len(assets))
	}()
}

// WaitPreloads blocks until every started preload finished.
func (m *Manager) WaitPreloads() {
	m.preloads.Wait()
}

// SwitchTheme makes id the current theme. Unknown ids and calls made while
// another transition runs fail without changing anything.
func (m *Manager) SwitchTheme(ctx context.Context, id string) error {
	m.mu.Lock()
	next, ok := m.themes[id]
	if !ok {
		m.mu.Unlock()
		m.logger.Error("theme not found", "id", id)
		return fmt.Errorf("%w: %s", ErrThemeNotFound, id)
	}
	if m.transitioning {
		m.mu.Unlock()
		m.logger.Warn("theme transition already in progress", "requested", id)
		return ErrTransitionInProgress
	}
	m.transitioning = true
	prev := m.current
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.transitioning = false
		m.mu.Unlock()
	}()

	from := ""
	if prev != nil {
		from = prev.ID
	}
	m.bus.Emit(events.ThemeChanging, ChangingEvent{From: from, To: id})

	if err := m.applyTransition(ctx, prev, next); err != nil {
		m.logger.Error("error switching theme", "id", id, "err", err)
		m.bus.Emit(events.ThemeError, ErrorEvent{Err: err, ThemeID: id})
		return fmt.Errorf("switch theme %s: %w", id, err)
	}

	m.mu.Lock()
	m.current = &next
	m.mu.Unlock()

	m.logger.Info("theme changed", "from", from, "to", id)
	m.bus.Emit(events.ThemeChanged, ChangedEvent{Theme: next.clone(), Previous: clonePtr(prev)})
	return nil
}

func (m *Manager) applyTransition(ctx context.Context, from *Theme, to Theme) error {
	if err := m.applier.AddClass(transitioningClass); err != nil {
		return fmt.Errorf("start transition: %w", err)
	}
	defer func() {
		if err := m.applier.RemoveClass(transitioningClass); err != nil {
			m.logger.Warn("failed to end transition", "err", err)
		}
	}()

	if len(to.CSSProperties) > 0 {
		if err := m.applier.SetProperties(to.clone().CSSProperties); err != nil {
			return fmt.Errorf("apply properties: %w", err)
		}
	}
	if from != nil {
		if err := m.applier.RemoveClass(from.Class()); err != nil {
			return fmt.Errorf("remove class: %w", err)
		}
	}
	if err := m.applier.AddClass(to.Class()); err != nil {
		return fmt.Errorf("add class: %w", err)
	}

	timer := time.NewTimer(m.transition)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Current returns the current theme, if one has been applied.
func (m *Manager) Current() (Theme, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return Theme{}, false
	}
	return m.current.clone(), true
}

// Get returns a registered theme by id.
func (m *Manager) Get(id string) (Theme, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.themes[id]
	if !ok {
		return Theme{}, false
	}
	return t.clone(), true
}

// Themes returns all themes in registration order.
func (m *Manager) Themes() []Theme {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Theme, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.themes[id].clone())
	}
	return out
}

// ThemeAt returns the theme at zero-based index i in registration order.
func (m *Manager) ThemeAt(i int) (Theme, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i < 0 || i >= len(m.order) {
		return Theme{}, false
	}
	return m.themes[m.order[i]].clone(), true
}

// IsPreloaded reports whether every asset of the theme loaded.
func (m *Manager) IsPreloaded(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.preloaded[id]
}

// IsTransitioning reports whether a switch is in flight.
func (m *Manager) IsTransitioning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transitioning
}

// ThemeCSS renders a theme as a stylesheet: its custom properties on :root
// and a marker rule for its body class.
func (m *Manager) ThemeCSS(id string) (string, bool) {
	t, ok := m.Get(id)
	if !ok {
		return "", false
	}

	names := make([]string, 0, len(t.CSSProperties))
	for name := range t.CSSProperties {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(":root{\n")
	for _, name := range names {
		b.WriteString("  ")
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(t.CSSProperties[name])
		b.WriteString(";\n")
	}
	b.WriteString("}\n")
	b.WriteString("body.")
	b.WriteString(t.Class())
	b.WriteString("{--theme-id: \"")
	b.WriteString(t.ID)
	b.WriteString("\";")
	if t.Animations.Entrance != "" {
		b.WriteString("--animation-entrance: ")
		b.WriteString(t.Animations.Entrance)
		b.WriteString(";")
	}
	b.WriteString("}\n")

	return b.String(), true
}

func clonePtr(t *Theme) *Theme {
	if t == nil {
		return nil
	}
	c := t.clone()
	return &c
}
