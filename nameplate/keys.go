package nameplate

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"

	"nameplate/events"
	"nameplate/theme"
)

// ThemeSwitcher is the part of the theme manager the keymap drives.
type ThemeSwitcher interface {
	ThemeAt(i int) (theme.Theme, bool)
	SwitchTheme(ctx context.Context, id string) error
}

// Keymap maps key presses to actions: "1" to "5" select a theme by
// position, "Escape" resets the name and theme.
type Keymap struct {
	state        *State
	themes       ThemeSwitcher
	bus          *events.Bus
	defaultTheme string
	logger       *log.Logger
}

// NewKeymap creates a keymap. Escape switches to defaultTheme.
func NewKeymap(state *State, themes ThemeSwitcher, bus *events.Bus, defaultTheme string, logger *log.Logger) *Keymap {
	if defaultTheme == "" {
		defaultTheme = theme.DefaultThemeID
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Keymap{
		state:        state,
		themes:       themes,
		bus:          bus,
		defaultTheme: defaultTheme,
		logger:       logger.WithPrefix("keys"),
	}
}

// HandleKey performs the action bound to key and reports whether one was
// bound. A switch rejected because a transition is running is not an error.
func (k *Keymap) HandleKey(ctx context.Context, key string) (bool, error) {
	switch {
	case len(key) == 1 && key[0] >= '1' && key[0] <= '5':
		t, ok := k.themes.ThemeAt(int(key[0] - '1'))
		if !ok {
			return false, nil
		}
		return true, k.switchTheme(ctx, t.ID)
	case key == "Escape":
		return true, k.Reset(ctx)
	default:
		return false, nil
	}
}

// Reset restores the placeholder name and the default theme, then publishes
// events.AppReset.
func (k *Keymap) Reset(ctx context.Context) error {
	k.state.Reset()
	err := k.switchTheme(ctx, k.defaultTheme)
	if k.bus != nil {
		k.bus.Emit(events.AppReset, nil)
	}
	return err
}

func (k *Keymap) switchTheme(ctx context.Context, id string) error {
	err := k.themes.SwitchTheme(ctx, id)
	if errors.Is(err, theme.ErrTransitionInProgress) {
		k.logger.Debug("key ignored during theme transition", "theme", id)
		return nil
	}
	return err
}
