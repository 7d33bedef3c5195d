package theme

import "maps"

// Theme is a named visual configuration for the nameplate page.
type Theme struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	CSSProperties map[string]string `json:"cssProperties"`
	Animations    Animations        `json:"animations"`
	Effects       map[string]bool   `json:"effects"`
	Assets        Assets            `json:"assets"`
}

// Animations names the CSS keyframe animations a theme uses.
type Animations struct {
	Entrance   string `json:"entrance"`
	Hover      string `json:"hover"`
	Transition string `json:"transition"`
}

// Assets lists image URLs preloaded when a theme is registered.
type Assets struct {
	FrameImage         string   `json:"frameImage,omitempty"`
	BackgroundPattern  string   `json:"backgroundPattern,omitempty"`
	DecorativeElements []string `json:"decorativeElements,omitempty"`
}

// List returns every declared asset in declaration order.
func (a Assets) List() []string {
	var out []string
	if a.FrameImage != "" {
		out = append(out, a.FrameImage)
	}
	if a.BackgroundPattern != "" {
		out = append(out, a.BackgroundPattern)
	}
	return append(out, a.DecorativeElements...)
}

// Class is the body class applied while the theme is active.
func (t Theme) Class() string {
	return "theme-" + t.ID
}

// FontFamily returns the --font-family property, if any.
func (t Theme) FontFamily() string {
	return t.CSSProperties["--font-family"]
}

func (t Theme) clone() Theme {
	c := t
	c.CSSProperties = maps.Clone(t.CSSProperties)
	c.Effects = maps.Clone(t.Effects)
	c.Assets.DecorativeElements = append([]string(nil), t.Assets.DecorativeElements...)
	return c
}

// ThemeMetadata represents the metadata comment block of a CSS theme file.
type ThemeMetadata struct {
	ID          string
	Name        string
	Description string
	Frame       string
	Effects     []string
	Entrance    string
	Hover       string
	Transition  string
}
