package theme

import (
	"encoding/json"
	"errors"
	"html"
	"net/http"
	"strings"
)

// Handler handles theme-related HTTP requests.
type Handler struct {
	manager *Manager
}

// NewHandler creates a new theme handler.
func NewHandler(manager *Manager) *Handler {
	return &Handler{
		manager: manager,
	}
}

type themeResponse struct {
	Theme
	Active    bool `json:"active"`
	Preloaded bool `json:"preloaded"`
	Shortcut  int  `json:"shortcut,omitempty"`
}

// HandleThemes returns every registered theme in shortcut order.
func (h *Handler) HandleThemes(w http.ResponseWriter, r *http.Request) {
	current, _ := h.manager.Current()
	themes := h.manager.Themes()

	resp := make([]themeResponse, 0, len(themes))
	for i, t := range themes {
		tr := themeResponse{
			Theme:     t,
			Active:    t.ID == current.ID,
			Preloaded: h.manager.IsPreloaded(t.ID),
		}
		if i < 5 {
			tr.Shortcut = i + 1
		}
		resp = append(resp, tr)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "failed to encode themes", http.StatusInternalServerError)
		return
	}
}

// HandleSwitch switches the current theme. The request returns once the
// transition finished.
func (h *Handler) HandleSwitch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	err := h.manager.SwitchTheme(r.Context(), req.ID)
	switch {
	case errors.Is(err, ErrThemeNotFound):
		http.Error(w, "theme not found", http.StatusNotFound)
		return
	case errors.Is(err, ErrTransitionInProgress):
		http.Error(w, "theme transition already in progress", http.StatusConflict)
		return
	case err != nil:
		http.Error(w, "failed to switch theme", http.StatusInternalServerError)
		return
	}

	current, _ := h.manager.Current()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(current)
}

// HandleCSS serves the stylesheet of a theme, defaulting to the current one.
func (h *Handler) HandleCSS(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		current, ok := h.manager.Current()
		if !ok {
			http.Error(w, "no theme applied", http.StatusNotFound)
			return
		}
		id = current.ID
	}

	css, ok := h.manager.ThemeCSS(id)
	if !ok {
		http.Error(w, "theme not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write([]byte(css))
}

// GenerateThemeMenuHTML generates the buttons of the theme selector.
func (h *Handler) GenerateThemeMenuHTML(currentTheme string) string {
	var builder strings.Builder

	for _, t := range h.manager.Themes() {
		builder.WriteString(`<button class="theme-button interactive-element`)
		if t.ID == currentTheme {
			builder.WriteString(` active`)
		}
		builder.WriteString(`" data-theme="`)
		builder.WriteString(html.EscapeString(t.ID))
		builder.WriteString(`" aria-label="Switch to `)
		builder.WriteString(html.EscapeString(t.Name))
		builder.WriteString(` theme" title="`)
		builder.WriteString(html.EscapeString(t.Name + ": " + t.Description))
		builder.WriteString(`"></button>`)
	}

	return builder.String()
}
