package theme

// DefaultThemeID is the theme selected at startup and on reset.
const DefaultThemeID = "holographic"

// Builtin returns the static theme table, in keyboard shortcut order.
func Builtin() []Theme {
	out := make([]Theme, len(builtin))
	for i, t := range builtin {
		out[i] = t.clone()
	}
	return out
}

var builtin = []Theme{
	{
		ID:          "neon-cyber",
		Name:        "Neon Cyber",
		Description: "Futuristic cyberpunk aesthetic with neon colors and digital effects",
		CSSProperties: map[string]string{
			"--primary-color":       "#00ffff",
			"--secondary-color":     "#ff00ff",
			"--accent-color":        "#ffff00",
			"--background-gradient": "linear-gradient(135deg, #0a0a0a 0%, #1a0033 50%, #000a1a 100%)",
			"--background-pattern":  "radial-gradient(circle at 20% 80%, rgba(0, 255, 255, 0.1) 0%, transparent 50%), radial-gradient(circle at 80% 20%, rgba(255, 0, 255, 0.1) 0%, transparent 50%)",
			"--text-color":          "#ffffff",
			"--text-shadow":         "0 0 10px var(--primary-color), 0 0 20px var(--primary-color), 0 0 30px var(--primary-color)",
			"--frame-border":        "2px solid var(--primary-color)",
			"--frame-shadow":        "0 0 20px var(--primary-color), inset 0 0 20px rgba(0, 255, 255, 0.1)",
			"--font-family":         `"Orbitron", "Courier New", monospace`,
			"--animation-glow":      "neon-glow 2s ease-in-out infinite alternate",
		},
		Animations: Animations{Entrance: "cyber-entrance", Hover: "cyber-hover", Transition: "cyber-transition"},
		Effects:    map[string]bool{"particles": true, "scanlines": true, "glitch": true},
	},
	{
		ID:          "nature-organic",
		Name:        "Nature Organic",
		Description: "Earth-inspired design with organic shapes and natural colors",
		CSSProperties: map[string]string{
			"--primary-color":       "#2d5016",
			"--secondary-color":     "#8fbc8f",
			"--accent-color":        "#daa520",
			"--background-gradient": "linear-gradient(135deg, #f0f8e8 0%, #e8f5e8 30%, #d4f1d4 70%, #c8e6c8 100%)",
			"--background-pattern":  "radial-gradient(ellipse at top left, rgba(45, 80, 22, 0.1) 0%, transparent 50%), radial-gradient(ellipse at bottom right, rgba(143, 188, 143, 0.1) 0%, transparent 50%)",
			"--text-color":          "#2d5016",
			"--text-shadow":         "2px 2px 4px rgba(45, 80, 22, 0.3)",
			"--frame-border":        "3px solid var(--secondary-color)",
			"--frame-shadow":        "0 8px 32px rgba(45, 80, 22, 0.2), inset 0 0 0 1px rgba(143, 188, 143, 0.3)",
			"--font-family":         `"Dancing Script", "Georgia", serif`,
			"--animation-glow":      "nature-breathe 3s ease-in-out infinite",
		},
		Animations: Animations{Entrance: "nature-grow", Hover: "nature-sway", Transition: "nature-bloom"},
		Effects:    map[string]bool{"leaves": true, "organic": true, "breathing": true},
	},
	{
		ID:          "minimalist-modern",
		Name:        "Minimalist Modern",
		Description: "Clean, sophisticated design with geometric precision",
		CSSProperties: map[string]string{
			"--primary-color":       "#2c3e50",
			"--secondary-color":     "#ecf0f1",
			"--accent-color":        "#3498db",
			"--background-gradient": "linear-gradient(135deg, #ffffff 0%, #f8f9fa 50%, #e9ecef 100%)",
			"--background-pattern":  "linear-gradient(90deg, rgba(52, 152, 219, 0.03) 50%, transparent 50%), linear-gradient(rgba(52, 152, 219, 0.03) 50%, transparent 50%)",
			"--text-color":          "#2c3e50",
			"--text-shadow":         "none",
			"--frame-border":        "1px solid var(--accent-color)",
			"--frame-shadow":        "0 10px 40px rgba(44, 62, 80, 0.1), 0 2px 8px rgba(44, 62, 80, 0.1)",
			"--font-family":         `"Inter", "Helvetica Neue", sans-serif`,
			"--animation-glow":      "minimal-pulse 4s ease-in-out infinite",
		},
		Animations: Animations{Entrance: "minimal-slide", Hover: "minimal-lift", Transition: "minimal-fade"},
		Effects:    map[string]bool{"geometric": true, "clean": true, "subtle": true},
	},
	{
		ID:          "retro-gaming",
		Name:        "Retro Gaming",
		Description: "8-bit inspired design with pixel art aesthetics",
		CSSProperties: map[string]string{
			"--primary-color":       "#ff6b35",
			"--secondary-color":     "#f7931e",
			"--accent-color":        "#ffd23f",
			"--background-gradient": "linear-gradient(135deg, #1a1a2e 0%, #16213e 50%, #0f3460 100%)",
			"--background-pattern":  "repeating-linear-gradient(90deg, transparent, transparent 2px, rgba(255, 107, 53, 0.1) 2px, rgba(255, 107, 53, 0.1) 4px), repeating-linear-gradient(0deg, transparent, transparent 2px, rgba(247, 147, 30, 0.1) 2px, rgba(247, 147, 30, 0.1) 4px)",
			"--text-color":          "#ffd23f",
			"--text-shadow":         "2px 2px 0px var(--primary-color), 4px 4px 0px rgba(0, 0, 0, 0.5)",
			"--frame-border":        "4px solid var(--secondary-color)",
			"--frame-shadow":        "8px 8px 0px var(--primary-color), 12px 12px 0px rgba(0, 0, 0, 0.3)",
			"--font-family":         `"Press Start 2P", "Courier New", monospace`,
			"--animation-glow":      "retro-blink 1s step-end infinite",
		},
		Animations: Animations{Entrance: "retro-spawn", Hover: "retro-bounce", Transition: "retro-warp"},
		Effects:    map[string]bool{"pixelated": true, "scanlines": true, "retro": true},
	},
	{
		ID:          "holographic",
		Name:        "Holographic",
		Description: "Iridescent and metallic effects with futuristic styling",
		CSSProperties: map[string]string{
			"--primary-color":       "#c471ed",
			"--secondary-color":     "#12c2e9",
			"--accent-color":        "#f64f59",
			"--background-gradient": "linear-gradient(135deg, #667eea 0%, #764ba2 25%, #f093fb 50%, #f5576c 75%, #4facfe 100%)",
			"--background-pattern":  "conic-gradient(from 0deg at 50% 50%, rgba(196, 113, 237, 0.1) 0deg, rgba(18, 194, 233, 0.1) 120deg, rgba(246, 79, 89, 0.1) 240deg, rgba(196, 113, 237, 0.1) 360deg)",
			"--text-color":          "#ffffff",
			"--text-shadow":         "0 0 10px rgba(255, 255, 255, 0.8), 0 0 20px var(--primary-color), 0 0 30px var(--secondary-color)",
			"--frame-border":        "2px solid transparent",
			"--frame-shadow":        "0 0 30px rgba(196, 113, 237, 0.5), inset 0 0 30px rgba(18, 194, 233, 0.2)",
			"--font-family":         `"Exo 2", "Arial", sans-serif`,
			"--animation-glow":      "holographic-shift 3s linear infinite",
		},
		Animations: Animations{Entrance: "holographic-materialize", Hover: "holographic-float", Transition: "holographic-morph"},
		Effects:    map[string]bool{"holographic": true, "iridescent": true, "metallic": true},
	},
}
