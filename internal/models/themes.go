package models

// Built-in themes. The document stores the full theme value so the frontend
// renders whatever the admin last picked, including themes removed from this
// catalog later.
var Themes = []Theme{
	{
		ID:   "default",
		Name: "Défaut",
		Styles: map[string]string{
			"--font-primary":           `"Inter", sans-serif`,
			"--font-url":               "https://fonts.googleapis.com/css2?family=Inter:wght@400;600;700&display=swap",
			"--color-bg":               "#0f172a",
			"--color-text":             "#e2e8f0",
			"--color-text-muted":       "#94a3b8",
			"--color-card":             "#1e293b",
			"--color-primary":          "#6366f1",
			"--color-primary-accent":   "#818cf8",
			"--color-secondary":        "#a855f7",
			"--color-secondary-accent": "#c084fc",
			"--color-tertiary":         "#0ea5e9",
			"--color-tertiary-accent":  "#38bdf8",
			"--color-success":          "#22c55e",
			"--color-danger":           "#ef4444",
			"--color-danger-accent":    "#f87171",
			"--color-border":           "#334155",
			"--color-input-bg":         "#1e293b",
			"--shadow-primary":         "0 4px 14px 0 rgba(99, 102, 241, 0.3)",
			"--gradient-start":         "#a855f7",
			"--gradient-mid":           "#6366f1",
			"--gradient-end":           "#0ea5e9",
		},
	},
	{
		ID:   "forest",
		Name: "Forêt Tropicale",
		Styles: map[string]string{
			"--font-primary":           `"Roboto Slab", serif`,
			"--font-url":               "https://fonts.googleapis.com/css2?family=Roboto+Slab:wght@400;700&display=swap",
			"--color-bg":               "#1a2e29",
			"--color-text":             "#e8f5e9",
			"--color-text-muted":       "#a5d6a7",
			"--color-card":             "#2e4d3f",
			"--color-primary":          "#4caf50",
			"--color-primary-accent":   "#81c784",
			"--color-secondary":        "#ffb300",
			"--color-secondary-accent": "#ffd54f",
			"--color-tertiary":         "#8d6e63",
			"--color-tertiary-accent":  "#bcaaa4",
			"--color-success":          "#4caf50",
			"--color-danger":           "#e57373",
			"--color-danger-accent":    "#ef9a9a",
			"--color-border":           "#3e5e51",
			"--color-input-bg":         "#2e4d3f",
			"--shadow-primary":         "0 4px 14px 0 rgba(76, 175, 80, 0.3)",
			"--gradient-start":         "#ffb300",
			"--gradient-mid":           "#4caf50",
			"--gradient-end":           "#8d6e63",
		},
	},
}

// DefaultTheme seeds currentTheme on first boot.
func DefaultTheme() *Theme {
	return Themes[0].clone()
}
