package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines the colour scheme of the scene and the stats panel.
type Theme struct {
	Name    string
	Arm     lipgloss.Color
	Bob     lipgloss.Color
	Trace   lipgloss.Color
	Pivot   lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
}

// Available themes
var (
	// pink arms and bobs over a grey trace
	ThemeClassic = Theme{
		Name:    "classic",
		Arm:     lipgloss.Color("#ffc0cb"),
		Bob:     lipgloss.Color("#ffc0cb"),
		Trace:   lipgloss.Color("#808080"),
		Pivot:   lipgloss.Color("#ffffff"),
		Accent:  lipgloss.Color("#ff69b4"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#666666"),
		Warning: lipgloss.Color("#ffaa00"),
		Error:   lipgloss.Color("#ff0000"),
	}

	ThemeCyberpunk = Theme{
		Name:    "cyberpunk",
		Arm:     lipgloss.Color("#ff00ff"), // Magenta
		Bob:     lipgloss.Color("#00ffff"), // Cyan
		Trace:   lipgloss.Color("#ffff00"), // Yellow
		Pivot:   lipgloss.Color("#ffffff"),
		Accent:  lipgloss.Color("#00ffff"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#666666"),
		Warning: lipgloss.Color("#ff8800"),
		Error:   lipgloss.Color("#ff0000"),
	}

	ThemeRetroGreen = Theme{
		Name:    "retro",
		Arm:     lipgloss.Color("#00ff00"), // Green phosphor
		Bob:     lipgloss.Color("#88ff88"),
		Trace:   lipgloss.Color("#005500"),
		Pivot:   lipgloss.Color("#00cc00"),
		Accent:  lipgloss.Color("#88ff88"),
		Text:    lipgloss.Color("#00ff00"),
		Muted:   lipgloss.Color("#005500"),
		Warning: lipgloss.Color("#ffff00"),
		Error:   lipgloss.Color("#ff0000"),
	}

	ThemeMinimal = Theme{
		Name:    "minimal",
		Arm:     lipgloss.Color("#ffffff"),
		Bob:     lipgloss.Color("#ffffff"),
		Trace:   lipgloss.Color("#888888"),
		Pivot:   lipgloss.Color("#cccccc"),
		Accent:  lipgloss.Color("#0088ff"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#888888"),
		Warning: lipgloss.Color("#ffaa00"),
		Error:   lipgloss.Color("#ff0000"),
	}

	ThemeOcean = Theme{
		Name:    "ocean",
		Arm:     lipgloss.Color("#00a8cc"),
		Bob:     lipgloss.Color("#ffd700"),
		Trace:   lipgloss.Color("#0077be"), // Ocean blue
		Pivot:   lipgloss.Color("#e0f0ff"),
		Accent:  lipgloss.Color("#ffd700"),
		Text:    lipgloss.Color("#e0f0ff"),
		Muted:   lipgloss.Color("#4488aa"),
		Warning: lipgloss.Color("#ffcc00"),
		Error:   lipgloss.Color("#ff4444"),
	}

	ThemeSunset = Theme{
		Name:    "sunset",
		Arm:     lipgloss.Color("#ff6b6b"), // Coral
		Bob:     lipgloss.Color("#feca57"),
		Trace:   lipgloss.Color("#ff9ff3"),
		Pivot:   lipgloss.Color("#fff5f5"),
		Accent:  lipgloss.Color("#feca57"),
		Text:    lipgloss.Color("#fff5f5"),
		Muted:   lipgloss.Color("#8b6b8c"),
		Warning: lipgloss.Color("#ffc048"),
		Error:   lipgloss.Color("#ff4757"),
	}

	// All available themes, in cycling order
	Themes = []Theme{
		ThemeClassic,
		ThemeCyberpunk,
		ThemeRetroGreen,
		ThemeMinimal,
		ThemeOcean,
		ThemeSunset,
	}
)

// GetTheme returns a theme by name, falling back to classic.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeClassic
}

// NextTheme returns the theme after current in cycling order.
func NextTheme(current Theme) Theme {
	for i, t := range Themes {
		if t.Name == current.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

// ThemeNames returns list of available theme names
func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
