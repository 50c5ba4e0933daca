package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines color scheme for the TUI
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
}

var (
	ThemeDefault = Theme{
		Name:      "default",
		Primary:   lipgloss.Color("#7fff7f"), // small balls
		Secondary: lipgloss.Color("#7f7fff"), // medium balls
		Accent:    lipgloss.Color("#ff7f7f"), // large balls
		Text:      lipgloss.Color("#e0e0e0"),
		Muted:     lipgloss.Color("#666688"),
		Success:   lipgloss.Color("#00ff88"),
		Warning:   lipgloss.Color("#ffcc00"),
		Error:     lipgloss.Color("#ff4444"),
	}

	ThemeCyberpunk = Theme{
		Name:      "cyberpunk",
		Primary:   lipgloss.Color("#ff00ff"),
		Secondary: lipgloss.Color("#00ffff"),
		Accent:    lipgloss.Color("#ffff00"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#666666"),
		Success:   lipgloss.Color("#00ff00"),
		Warning:   lipgloss.Color("#ff8800"),
		Error:     lipgloss.Color("#ff0000"),
	}

	ThemeRetroGreen = Theme{
		Name:      "retro",
		Primary:   lipgloss.Color("#00ff00"),
		Secondary: lipgloss.Color("#00cc00"),
		Accent:    lipgloss.Color("#88ff88"),
		Text:      lipgloss.Color("#00ff00"),
		Muted:     lipgloss.Color("#005500"),
		Success:   lipgloss.Color("#88ff88"),
		Warning:   lipgloss.Color("#ffff00"),
		Error:     lipgloss.Color("#ff0000"),
	}

	ThemeMinimal = Theme{
		Name:      "minimal",
		Primary:   lipgloss.Color("#ffffff"),
		Secondary: lipgloss.Color("#cccccc"),
		Accent:    lipgloss.Color("#0088ff"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#888888"),
		Success:   lipgloss.Color("#00ff00"),
		Warning:   lipgloss.Color("#ffaa00"),
		Error:     lipgloss.Color("#ff0000"),
	}

	ThemeOcean = Theme{
		Name:      "ocean",
		Primary:   lipgloss.Color("#0077be"),
		Secondary: lipgloss.Color("#00a8cc"),
		Accent:    lipgloss.Color("#ffd700"),
		Text:      lipgloss.Color("#e0f0ff"),
		Muted:     lipgloss.Color("#4488aa"),
		Success:   lipgloss.Color("#00ff88"),
		Warning:   lipgloss.Color("#ffcc00"),
		Error:     lipgloss.Color("#ff4444"),
	}

	Themes = []Theme{
		ThemeDefault,
		ThemeCyberpunk,
		ThemeRetroGreen,
		ThemeMinimal,
		ThemeOcean,
	}
)

// GetTheme returns a theme by name, falling back to the default one.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeDefault
}

// NextTheme returns the theme after t, wrapping around.
func NextTheme(t Theme) Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return ThemeDefault
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
