package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines the color scheme of the live view.
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Warning   lipgloss.Color
}

var (
	ThemeDissolve = Theme{
		Name:      "dissolve",
		Primary:   lipgloss.Color("#4d9bff"),
		Secondary: lipgloss.Color("#9cc7ff"),
		Accent:    lipgloss.Color("#ff88ff"),
		Text:      lipgloss.Color("#e6f0ff"),
		Muted:     lipgloss.Color("#56607a"),
		Warning:   lipgloss.Color("#ffaa00"),
	}

	ThemeEmber = Theme{
		Name:      "ember",
		Primary:   lipgloss.Color("#ff6b3d"),
		Secondary: lipgloss.Color("#feca57"),
		Accent:    lipgloss.Color("#ffe08a"),
		Text:      lipgloss.Color("#fff5f0"),
		Muted:     lipgloss.Color("#7a5a50"),
		Warning:   lipgloss.Color("#ff4757"),
	}

	ThemeRetroGreen = Theme{
		Name:      "retro",
		Primary:   lipgloss.Color("#00ff00"),
		Secondary: lipgloss.Color("#00cc00"),
		Accent:    lipgloss.Color("#88ff88"),
		Text:      lipgloss.Color("#00ff00"),
		Muted:     lipgloss.Color("#005500"),
		Warning:   lipgloss.Color("#ffff00"),
	}

	ThemeMinimal = Theme{
		Name:      "minimal",
		Primary:   lipgloss.Color("#ffffff"),
		Secondary: lipgloss.Color("#cccccc"),
		Accent:    lipgloss.Color("#0088ff"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#888888"),
		Warning:   lipgloss.Color("#ffaa00"),
	}

	Themes = []Theme{
		ThemeDissolve,
		ThemeEmber,
		ThemeRetroGreen,
		ThemeMinimal,
	}
)

// GetTheme returns a theme by name, falling back to the default.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeDissolve
}

// ThemeFor returns the default theme recolored to a particle color.
func ThemeFor(color string) Theme {
	t := ThemeDissolve
	if color != "" {
		t.Primary = lipgloss.Color(color)
	}
	return t
}

// NextTheme cycles through Themes.
func NextTheme(current Theme) Theme {
	for i, t := range Themes {
		if t.Name == current.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
