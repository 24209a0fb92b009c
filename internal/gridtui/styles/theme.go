package styles

import "github.com/charmbracelet/lipgloss"

// BaseColors defines global UI colors.
type BaseColors struct {
	Background string
	Foreground string
	Muted      string
	Accent     string
	Border     string
}

// DeviceColors defines colors for reported device status values.
type DeviceColors struct {
	Online       string
	Offline      string
	Provisioning string
}

// ColumnColors defines colors for the column settings view.
type ColumnColors struct {
	CategoryHeading string
	Enabled         string
	Disabled        string
}

// ChromeColors defines non-content UI colors.
type ChromeColors struct {
	Header       string
	Footer       string
	StatusBar    string
	SelectedItem string
	Flash        string
	Notice       string
}

// BorderColors defines border colors for pane state.
type BorderColors struct {
	ActivePane   string
	InactivePane string
	Divider      string
}

// Theme defines the portscout TUI style tokens.
type Theme struct {
	Name        string
	BorderStyle string // "rounded", "sharp", "double", "hidden"

	Base    BaseColors
	Device  DeviceColors
	Column  ColumnColors
	Chrome  ChromeColors
	Borders BorderColors
}

// Themes lists available palettes by name.
var Themes = map[string]Theme{
	"default":   DefaultTheme,
	"dark":      DarkTheme,
	"solarized": SolarizedTheme,
}

func (t Theme) baseStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Base.Foreground)).Background(lipgloss.Color(t.Base.Background))
}

func (t Theme) mutedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Base.Muted))
}

func (t Theme) accentStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Base.Accent))
}
