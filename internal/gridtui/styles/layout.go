package styles

import "github.com/charmbracelet/lipgloss"

const (
	// LayoutInnerPadding is the default panel content padding.
	LayoutInnerPadding = 1
)

// PanelStyle returns a focused/unfocused border style for panes.
func PanelStyle(theme Theme, focused bool) lipgloss.Style {
	return lipgloss.NewStyle().
		BorderStyle(panelBorderStyle(theme)).
		BorderForeground(lipgloss.Color(panelBorderColor(theme, focused))).
		Padding(0, LayoutInnerPadding)
}

// OverlayStyle returns the style for centered modal boxes.
func OverlayStyle(theme Theme) lipgloss.Style {
	return theme.baseStyle().
		BorderStyle(panelBorderStyle(theme)).
		BorderForeground(lipgloss.Color(theme.Borders.ActivePane)).
		Padding(1, 2)
}

// DividerStyle returns the divider style between sections.
func DividerStyle(theme Theme) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Borders.Divider))
}

func panelBorderColor(theme Theme, focused bool) string {
	if focused {
		return theme.Borders.ActivePane
	}
	return theme.Borders.InactivePane
}

func panelBorderStyle(theme Theme) lipgloss.Border {
	switch theme.BorderStyle {
	case "double":
		return lipgloss.DoubleBorder()
	case "sharp":
		return lipgloss.NormalBorder()
	case "hidden":
		return lipgloss.HiddenBorder()
	default:
		return lipgloss.RoundedBorder()
	}
}
