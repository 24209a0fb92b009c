package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// GridStyles contains pre-built styles for grid and column rendering.
type GridStyles struct {
	Theme Theme

	Header    lipgloss.Style
	Cell      lipgloss.Style
	RowNumber lipgloss.Style
	Selected  lipgloss.Style

	StatusOnline       lipgloss.Style
	StatusOffline      lipgloss.Style
	StatusProvisioning lipgloss.Style
	StatusUnknown      lipgloss.Style

	CategoryHeading lipgloss.Style
	ColumnEnabled   lipgloss.Style
	ColumnDisabled  lipgloss.Style

	Notice lipgloss.Style
	Flash  lipgloss.Style
}

// NewGridStyles builds a reusable style set for the given theme.
func NewGridStyles(theme Theme) GridStyles {
	return GridStyles{
		Theme:     theme,
		Header:    theme.accentStyle().Bold(true),
		Cell:      lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Base.Foreground)),
		RowNumber: theme.mutedStyle(),
		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Base.Background)).
			Background(lipgloss.Color(theme.Chrome.SelectedItem)).
			Bold(true),
		StatusOnline:       lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Device.Online)),
		StatusOffline:      lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Device.Offline)).Bold(true),
		StatusProvisioning: lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Device.Provisioning)),
		StatusUnknown:      theme.mutedStyle(),
		CategoryHeading: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Column.CategoryHeading)).
			Bold(true),
		ColumnEnabled:  lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Column.Enabled)),
		ColumnDisabled: lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Column.Disabled)).Faint(true),
		Notice:         lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Chrome.Notice)).Bold(true),
		Flash:          lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Chrome.Flash)).Bold(true),
	}
}

// RenderStatus colors a reported device status value. Values the agent
// invents that we do not recognize render muted rather than uncolored.
func (s GridStyles) RenderStatus(value string) string {
	switch NormalizeStatus(value) {
	case StatusOnline:
		return s.StatusOnline.Render(value)
	case StatusOffline:
		return s.StatusOffline.Render(value)
	case StatusProvisioning:
		return s.StatusProvisioning.Render(value)
	default:
		return s.StatusUnknown.Render(value)
	}
}

// Device status buckets used for coloring.
const (
	StatusOnline       = "online"
	StatusOffline      = "offline"
	StatusProvisioning = "provisioning"
	StatusUnknown      = "unknown"
)

// NormalizeStatus maps the agent's free-form status strings onto the
// color buckets. Agents disagree on vocabulary; the grid only needs to
// tell healthy from unhealthy from in-progress.
func NormalizeStatus(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "online", "up", "ok", "reachable":
		return StatusOnline
	case "offline", "down", "unreachable", "lost":
		return StatusOffline
	case "provisioning", "booting", "pending", "adopting":
		return StatusProvisioning
	default:
		return StatusUnknown
	}
}
