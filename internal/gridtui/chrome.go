package gridtui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/portscout/portscout/internal/gridtui/styles"
	"github.com/portscout/portscout/internal/models"
)

// View assembles the frame: header, active view, status bar, footer.
func (m *Model) View() string {
	active := m.activeView()
	if active == nil {
		return "no active view"
	}

	header := m.renderHeader()
	status := m.renderStatusBar()
	footer := m.renderFooter()

	contentHeight := m.height - lipgloss.Height(header) - lipgloss.Height(status) - lipgloss.Height(footer)
	if contentHeight < 0 {
		contentHeight = 0
	}
	body := active.View(m.width, contentHeight, m.theme)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, status, footer)
}

func (m *Model) renderHeader() string {
	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Base.Foreground)).
		Background(lipgloss.Color(m.theme.Chrome.Header)).
		Bold(true).
		Padding(0, 1)

	left := "portscout"
	if m.version != "" {
		left += " " + m.version
	}
	line := joinSpread(left, viewTitle(m.activeViewID()), m.connectionStatus(), maxInt(0, m.width-2))
	return style.Width(maxInt(0, m.width)).Render(line)
}

func (m *Model) renderStatusBar() string {
	width := maxInt(0, m.width)
	if width == 0 {
		return ""
	}
	base := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Base.Muted)).
		Background(lipgloss.Color(m.theme.Chrome.StatusBar))

	segments := make([]string, 0, 3)
	if m.agentURL != "" {
		segments = append(segments, m.agentURL)
	}
	segments = append(segments, deviceSummary(m.snap))
	segments = append(segments, "refreshed "+relTime(time.Now(), m.snap.FetchedAt))
	left := " " + strings.Join(segments, "  ·  ")

	right := ""
	if m.flash != "" {
		right = "✓ " + m.flash + " "
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		left = truncate(left, maxInt(0, width-lipgloss.Width(right)))
		gap = width - lipgloss.Width(left) - lipgloss.Width(right)
	}
	line := base.Render(left + strings.Repeat(" ", maxInt(0, gap)))
	if right == "" {
		return line
	}
	flashStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Chrome.Flash)).
		Background(lipgloss.Color(m.theme.Chrome.StatusBar)).
		Bold(true)
	return line + flashStyle.Render(right)
}

func (m *Model) renderFooter() string {
	helpView := m.help.View(m.footerKeys())
	notice := m.footerNotice()
	if notice == "" {
		return helpView
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.gs.Notice.Render(notice), helpView)
}

func (m *Model) footerNotice() string {
	switch {
	case m.notice != "":
		return "⚠ " + m.notice
	case m.agentDown && m.agentErr != "":
		return "⚠ scan agent unreachable; showing last known data (" + m.agentErr + ")"
	case m.agentDown:
		return "⚠ scan agent unreachable; showing last known data"
	}
	return ""
}

func (m *Model) connectionStatus() string {
	switch {
	case m.agentDown:
		return "● unreachable"
	case m.snap.Resolved():
		return "● connected"
	default:
		return "○ connecting"
	}
}

// helpKeyMap adapts the active view's bindings for the bubbles help
// widget.
type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

func (m *Model) footerKeys() helpKeyMap {
	bindings := []key.Binding{}
	if keyed, ok := m.activeView().(interface{ keyBindings() []key.Binding }); ok {
		bindings = append(bindings, keyed.keyBindings()...)
	}
	bindings = append(bindings, appKeys.Help, appKeys.Quit)
	return helpKeyMap{short: bindings, full: [][]key.Binding{bindings}}
}

func viewTitle(id ViewID) string {
	switch id {
	case ViewColumns:
		return "column manager"
	case ViewUsername:
		return "ssh username"
	default:
		return "device grid"
	}
}

// deviceSummary counts devices by normalized status when the catalog
// carries a status column.
func deviceSummary(snap models.CatalogSnapshot) string {
	total := len(snap.Devices)
	if total == 0 {
		return "no devices"
	}
	id := statusColumnID(snap.Columns)
	if id == "" {
		return fmt.Sprintf("%d devices", total)
	}

	var online, offline, provisioning int
	for _, dev := range snap.Devices {
		switch styles.NormalizeStatus(dev.Field(id)) {
		case styles.StatusOnline:
			online++
		case styles.StatusOffline:
			offline++
		case styles.StatusProvisioning:
			provisioning++
		}
	}

	detail := make([]string, 0, 3)
	if online > 0 {
		detail = append(detail, fmt.Sprintf("%d up", online))
	}
	if offline > 0 {
		detail = append(detail, fmt.Sprintf("%d down", offline))
	}
	if provisioning > 0 {
		detail = append(detail, fmt.Sprintf("%d provisioning", provisioning))
	}
	if len(detail) == 0 {
		return fmt.Sprintf("%d devices", total)
	}
	return fmt.Sprintf("%d devices (%s)", total, strings.Join(detail, ", "))
}

// statusColumnID finds the column carrying device status, by ID or
// label. Agents are not required to report one.
func statusColumnID(cols []models.GridColumn) string {
	for _, col := range cols {
		if strings.EqualFold(col.ID, "status") || strings.EqualFold(col.Label, "status") {
			return col.ID
		}
	}
	return ""
}

func joinSpread(left, center, right string, width int) string {
	left = strings.TrimSpace(left)
	center = strings.TrimSpace(center)
	right = strings.TrimSpace(right)
	if width <= 0 {
		return left
	}

	space := width - lipgloss.Width(left) - lipgloss.Width(center) - lipgloss.Width(right)
	if space < 2 {
		line := left
		if right != "" {
			line += "  " + right
		}
		return truncate(line, width)
	}

	leftGap := space / 2
	rightGap := space - leftGap
	return left + strings.Repeat(" ", leftGap) + center + strings.Repeat(" ", rightGap) + right
}

func relTime(now, ts time.Time) string {
	if ts.IsZero() {
		return "never"
	}
	d := now.Sub(ts)
	switch {
	case d < time.Second:
		return "just now"
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
