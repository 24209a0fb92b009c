package gridtui

import (
	"context"
	"errors"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/portscout/portscout/internal/catalog"
	"github.com/portscout/portscout/internal/gridtui/styles"
	"github.com/portscout/portscout/internal/models"
	"github.com/portscout/portscout/internal/prefs"
)

const (
	gridMinColumnWidth = 4
	gridMaxColumnWidth = 28
	rowNumberWidth     = 4
)

type gridKeyMap struct {
	Refresh  key.Binding
	Columns  key.Binding
	Username key.Binding
}

var gridKeys = gridKeyMap{
	Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Columns:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "columns")),
	Username: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "ssh user")),
}

// gridDataMsg carries the grid's working state after a fetch: the
// merged column list from the preference manager plus the devices from
// the current snapshot.
type gridDataMsg struct {
	cols     []models.GridColumn
	devices  []models.Device
	degraded bool
}

// gridView renders discovered devices in a table under the enabled
// columns, in the user's saved order.
type gridView struct {
	manager *prefs.Manager
	source  catalog.Source

	gs     styles.GridStyles
	themed bool

	tbl      table.Model
	enabled  []models.GridColumn
	devices  []models.Device
	statusID string
	degraded bool
	ready    bool

	width  int
	height int
}

func newGridView(manager *prefs.Manager, source catalog.Source) *gridView {
	return &gridView{
		manager: manager,
		source:  source,
		tbl:     table.New(table.WithFocused(true)),
	}
}

func (v *gridView) Init() tea.Cmd {
	return v.fetchCmd()
}

func (v *gridView) keyBindings() []key.Binding {
	return []key.Binding{gridKeys.Refresh, gridKeys.Columns, gridKeys.Username}
}

// fetchCmd merges saved preferences with the current snapshot. A
// catalog that has never resolved degrades to saved columns and an
// empty device list rather than failing.
func (v *gridView) fetchCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		cols, err := v.manager.Columns(ctx)
		degraded := errors.Is(err, prefs.ErrCatalogUnavailable)
		if err != nil && !degraded {
			return errMsg{err: err}
		}
		snap := v.source.Snapshot()
		return gridDataMsg{cols: cols, devices: snap.Devices, degraded: degraded}
	}
}

func (v *gridView) Update(msg tea.Msg) tea.Cmd {
	switch typed := msg.(type) {
	case gridDataMsg:
		v.enabled = enabledColumns(typed.cols)
		v.devices = typed.devices
		v.statusID = statusColumnID(typed.cols)
		v.degraded = typed.degraded
		v.ready = true
		v.layoutTable()
		return nil

	case catalogMsg:
		return v.fetchCmd()

	case tea.KeyMsg:
		switch {
		case key.Matches(typed, gridKeys.Refresh):
			return refreshCatalogCmd(v.source)
		case key.Matches(typed, gridKeys.Columns):
			return pushViewCmd(ViewColumns)
		case key.Matches(typed, gridKeys.Username):
			return pushViewCmd(ViewUsername)
		}
	}

	var cmd tea.Cmd
	v.tbl, cmd = v.tbl.Update(msg)
	return cmd
}

func (v *gridView) View(width, height int, theme styles.Theme) string {
	v.applyTheme(theme)
	if width <= 0 || height <= 0 {
		return ""
	}
	if width != v.width || height != v.height {
		v.width = width
		v.height = height
		v.layoutTable()
	}
	if !v.ready {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			v.gs.RowNumber.Render("loading catalog..."))
	}
	return lipgloss.JoinVertical(lipgloss.Left, v.tbl.View(), v.renderDetail(width))
}

func (v *gridView) applyTheme(theme styles.Theme) {
	if v.themed && v.gs.Theme.Name == theme.Name {
		return
	}
	v.gs = styles.NewGridStyles(theme)
	v.themed = true

	st := table.DefaultStyles()
	st.Header = st.Header.
		Foreground(lipgloss.Color(theme.Base.Accent)).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(lipgloss.Color(theme.Borders.Divider)).
		Bold(true)
	st.Cell = st.Cell.Foreground(lipgloss.Color(theme.Base.Foreground))
	st.Selected = v.gs.Selected
	v.tbl.SetStyles(st)
}

// layoutTable rebuilds columns and rows from the working state. Rows
// are cleared first so a shrinking column set never leaves a row wider
// than the header during the swap.
func (v *gridView) layoutTable() {
	if v.width <= 0 {
		return
	}

	headers := make([]string, 0, len(v.enabled)+1)
	headers = append(headers, models.RowNumberColumnID)
	for _, col := range v.enabled {
		headers = append(headers, col.DisplayLabel())
	}

	rows := make([]table.Row, len(v.devices))
	for i, dev := range v.devices {
		row := make(table.Row, 0, len(headers))
		row = append(row, strconv.Itoa(i+1))
		for _, col := range v.enabled {
			row = append(row, dev.Field(col.ID))
		}
		rows[i] = row
	}

	widths := gridColumnWidths(headers, rows, v.width)
	columns := make([]table.Column, len(headers))
	for i, h := range headers {
		columns[i] = table.Column{Title: h, Width: widths[i]}
	}

	cursor := v.tbl.Cursor()
	v.tbl.SetRows(nil)
	v.tbl.SetColumns(columns)
	v.tbl.SetRows(rows)
	v.tbl.SetWidth(v.width)
	v.tbl.SetHeight(maxInt(3, v.height-1))
	if len(rows) == 0 {
		v.tbl.SetCursor(0)
	} else {
		v.tbl.SetCursor(clampInt(cursor, 0, len(rows)-1))
	}
}

func (v *gridView) renderDetail(width int) string {
	if len(v.devices) == 0 {
		if v.degraded {
			return v.gs.Notice.Render(truncate("no catalog from agent yet; press r to retry", width))
		}
		return v.gs.RowNumber.Render(truncate("no devices reported", width))
	}
	dev, ok := v.selectedDevice()
	if !ok {
		return ""
	}

	label := dev.ID
	if len(v.enabled) > 0 {
		if val := dev.Field(v.enabled[0].ID); val != "" {
			label = val
		}
	}
	line := v.gs.Cell.Render(truncate(label, maxInt(0, width-16)))
	if v.statusID != "" {
		if status := dev.Field(v.statusID); status != "" {
			line += "  " + v.gs.RenderStatus(status)
		}
	}
	return line
}

func (v *gridView) selectedDevice() (models.Device, bool) {
	cursor := v.tbl.Cursor()
	if cursor < 0 || cursor >= len(v.devices) {
		return models.Device{}, false
	}
	return v.devices[cursor], true
}

func enabledColumns(cols []models.GridColumn) []models.GridColumn {
	out := make([]models.GridColumn, 0, len(cols))
	for _, col := range cols {
		if col.Enabled {
			out = append(out, col)
		}
	}
	return out
}

// gridColumnWidths sizes columns to their widest content, then shrinks
// the widest column until the table fits the terminal.
func gridColumnWidths(headers []string, rows []table.Row, total int) []int {
	if len(headers) == 0 {
		return nil
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	widths[0] = clampInt(widths[0], 2, rowNumberWidth)
	for i := 1; i < len(widths); i++ {
		widths[i] = clampInt(widths[i], gridMinColumnWidth, gridMaxColumnWidth)
	}

	// The default cell style pads one column on each side.
	overhead := 2 * len(widths)
	for {
		used := overhead
		for _, w := range widths {
			used += w
		}
		if used <= total {
			break
		}
		widest := 0
		for i := range widths {
			if widths[i] > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= gridMinColumnWidth {
			break
		}
		widths[widest]--
	}
	return widths
}
