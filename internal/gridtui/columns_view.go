package gridtui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/portscout/portscout/internal/category"
	"github.com/portscout/portscout/internal/gridtui/styles"
	"github.com/portscout/portscout/internal/models"
	"github.com/portscout/portscout/internal/prefs"
)

type columnsKeyMap struct {
	Toggle   key.Binding
	MoveDown key.Binding
	MoveUp   key.Binding
	Reset    key.Binding
	Back     key.Binding
}

var columnsKeys = columnsKeyMap{
	Toggle:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "show/hide")),
	MoveDown: key.NewBinding(key.WithKeys("J"), key.WithHelp("J", "move down")),
	MoveUp:   key.NewBinding(key.WithKeys("K"), key.WithHelp("K", "move up")),
	Reset:    key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reset")),
	Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
}

// columnEntry is one rendered line: either a category heading or a
// column. workIdx is the column's position in the flat working list,
// which is what move operations act on.
type columnEntry struct {
	heading string
	col     models.GridColumn
	workIdx int
}

// columnsDataMsg carries a rebuilt working list. followID re-seats the
// cursor on the column that was just toggled or moved.
type columnsDataMsg struct {
	cols     []models.GridColumn
	degraded bool
	followID string
}

// columnsView lets the user show, hide and reorder grid columns,
// grouped by category.
type columnsView struct {
	manager *prefs.Manager

	gs     styles.GridStyles
	themed bool

	entries  []columnEntry
	cursor   int
	offset   int
	degraded bool

	confirmingReset bool
}

func newColumnsView(manager *prefs.Manager) *columnsView {
	return &columnsView{manager: manager, cursor: -1}
}

func (v *columnsView) Init() tea.Cmd {
	v.confirmingReset = false
	return v.fetchCmd("")
}

func (v *columnsView) keyBindings() []key.Binding {
	return []key.Binding{
		columnsKeys.Toggle,
		columnsKeys.MoveDown,
		columnsKeys.MoveUp,
		columnsKeys.Reset,
		columnsKeys.Back,
	}
}

func (v *columnsView) fetchCmd(followID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		cols, err := v.manager.Columns(ctx)
		if errors.Is(err, prefs.ErrCatalogUnavailable) {
			return columnsDataMsg{cols: cols, degraded: true, followID: followID}
		}
		if err != nil {
			return errMsg{err: err}
		}
		return columnsDataMsg{cols: cols, followID: followID}
	}
}

func (v *columnsView) toggleCmd(id string) tea.Cmd {
	degraded := v.degraded
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		cols, err := v.manager.Toggle(ctx, id)
		if err != nil {
			return errMsg{err: err}
		}
		return columnsDataMsg{cols: cols, degraded: degraded, followID: id}
	}
}

func (v *columnsView) moveCmd(id string, from, to int) tea.Cmd {
	degraded := v.degraded
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		cols, err := v.manager.Move(ctx, from, to)
		if err != nil {
			return errMsg{err: err}
		}
		return columnsDataMsg{cols: cols, degraded: degraded, followID: id}
	}
}

func (v *columnsView) resetCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		cols, err := v.manager.ResetToDefault(ctx)
		if errors.Is(err, prefs.ErrCatalogUnavailable) {
			return errMsg{err: fmt.Errorf("cannot reset: scan agent unreachable")}
		}
		if err != nil {
			return errMsg{err: err}
		}
		return columnsDataMsg{cols: cols}
	}
}

func (v *columnsView) Update(msg tea.Msg) tea.Cmd {
	switch typed := msg.(type) {
	case columnsDataMsg:
		v.applyData(typed)
		return nil
	case catalogMsg:
		return v.fetchCmd("")
	case tea.KeyMsg:
		return v.handleKey(typed)
	}
	return nil
}

func (v *columnsView) handleKey(msg tea.KeyMsg) tea.Cmd {
	if v.confirmingReset {
		switch msg.String() {
		case "y", "enter":
			v.confirmingReset = false
			return v.resetCmd()
		default:
			v.confirmingReset = false
			return nil
		}
	}

	switch {
	case key.Matches(msg, columnsKeys.Back):
		return popViewCmd()
	case key.Matches(msg, columnsKeys.Toggle):
		if entry, ok := v.currentEntry(); ok {
			return v.toggleCmd(entry.col.ID)
		}
	case key.Matches(msg, columnsKeys.MoveDown):
		if entry, ok := v.currentEntry(); ok {
			return v.moveCmd(entry.col.ID, entry.workIdx, entry.workIdx+1)
		}
	case key.Matches(msg, columnsKeys.MoveUp):
		if entry, ok := v.currentEntry(); ok {
			return v.moveCmd(entry.col.ID, entry.workIdx, entry.workIdx-1)
		}
	case key.Matches(msg, columnsKeys.Reset):
		v.confirmingReset = true
	default:
		switch msg.String() {
		case "up", "k":
			v.moveCursor(-1)
		case "down", "j":
			v.moveCursor(1)
		}
	}
	return nil
}

func (v *columnsView) applyData(msg columnsDataMsg) {
	keepID := msg.followID
	if keepID == "" {
		if entry, ok := v.currentEntry(); ok {
			keepID = entry.col.ID
		}
	}

	v.degraded = msg.degraded
	v.entries = buildColumnEntries(msg.cols)
	v.cursor = entryIndexOf(v.entries, keepID)
	if v.cursor < 0 {
		v.cursor = firstSelectable(v.entries)
	}
}

func (v *columnsView) moveCursor(delta int) {
	i := v.cursor
	for {
		i += delta
		if i < 0 || i >= len(v.entries) {
			return
		}
		if v.entries[i].heading == "" {
			v.cursor = i
			return
		}
	}
}

func (v *columnsView) currentEntry() (columnEntry, bool) {
	if v.cursor < 0 || v.cursor >= len(v.entries) {
		return columnEntry{}, false
	}
	entry := v.entries[v.cursor]
	if entry.heading != "" {
		return columnEntry{}, false
	}
	return entry, true
}

func (v *columnsView) View(width, height int, theme styles.Theme) string {
	v.applyTheme(theme)
	if width <= 0 || height <= 0 {
		return ""
	}

	title := v.gs.Header.Render("Columns")
	if v.degraded {
		title += "  " + v.gs.Notice.Render("(saved preferences; agent catalog pending)")
	}

	limit := height - 2
	if v.confirmingReset {
		limit -= 2
	}
	lines := v.renderEntries(width, maxInt(1, limit))

	body := make([]string, 0, len(lines)+4)
	body = append(body, title, "")
	body = append(body, lines...)
	if v.confirmingReset {
		body = append(body, "", v.gs.Notice.Render("reset all columns to agent defaults? y/n"))
	}
	return strings.Join(body, "\n")
}

func (v *columnsView) applyTheme(theme styles.Theme) {
	if v.themed && v.gs.Theme.Name == theme.Name {
		return
	}
	v.gs = styles.NewGridStyles(theme)
	v.themed = true
}

// renderEntries windows the entry list so the cursor stays visible.
func (v *columnsView) renderEntries(width, limit int) []string {
	if len(v.entries) == 0 {
		return []string{v.gs.RowNumber.Render("no columns; waiting for the scan agent")}
	}

	if v.offset >= len(v.entries) {
		v.offset = maxInt(0, len(v.entries)-limit)
	}
	if v.cursor >= 0 && v.cursor < v.offset {
		v.offset = v.cursor
	}
	if v.cursor >= v.offset+limit {
		v.offset = v.cursor - limit + 1
	}
	if v.offset < 0 {
		v.offset = 0
	}

	end := minInt(len(v.entries), v.offset+limit)
	lines := make([]string, 0, end-v.offset)
	for i := v.offset; i < end; i++ {
		lines = append(lines, v.renderEntry(i, width))
	}
	return lines
}

func (v *columnsView) renderEntry(i, width int) string {
	entry := v.entries[i]
	if entry.heading != "" {
		return v.gs.CategoryHeading.Render(strings.ToUpper(entry.heading))
	}

	prefix := "  "
	if i == v.cursor {
		prefix = "▸ "
	}
	box := "[ ]"
	style := v.gs.ColumnDisabled
	if entry.col.Enabled {
		box = "[x]"
		style = v.gs.ColumnEnabled
	}
	line := truncate(fmt.Sprintf("%s%s %s", prefix, box, entry.col.DisplayLabel()), width)
	if i == v.cursor {
		return v.gs.Selected.Render(line)
	}
	return style.Render(line)
}

// buildColumnEntries flattens the grouped view while remembering each
// column's index in the flat working list.
func buildColumnEntries(cols []models.GridColumn) []columnEntry {
	workIdx := make(map[string]int, len(cols))
	for i, col := range cols {
		workIdx[col.ID] = i
	}

	groups := category.GroupByCategory(cols)
	entries := make([]columnEntry, 0, len(cols)+len(groups))
	for _, group := range groups {
		entries = append(entries, columnEntry{heading: group.Label})
		for _, col := range group.Columns {
			entries = append(entries, columnEntry{col: col, workIdx: workIdx[col.ID]})
		}
	}
	return entries
}

func entryIndexOf(entries []columnEntry, id string) int {
	if id == "" {
		return -1
	}
	for i, e := range entries {
		if e.heading == "" && e.col.ID == id {
			return i
		}
	}
	return -1
}

func firstSelectable(entries []columnEntry) int {
	for i, e := range entries {
		if e.heading == "" {
			return i
		}
	}
	return -1
}
