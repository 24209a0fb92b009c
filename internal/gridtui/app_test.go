package gridtui

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/portscout/portscout/internal/catalog"
	"github.com/portscout/portscout/internal/events"
	"github.com/portscout/portscout/internal/models"
	"github.com/portscout/portscout/internal/prefs"
)

func testColumns() []models.GridColumn {
	return []models.GridColumn{
		{ID: "Device Name", Label: "Device Name", Enabled: true},
		{ID: "IP Address", Label: "IP Address", Enabled: true},
		{ID: "Status", Label: "Status", Enabled: true},
		{ID: "VLAN", Label: "VLAN", Enabled: false},
	}
}

func testDevices() []models.Device {
	return []models.Device{
		{ID: "dev-1", Fields: map[string]string{
			"Device Name": "ap-lobby-01",
			"IP Address":  "10.0.0.5",
			"Status":      "online",
			"VLAN":        "12",
		}},
		{ID: "dev-2", Fields: map[string]string{
			"Device Name": "cam-yard-02",
			"IP Address":  "10.0.0.9",
			"Status":      "offline",
		}},
	}
}

func newTestConfig(t *testing.T) Config {
	t.Helper()

	store, err := prefs.NewFileStore(filepath.Join(t.TempDir(), "settings.json"))
	require.NoError(t, err)

	source := catalog.NewStaticSource(testColumns(), testDevices())
	pub := events.NewInMemoryPublisher()
	t.Cleanup(pub.Close)

	return Config{
		Manager:   prefs.NewManager(store, source, prefs.WithPublisher(pub)),
		Source:    source,
		Publisher: pub,
		AgentURL:  "http://127.0.0.1:8731",
		Version:   "test",
	}
}

func newTestModel(t *testing.T, cfg Config) *Model {
	t.Helper()

	model, err := NewModel(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, model.Close())
	})
	return model
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func applyUpdate(t *testing.T, m *Model, msg tea.Msg) *Model {
	t.Helper()

	next, _ := m.Update(msg)
	model, ok := next.(*Model)
	require.True(t, ok)
	return model
}

func applyUpdateWithCmd(t *testing.T, m *Model, msg tea.Msg) *Model {
	t.Helper()

	next, cmd := m.Update(msg)
	model, ok := next.(*Model)
	require.True(t, ok)
	return runCmd(t, model, cmd)
}

func runCmd(t *testing.T, m *Model, cmd tea.Cmd) *Model {
	t.Helper()
	return runCmdDepth(t, m, cmd, 0)
}

// runCmdDepth executes a command and feeds its message back through
// Update. Ticks and channel subscriptions block; anything that takes
// longer than the timeout is abandoned rather than awaited.
func runCmdDepth(t *testing.T, m *Model, cmd tea.Cmd, depth int) *Model {
	t.Helper()

	if cmd == nil || depth > 8 {
		return m
	}

	msgCh := make(chan tea.Msg, 1)
	go func() {
		msgCh <- cmd()
	}()

	var msg tea.Msg
	select {
	case msg = <-msgCh:
	case <-time.After(50 * time.Millisecond):
		return m
	}
	if msg == nil {
		return m
	}

	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, sub := range batch {
			m = runCmdDepth(t, m, sub, depth+1)
		}
		return m
	}

	next, nextCmd := m.Update(msg)
	model, ok := next.(*Model)
	require.True(t, ok)
	return runCmdDepth(t, model, nextCmd, depth+1)
}

func TestNewModelDefaults(t *testing.T) {
	model := newTestModel(t, newTestConfig(t))

	require.Equal(t, []ViewID{ViewGrid}, model.viewStack)
	require.Equal(t, "default", model.theme.Name)
	require.Equal(t, defaultRefreshInterval, model.refreshInterval)
	require.True(t, model.snap.Resolved())
	require.NotNil(t, model.views[ViewGrid])
	require.NotNil(t, model.views[ViewColumns])
	require.NotNil(t, model.views[ViewUsername])
}

func TestNewModelRejectsInvalidTheme(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Theme = "matrix"

	_, err := NewModel(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid theme")
}

func TestNewModelRequiresManagerAndSource(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Manager = nil
	_, err := NewModel(cfg)
	require.Error(t, err)

	cfg = newTestConfig(t)
	cfg.Source = nil
	_, err = NewModel(cfg)
	require.Error(t, err)
}

func TestGlobalKeysQuitAndHelp(t *testing.T) {
	model := newTestModel(t, newTestConfig(t))
	model = applyUpdate(t, model, tea.WindowSizeMsg{Width: 120, Height: 40})
	require.Equal(t, 120, model.width)
	require.Equal(t, 40, model.height)

	model = applyUpdate(t, model, runeKey('?'))
	require.True(t, model.help.ShowAll)
	model = applyUpdate(t, model, runeKey('?'))
	require.False(t, model.help.ShowAll)

	_, cmd := model.Update(runeKey('q'))
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())

	_, cmd = model.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestViewStackNavigation(t *testing.T) {
	model := newTestModel(t, newTestConfig(t))
	model = applyUpdate(t, model, tea.WindowSizeMsg{Width: 100, Height: 30})
	model = runCmd(t, model, model.Init())

	model = applyUpdateWithCmd(t, model, runeKey('c'))
	require.Equal(t, ViewColumns, model.activeViewID())

	model = applyUpdateWithCmd(t, model, tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, ViewGrid, model.activeViewID())

	model = applyUpdateWithCmd(t, model, runeKey('s'))
	require.Equal(t, ViewUsername, model.activeViewID())

	model = applyUpdateWithCmd(t, model, tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, ViewGrid, model.activeViewID())

	// Popping the last view is a no-op.
	model = applyUpdate(t, model, popViewMsg{})
	require.Equal(t, []ViewID{ViewGrid}, model.viewStack)
}

func TestUsernameViewCapturesTextInput(t *testing.T) {
	model := newTestModel(t, newTestConfig(t))
	model = applyUpdate(t, model, tea.WindowSizeMsg{Width: 100, Height: 30})
	model = runCmd(t, model, model.Init())

	model = applyUpdateWithCmd(t, model, runeKey('s'))
	require.Equal(t, ViewUsername, model.activeViewID())

	// 'q' is text while the prompt is open, not quit.
	model = applyUpdateWithCmd(t, model, runeKey('q'))
	require.Equal(t, ViewUsername, model.activeViewID())

	view, ok := model.views[ViewUsername].(*usernameView)
	require.True(t, ok)
	require.Equal(t, "q", view.input.Value())

	// ctrl+c still quits.
	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestGridShowsDevices(t *testing.T) {
	model := newTestModel(t, newTestConfig(t))
	model = applyUpdate(t, model, tea.WindowSizeMsg{Width: 100, Height: 30})
	model = runCmd(t, model, model.Init())

	view := model.View()
	require.Contains(t, view, "ap-lobby-01")
	require.Contains(t, view, "cam-yard-02")
	require.Contains(t, view, "Device Name")
	require.NotContains(t, view, "VLAN")
	require.Contains(t, view, "2 devices")
	require.Contains(t, view, "http://127.0.0.1:8731")
}

func TestColumnsToggleAndMovePersist(t *testing.T) {
	cfg := newTestConfig(t)
	model := newTestModel(t, cfg)
	model = applyUpdate(t, model, tea.WindowSizeMsg{Width: 100, Height: 30})
	model = runCmd(t, model, model.Init())

	model = applyUpdateWithCmd(t, model, runeKey('c'))
	require.Equal(t, ViewColumns, model.activeViewID())

	view, ok := model.views[ViewColumns].(*columnsView)
	require.True(t, ok)
	entry, ok := view.currentEntry()
	require.True(t, ok)
	require.Equal(t, "Device Name", entry.col.ID)

	model = applyUpdateWithCmd(t, model, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	cols, err := cfg.Manager.Columns(context.Background())
	require.NoError(t, err)
	require.False(t, columnByID(t, cols, "Device Name").Enabled)

	// Cursor follows the toggled column across the rebuild.
	entry, ok = view.currentEntry()
	require.True(t, ok)
	require.Equal(t, "Device Name", entry.col.ID)

	model = applyUpdateWithCmd(t, model, runeKey('J'))
	cols, err = cfg.Manager.Columns(context.Background())
	require.NoError(t, err)
	require.Equal(t, "IP Address", cols[0].ID)
	require.Equal(t, "Device Name", cols[1].ID)
	require.Equal(t, ViewColumns, model.activeViewID())
}

func columnByID(t *testing.T, cols []models.GridColumn, id string) models.GridColumn {
	t.Helper()
	for _, col := range cols {
		if col.ID == id {
			return col
		}
	}
	t.Fatalf("column %q not found", id)
	return models.GridColumn{}
}

func TestFlashLifecycle(t *testing.T) {
	model := newTestModel(t, newTestConfig(t))
	model = applyUpdate(t, model, tea.WindowSizeMsg{Width: 100, Height: 30})

	model = applyUpdate(t, model, prefsSavedMsg{note: "username saved"})
	require.Equal(t, "username saved", model.flash)
	require.Contains(t, model.View(), "username saved")

	// A stale clear from an earlier flash is ignored.
	model = applyUpdate(t, model, flashClearMsg{seq: model.flashSeq - 1})
	require.Equal(t, "username saved", model.flash)

	model = applyUpdate(t, model, flashClearMsg{seq: model.flashSeq})
	require.Empty(t, model.flash)
}

func TestAgentOutageNotice(t *testing.T) {
	model := newTestModel(t, newTestConfig(t))
	model = applyUpdate(t, model, tea.WindowSizeMsg{Width: 100, Height: 30})

	model = applyUpdate(t, model, agentStateMsg{down: true, detail: "connection refused"})
	require.True(t, model.agentDown)
	require.Contains(t, model.View(), "unreachable")
	require.Contains(t, model.View(), "connection refused")

	model = applyUpdate(t, model, agentStateMsg{down: false})
	require.False(t, model.agentDown)
	require.NotContains(t, model.View(), "unreachable")
}

func TestListenEventCmdTranslation(t *testing.T) {
	model := newTestModel(t, newTestConfig(t))

	model.eventCh <- events.New(events.TypeColumnToggled, nil)
	msg := model.listenEventCmd()()
	saved, ok := msg.(prefsSavedMsg)
	require.True(t, ok)
	require.Equal(t, "saved", saved.note)

	model.eventCh <- events.New(events.TypeColumnsReset, nil)
	msg = model.listenEventCmd()()
	saved, ok = msg.(prefsSavedMsg)
	require.True(t, ok)
	require.Equal(t, "defaults restored", saved.note)

	model.eventCh <- events.New(events.TypeCatalogUnreachable, map[string]string{"error": "dial tcp: refused"})
	msg = model.listenEventCmd()()
	state, ok := msg.(agentStateMsg)
	require.True(t, ok)
	require.True(t, state.down)
	require.Equal(t, "dial tcp: refused", state.detail)

	model.eventCh <- events.New(events.TypeCatalogRefreshed, nil)
	msg = model.listenEventCmd()()
	state, ok = msg.(agentStateMsg)
	require.True(t, ok)
	require.False(t, state.down)
}

func TestPublishedEventBecomesFlash(t *testing.T) {
	cfg := newTestConfig(t)
	model := newTestModel(t, cfg)
	model = applyUpdate(t, model, tea.WindowSizeMsg{Width: 100, Height: 30})

	cfg.Publisher.Publish(context.Background(), events.New(events.TypeColumnsSaved, nil))

	msg := model.listenEventCmd()()
	saved, ok := msg.(prefsSavedMsg)
	require.True(t, ok)

	model = applyUpdate(t, model, saved)
	require.Equal(t, "saved", model.flash)
}

func TestCatalogMsgUpdatesSnapshot(t *testing.T) {
	model := newTestModel(t, newTestConfig(t))
	model = applyUpdate(t, model, tea.WindowSizeMsg{Width: 100, Height: 30})
	model = runCmd(t, model, model.Init())

	devices := append(testDevices(), models.Device{ID: "dev-3", Fields: map[string]string{
		"Device Name": "sw-closet-03",
		"Status":      "provisioning",
	}})
	snap := models.CatalogSnapshot{
		Columns:      testColumns(),
		Devices:      devices,
		AgentVersion: "1.1.0",
		FetchedAt:    time.Now(),
	}

	model = applyUpdateWithCmd(t, model, catalogMsg{snap: snap})
	require.Contains(t, model.View(), "3 devices")
}
