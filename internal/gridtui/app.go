// Package gridtui implements the interactive device grid terminal UI.
//
// The UI is a stack of views over a shared model: the device grid at
// the bottom, with the column manager and the SSH username prompt
// pushed on top as needed. The model owns the catalog snapshot, the
// poller, and the event subscription; views own their cursors and
// widgets and render into the space the chrome leaves them.
package gridtui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/portscout/portscout/internal/catalog"
	"github.com/portscout/portscout/internal/events"
	"github.com/portscout/portscout/internal/gridtui/styles"
	"github.com/portscout/portscout/internal/models"
	"github.com/portscout/portscout/internal/prefs"
)

const (
	defaultRefreshInterval = 2 * time.Second
	flashDuration          = 2 * time.Second

	eventSubscriptionID = "gridtui"
	eventBuffer         = 16
)

// ViewID identifies a screen on the view stack.
type ViewID string

const (
	ViewGrid     ViewID = "grid"
	ViewColumns  ViewID = "columns"
	ViewUsername ViewID = "username"
)

// viewModel is one screen. Views receive their drawable area and the
// resolved theme on every render; the model owns the chrome.
type viewModel interface {
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View(width, height int, theme styles.Theme) string
}

type pushViewMsg struct {
	id ViewID
}

type popViewMsg struct{}

func pushViewCmd(id ViewID) tea.Cmd {
	return func() tea.Msg {
		return pushViewMsg{id: id}
	}
}

func popViewCmd() tea.Cmd {
	return func() tea.Msg {
		return popViewMsg{}
	}
}

// Config wires the TUI to the rest of the application.
type Config struct {
	Manager   *prefs.Manager
	Source    catalog.Source
	Publisher events.Publisher
	AgentURL  string
	Theme     string

	// RefreshInterval drives the status bar clock. PollInterval and
	// PollTimeout configure the background catalog poller; zero keeps
	// the poller defaults.
	RefreshInterval time.Duration
	PollInterval    time.Duration
	PollTimeout     time.Duration

	Version string
}

func (c Config) normalize() (Config, error) {
	if c.Manager == nil {
		return Config{}, fmt.Errorf("preference manager required")
	}
	if c.Source == nil {
		return Config{}, fmt.Errorf("catalog source required")
	}
	c.AgentURL = strings.TrimSpace(c.AgentURL)
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = defaultRefreshInterval
	}
	c.Theme = strings.TrimSpace(c.Theme)
	if c.Theme == "" {
		c.Theme = styles.DefaultTheme.Name
	}
	if _, ok := styles.Themes[c.Theme]; !ok {
		return Config{}, fmt.Errorf("invalid theme %q", c.Theme)
	}
	return c, nil
}

type appKeyMap struct {
	Quit      key.Binding
	ForceQuit key.Binding
	Help      key.Binding
}

var appKeys = appKeyMap{
	Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	ForceQuit: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
}

// Model is the root bubbletea model.
type Model struct {
	manager  *prefs.Manager
	source   catalog.Source
	pub      events.Publisher
	poller   *catalog.Poller
	theme    styles.Theme
	gs       styles.GridStyles
	agentURL string
	version  string

	refreshInterval time.Duration

	width  int
	height int
	help   help.Model

	snap      models.CatalogSnapshot
	agentDown bool
	agentErr  string
	notice    string

	flash    string
	flashSeq int

	eventCh   chan *events.Event
	subCh     <-chan models.CatalogSnapshot
	subCancel func()

	viewStack []ViewID
	views     map[ViewID]viewModel
}

// NewModel builds the root model and subscribes to the catalog source
// and, when a publisher is configured, to application events.
func NewModel(cfg Config) (*Model, error) {
	cfg, err := cfg.normalize()
	if err != nil {
		return nil, err
	}

	theme := styles.Themes[cfg.Theme]
	m := &Model{
		manager:         cfg.Manager,
		source:          cfg.Source,
		pub:             cfg.Publisher,
		theme:           theme,
		gs:              styles.NewGridStyles(theme),
		agentURL:        cfg.AgentURL,
		version:         cfg.Version,
		refreshInterval: cfg.RefreshInterval,
		help:            help.New(),
		snap:            cfg.Source.Snapshot(),
		viewStack:       []ViewID{ViewGrid},
		views:           make(map[ViewID]viewModel),
	}
	m.help.Styles.ShortKey = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Base.Accent))
	m.help.Styles.ShortDesc = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Base.Muted))
	m.help.Styles.ShortSeparator = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Borders.Divider))
	m.help.Styles.FullKey = m.help.Styles.ShortKey
	m.help.Styles.FullDesc = m.help.Styles.ShortDesc
	m.help.Styles.FullSeparator = m.help.Styles.ShortSeparator

	m.poller = catalog.NewPoller(catalog.PollerConfig{
		Interval: cfg.PollInterval,
		Timeout:  cfg.PollTimeout,
	}, cfg.Source)

	m.subCh, m.subCancel = cfg.Source.Subscribe()

	if m.pub != nil {
		m.eventCh = make(chan *events.Event, eventBuffer)
		eventCh := m.eventCh
		err := m.pub.Subscribe(eventSubscriptionID, events.Filter{}, func(ev *events.Event) {
			select {
			case eventCh <- ev:
			default:
			}
		})
		if err != nil {
			m.subCancel()
			return nil, fmt.Errorf("subscribe to events: %w", err)
		}
	}

	m.initViews()
	return m, nil
}

func (m *Model) initViews() {
	m.views[ViewGrid] = newGridView(m.manager, m.source)
	m.views[ViewColumns] = newColumnsView(m.manager)
	m.views[ViewUsername] = newUsernameView(m.manager)
}

// Run starts the TUI and blocks until the user quits. The catalog
// poller runs for the lifetime of the program so the grid tracks
// agent-side changes without manual refreshes.
func Run(cfg Config) error {
	model, err := NewModel(cfg)
	if err != nil {
		return err
	}
	defer model.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := model.poller.Start(ctx); err != nil {
		return fmt.Errorf("start catalog poller: %w", err)
	}

	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	return err
}

// Close releases the catalog subscription, the event subscription and
// the poller. Safe to call more than once.
func (m *Model) Close() error {
	if m.subCancel != nil {
		m.subCancel()
		m.subCancel = nil
	}
	if m.pub != nil {
		_ = m.pub.Unsubscribe(eventSubscriptionID)
		m.pub = nil
	}
	if m.poller != nil && m.poller.IsRunning() {
		return m.poller.Stop()
	}
	return nil
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.listenCatalogCmd(), m.statusTickCmd()}
	if m.eventCh != nil {
		cmds = append(cmds, m.listenEventCmd())
	}
	if view := m.activeView(); view != nil {
		cmds = append(cmds, view.Init())
	}
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.height = typed.Height
		m.help.Width = typed.Width
		return m, m.forwardToActive(msg)

	case pushViewMsg:
		m.pushView(typed.id)
		if view := m.activeView(); view != nil {
			return m, view.Init()
		}
		return m, nil

	case popViewMsg:
		m.popView()
		if view := m.activeView(); view != nil {
			return m, view.Init()
		}
		return m, nil

	case catalogMsg:
		m.snap = typed.snap
		m.agentDown = false
		m.agentErr = ""
		m.notice = ""
		return m, tea.Batch(m.listenCatalogCmd(), m.forwardToActive(msg))

	case agentStateMsg:
		m.agentDown = typed.down
		m.agentErr = typed.detail
		if !typed.down {
			// The refresh that cleared the outage may have raced past
			// the subscription buffer.
			m.snap = m.source.Snapshot()
		}
		return m, m.listenEventCmd()

	case prefsSavedMsg:
		m.flash = typed.note
		m.notice = ""
		m.flashSeq++
		seq := m.flashSeq
		clearCmd := tea.Tick(flashDuration, func(time.Time) tea.Msg {
			return flashClearMsg{seq: seq}
		})
		return m, tea.Batch(m.listenEventCmd(), clearCmd)

	case flashClearMsg:
		if typed.seq == m.flashSeq {
			m.flash = ""
		}
		return m, nil

	case errMsg:
		m.notice = typed.err.Error()
		return m, m.forwardToActive(msg)

	case statusTickMsg:
		return m, m.statusTickCmd()

	case tea.KeyMsg:
		if cmd, handled := m.handleGlobalKey(typed); handled {
			return m, cmd
		}
	}

	return m, m.forwardToActive(msg)
}

func (m *Model) forwardToActive(msg tea.Msg) tea.Cmd {
	if view := m.activeView(); view != nil {
		return view.Update(msg)
	}
	return nil
}

// handleGlobalKey runs before view dispatch. Views that accept free
// text (the username prompt) claim every key except ctrl+c.
func (m *Model) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if key.Matches(msg, appKeys.ForceQuit) {
		return tea.Quit, true
	}
	if capturer, ok := m.activeView().(interface{ capturesInput() bool }); ok && capturer.capturesInput() {
		return nil, false
	}
	switch {
	case key.Matches(msg, appKeys.Quit):
		return tea.Quit, true
	case key.Matches(msg, appKeys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return nil, true
	}
	return nil, false
}

// listenCatalogCmd waits for the next snapshot from the source
// subscription. Re-armed each time a snapshot arrives.
func (m *Model) listenCatalogCmd() tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-m.subCh
		if !ok {
			return nil
		}
		return catalogMsg{snap: snap}
	}
}

// listenEventCmd drains the event subscription until something the UI
// cares about shows up. Re-armed after each delivery.
func (m *Model) listenEventCmd() tea.Cmd {
	return func() tea.Msg {
		for ev := range m.eventCh {
			switch {
			case strings.HasPrefix(string(ev.Type), "prefs."):
				return prefsSavedMsg{note: savedFlashText(ev.Type)}
			case ev.Type == events.TypeCatalogUnreachable:
				return agentStateMsg{down: true, detail: ev.Payload["error"]}
			case ev.Type == events.TypeCatalogRefreshed:
				return agentStateMsg{down: false}
			}
		}
		return nil
	}
}

func (m *Model) statusTickCmd() tea.Cmd {
	return tea.Tick(m.refreshInterval, func(t time.Time) tea.Msg {
		return statusTickMsg(t)
	})
}

func (m *Model) activeViewID() ViewID {
	if len(m.viewStack) == 0 {
		return ViewGrid
	}
	return m.viewStack[len(m.viewStack)-1]
}

func (m *Model) activeView() viewModel {
	return m.views[m.activeViewID()]
}

func (m *Model) pushView(id ViewID) {
	if _, ok := m.views[id]; !ok {
		return
	}
	if m.activeViewID() == id {
		return
	}
	m.viewStack = append(m.viewStack, id)
}

func (m *Model) popView() {
	if len(m.viewStack) > 1 {
		m.viewStack = m.viewStack[:len(m.viewStack)-1]
	}
}
