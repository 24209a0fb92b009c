package gridtui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/portscout/portscout/internal/gridtui/styles"
	"github.com/portscout/portscout/internal/prefs"
)

type usernameKeyMap struct {
	Save   key.Binding
	Cancel key.Binding
}

var usernameKeys = usernameKeyMap{
	Save:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
	Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
}

type usernameLoadedMsg struct {
	value string
}

type usernameSavedMsg struct{}

// usernameView is a centered prompt for the SSH username offered when
// opening device sessions. While it is on top of the stack it captures
// all input except ctrl+c.
type usernameView struct {
	manager *prefs.Manager

	gs     styles.GridStyles
	themed bool

	input  textinput.Model
	loaded bool
	saving bool
}

func newUsernameView(manager *prefs.Manager) *usernameView {
	input := textinput.New()
	input.Placeholder = "admin"
	input.CharLimit = 64
	input.Width = 32
	input.Prompt = "> "
	return &usernameView{manager: manager, input: input}
}

func (v *usernameView) Init() tea.Cmd {
	v.loaded = false
	v.saving = false
	return tea.Batch(v.loadCmd(), v.input.Focus())
}

func (v *usernameView) capturesInput() bool { return true }

func (v *usernameView) keyBindings() []key.Binding {
	return []key.Binding{usernameKeys.Save, usernameKeys.Cancel}
}

func (v *usernameView) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return usernameLoadedMsg{value: v.manager.SSHUsername(ctx)}
	}
}

func (v *usernameView) saveCmd(value string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		if err := v.manager.SetSSHUsername(ctx, value); err != nil {
			return errMsg{err: err}
		}
		return usernameSavedMsg{}
	}
}

func (v *usernameView) Update(msg tea.Msg) tea.Cmd {
	switch typed := msg.(type) {
	case usernameLoadedMsg:
		v.loaded = true
		v.input.SetValue(typed.value)
		v.input.CursorEnd()
		return nil

	case usernameSavedMsg:
		v.saving = false
		return popViewCmd()

	case errMsg:
		v.saving = false
		return nil

	case tea.KeyMsg:
		switch {
		case key.Matches(typed, usernameKeys.Cancel):
			return popViewCmd()
		case key.Matches(typed, usernameKeys.Save):
			if v.saving {
				return nil
			}
			v.saving = true
			return v.saveCmd(strings.TrimSpace(v.input.Value()))
		}
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return cmd
}

func (v *usernameView) View(width, height int, theme styles.Theme) string {
	v.applyTheme(theme)

	line := v.input.View()
	if !v.loaded {
		line = v.gs.RowNumber.Render("loading...")
	}

	parts := []string{
		v.gs.Header.Render("SSH username"),
		"",
		line,
		"",
		v.gs.RowNumber.Render("offered when opening sessions to devices"),
	}
	if v.saving {
		parts = append(parts, v.gs.RowNumber.Render("saving..."))
	}

	box := styles.OverlayStyle(theme).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
	if width <= 0 || height <= 0 {
		return box
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

func (v *usernameView) applyTheme(theme styles.Theme) {
	if v.themed && v.gs.Theme.Name == theme.Name {
		return
	}
	v.gs = styles.NewGridStyles(theme)
	v.themed = true

	v.input.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Base.Accent))
	v.input.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Base.Foreground))
	v.input.PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Base.Muted))
}
