package gridtui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/portscout/portscout/internal/catalog"
	"github.com/portscout/portscout/internal/events"
	"github.com/portscout/portscout/internal/models"
)

// commandTimeout bounds every store or agent call issued from a key
// press. The UI must never hang on a dead agent.
const commandTimeout = 10 * time.Second

// catalogMsg carries a fresh snapshot delivered by the source
// subscription.
type catalogMsg struct {
	snap models.CatalogSnapshot
}

// prefsSavedMsg announces a persisted preference change. The status bar
// flashes its note briefly.
type prefsSavedMsg struct {
	note string
}

// agentStateMsg tracks scan agent reachability as reported by catalog
// events.
type agentStateMsg struct {
	down   bool
	detail string
}

// errMsg surfaces a failed command as a footer notice. It is also
// forwarded to the active view so in-flight state can be rolled back.
type errMsg struct {
	err error
}

type statusTickMsg time.Time

// flashClearMsg clears the status bar flash, but only when seq still
// matches the model's counter. A save landing mid-flash bumps the
// counter and keeps its own message visible for the full duration.
type flashClearMsg struct {
	seq int
}

// refreshCatalogCmd asks the agent for a fresh catalog. On success the
// snapshot arrives through the source subscription, so only failures
// produce a message here.
func refreshCatalogCmd(source catalog.Source) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		if err := source.Refresh(ctx); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

// savedFlashText maps a preference event to the short confirmation
// shown in the status bar.
func savedFlashText(eventType events.Type) string {
	switch eventType {
	case events.TypeColumnsReset:
		return "defaults restored"
	case events.TypeSSHUsernameUpdated:
		return "username saved"
	default:
		return "saved"
	}
}
