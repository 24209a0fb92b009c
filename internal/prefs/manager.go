package prefs

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/portscout/portscout/internal/events"
	"github.com/portscout/portscout/internal/logging"
	"github.com/portscout/portscout/internal/models"
	"github.com/portscout/portscout/internal/reconcile"
)

// CatalogSource is the slice of the catalog surface the manager depends on.
// catalog.Source satisfies it.
type CatalogSource interface {
	// Snapshot returns the most recent catalog state. An unresolved
	// snapshot means no fetch has succeeded yet.
	Snapshot() models.CatalogSnapshot

	// Refresh asks the agent for a fresh catalog.
	Refresh(ctx context.Context) error
}

// Manager owns the column working list and the persisted preference record.
//
// The working list is held state: mutations edit it in place and persist
// the result, so a user's reorder survives every read. It is rebuilt from
// the stored record when the catalog content actually changes, and before
// the first catalog answer it hydrates straight from the stored record so
// the grid is usable offline. Every mutation read-merge-writes the stored
// blob under one mutex, which keeps sibling keys intact and makes
// concurrent mutations last-writer-wins per whole operation instead of
// per interleaved read and write.
type Manager struct {
	store  Store
	source CatalogSource

	mu          sync.Mutex
	logger      zerolog.Logger
	pub         events.Publisher
	working     []models.GridColumn
	hydrated    bool
	reconciled  bool
	lastCatalog []models.GridColumn
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger overrides the manager's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithPublisher attaches an event publisher. Mutations emit prefs.* events.
func WithPublisher(pub events.Publisher) Option {
	return func(m *Manager) {
		m.pub = pub
	}
}

// NewManager creates a preference manager over the given store and catalog
// source. Both must be non-nil.
func NewManager(store Store, source CatalogSource, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		source: source,
		logger: logging.Component("prefs"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ensureWorkingLocked brings the held working list up to date with the
// catalog. A resolved catalog whose columns differ from the last merge
// triggers a fresh merge against the stored record; that is the only point
// where the catalog may override a user's order. Before the catalog has
// resolved the stored list is served as-is.
//
// The returned flag reports whether the list is degraded (no catalog yet).
func (m *Manager) ensureWorkingLocked(ctx context.Context) bool {
	snap := m.source.Snapshot()
	if snap.Resolved() {
		if !m.reconciled || !slices.Equal(snap.Columns, m.lastCatalog) {
			rec := m.loadRecordLocked(ctx)
			m.working = reconcile.Merge(snap.Columns, rec.Columns)
			m.lastCatalog = snap.CloneColumns()
			m.reconciled = true
			m.hydrated = true
			m.logger.Debug().Int("columns", len(m.working)).Msg("working list rebuilt from catalog")
		}
		return false
	}

	if !m.hydrated {
		rec := m.loadRecordLocked(ctx)
		m.working = reconcile.Hydrate(rec.Columns)
		m.hydrated = true
		m.logger.Debug().Int("columns", len(m.working)).Msg("working list hydrated from stored preferences")
	}
	return true
}

func (m *Manager) workingCopyLocked() []models.GridColumn {
	out := make([]models.GridColumn, len(m.working))
	copy(out, m.working)
	return out
}

// Columns returns the current working list. When the catalog has not
// resolved yet the stored list is returned together with
// ErrCatalogUnavailable; callers may still render and mutate it.
func (m *Manager) Columns(ctx context.Context) ([]models.GridColumn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	degraded := m.ensureWorkingLocked(ctx)
	cols := m.workingCopyLocked()
	if degraded {
		return cols, ErrCatalogUnavailable
	}
	return cols, nil
}

// Toggle flips the enabled flag of the column with the given ID and
// persists the result. Unknown IDs are ignored.
func (m *Manager) Toggle(ctx context.Context, columnID string) ([]models.GridColumn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ensureWorkingLocked(ctx)

	next, changed := reconcile.Toggle(m.working, columnID)
	if !changed {
		m.logger.Debug().Str("column", columnID).Msg("toggle ignored, column not in working list")
		return m.workingCopyLocked(), nil
	}

	if err := m.persistColumnsLocked(ctx, next); err != nil {
		return nil, err
	}
	m.working = next
	m.publish(ctx, events.TypeColumnToggled, map[string]string{"column": columnID})
	return m.workingCopyLocked(), nil
}

// Move relocates the column at fromIndex to toIndex, shifting everything
// between. An out-of-range fromIndex is ignored; toIndex is clamped.
func (m *Manager) Move(ctx context.Context, fromIndex, toIndex int) ([]models.GridColumn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ensureWorkingLocked(ctx)

	if fromIndex < 0 || fromIndex >= len(m.working) {
		return m.workingCopyLocked(), nil
	}
	to := toIndex
	if to < 0 {
		to = 0
	}
	if to >= len(m.working) {
		to = len(m.working) - 1
	}
	if fromIndex == to {
		return m.workingCopyLocked(), nil
	}

	next := reconcile.Move(m.working, fromIndex, to)
	if err := m.persistColumnsLocked(ctx, next); err != nil {
		return nil, err
	}
	m.working = next
	m.publish(ctx, events.TypeColumnMoved, map[string]string{
		"from": strconv.Itoa(fromIndex),
		"to":   strconv.Itoa(to),
	})
	return m.workingCopyLocked(), nil
}

// SaveColumns replaces the working list wholesale, for callers that edited
// a copy (the column settings view). The input is sanitized first.
func (m *Manager) SaveColumns(ctx context.Context, columns []models.GridColumn) ([]models.GridColumn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ensureWorkingLocked(ctx)

	sanitized := reconcile.SanitizeColumns(columns)
	if err := m.persistColumnsLocked(ctx, sanitized); err != nil {
		return nil, err
	}
	m.working = sanitized
	m.publish(ctx, events.TypeColumnsSaved, map[string]string{
		"columns": strconv.Itoa(len(sanitized)),
	})
	return m.workingCopyLocked(), nil
}

// ResetToDefault discards saved column preferences in favor of the catalog
// defaults. With no resolved catalog there is nothing meaningful to reset
// to, so a refresh is requested instead and the current list is returned
// untouched.
func (m *Manager) ResetToDefault(ctx context.Context) ([]models.GridColumn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.source.Snapshot()
	if !snap.Resolved() {
		if err := m.source.Refresh(ctx); err != nil {
			m.logger.Warn().Err(err).Msg("reset requested without catalog, refresh failed")
		}
		snap = m.source.Snapshot()
	}
	if !snap.Resolved() {
		m.ensureWorkingLocked(ctx)
		return m.workingCopyLocked(), ErrCatalogUnavailable
	}

	defaults := reconcile.Merge(snap.Columns, nil)
	if err := m.persistColumnsLocked(ctx, defaults); err != nil {
		return nil, err
	}
	m.working = defaults
	m.lastCatalog = snap.CloneColumns()
	m.reconciled = true
	m.hydrated = true
	m.publish(ctx, events.TypeColumnsReset, nil)
	return m.workingCopyLocked(), nil
}

// SetSSHUsername stores the username used when opening SSH sessions to
// devices. Column preferences are left untouched. Setting the current
// value again is a no-op.
func (m *Manager) SetSSHUsername(ctx context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	trimmed := strings.TrimSpace(username)
	rec := m.loadRecordLocked(ctx)
	if rec.SSHUsername == trimmed {
		return nil
	}

	rec.SSHUsername = trimmed
	if err := m.saveRecordLocked(ctx, rec); err != nil {
		return err
	}
	m.publish(ctx, events.TypeSSHUsernameUpdated, nil)
	return nil
}

// SSHUsername returns the stored SSH username, or empty when unset.
func (m *Manager) SSHUsername(ctx context.Context) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.loadRecordLocked(ctx).SSHUsername
}

// persistColumnsLocked read-merge-writes the stored record, replacing only
// the columns key. The record is re-read so username and sibling keys
// written since the working list was built are not clobbered.
func (m *Manager) persistColumnsLocked(ctx context.Context, cols []models.GridColumn) error {
	rec := m.loadRecordLocked(ctx)
	rec.Columns = reconcile.PrefsFrom(cols)
	return m.saveRecordLocked(ctx, rec)
}

// loadRecordLocked reads and decodes the persisted record. An absent or
// unreadable blob yields a zero record: read failures merge against an
// empty prior record, and a corrupt blob degrades to defaults rather than
// wedging the UI. Neither surfaces to the caller.
func (m *Manager) loadRecordLocked(ctx context.Context) models.PreferenceRecord {
	blob, err := m.store.Get(ctx)
	if err != nil {
		m.logger.Warn().Err(err).Msg("preference read failed, merging against empty record")
		return models.PreferenceRecord{}
	}
	if len(blob) == 0 {
		return models.PreferenceRecord{}
	}

	var rec models.PreferenceRecord
	if err := json.Unmarshal(blob, &rec); err != nil {
		m.logger.Warn().
			Err(fmt.Errorf("%w: %v", ErrPersistedDataCorrupt, err)).
			Msg("stored preferences unreadable, starting from defaults")
		return models.PreferenceRecord{}
	}
	return rec
}

// saveRecordLocked writes the record back through the store. Sibling keys
// carried in rec.Extra ride along untouched.
func (m *Manager) saveRecordLocked(ctx context.Context, rec models.PreferenceRecord) error {
	blob, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	if err := m.store.Set(ctx, blob); err != nil {
		return fmt.Errorf("persist preferences: %w", err)
	}
	m.logger.Debug().Int("columns", len(rec.Columns)).Msg("preferences saved")
	return nil
}

func (m *Manager) publish(ctx context.Context, eventType events.Type, payload map[string]string) {
	if m.pub == nil {
		return
	}
	m.pub.Publish(ctx, events.New(eventType, payload))
}
