// Package catalog fetches and caches the column catalog and device list
// served by a scan agent.
package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/portscout/portscout/internal/models"
)

// ErrAgentUnreachable wraps every transport-level failure talking to the
// scan agent. The last good snapshot keeps being served regardless.
var ErrAgentUnreachable = errors.New("scan agent unreachable")

// Source yields catalog snapshots.
type Source interface {
	// Snapshot returns the most recent successful fetch. Before the
	// first success the snapshot is unresolved (zero FetchedAt).
	Snapshot() models.CatalogSnapshot

	// Refresh fetches a fresh snapshot. On failure the previous
	// snapshot is retained.
	Refresh(ctx context.Context) error

	// Subscribe returns a channel receiving each new snapshot and a
	// cancel func releasing the subscription. Sends never block; a slow
	// receiver misses intermediate snapshots and catches up via
	// Snapshot.
	Subscribe() (<-chan models.CatalogSnapshot, func())
}

// StaticSource serves one fixed snapshot. Used by tests and demo wiring
// that does not want a live agent.
type StaticSource struct {
	snap models.CatalogSnapshot
}

// NewStaticSource builds a resolved source over the given columns and
// devices.
func NewStaticSource(columns []models.GridColumn, devices []models.Device) *StaticSource {
	return &StaticSource{snap: models.CatalogSnapshot{
		Columns:   columns,
		Devices:   devices,
		FetchedAt: time.Now(),
	}}
}

func (s *StaticSource) Snapshot() models.CatalogSnapshot { return s.snap }

func (s *StaticSource) Refresh(ctx context.Context) error { return nil }

func (s *StaticSource) Subscribe() (<-chan models.CatalogSnapshot, func()) {
	ch := make(chan models.CatalogSnapshot)
	return ch, func() {}
}
