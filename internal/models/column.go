package models

import (
	"strings"
	"time"
)

// RowNumberColumnID is the synthetic row-number column the grid renders on
// its own. It is display-only: it must never enter a working list and must
// never be persisted.
const RowNumberColumnID = "#"

// GridColumn is one column the device grid can display. ID carries the
// identity; the scan agent assigns label-like IDs ("IP Address",
// "Switch Port") and may relabel a column without changing its ID.
type GridColumn struct {
	ID      string `json:"id"`
	Label   string `json:"label,omitempty"`
	Enabled bool   `json:"enabled"`
}

// DisplayLabel returns the label, falling back to the ID when the agent
// did not supply one.
func (c GridColumn) DisplayLabel() string {
	if strings.TrimSpace(c.Label) != "" {
		return c.Label
	}
	return c.ID
}

// Validate checks the column for structural problems.
func (c GridColumn) Validate() error {
	errs := &ValidationErrors{}
	if strings.TrimSpace(c.ID) == "" {
		errs.AddMessage("id", "is required")
	}
	if c.ID == RowNumberColumnID {
		errs.AddMessage("id", "is reserved for the row-number column")
	}
	return errs.Err()
}

// ColumnPref is the persisted per-column preference. Labels are never
// persisted; the catalog owns them.
type ColumnPref struct {
	ID      string `json:"id"`
	Enabled bool   `json:"enabled"`
}

// Device is one discovered device as reported by the scan agent. Fields is
// keyed by column ID; the grid looks cell values up by the column it is
// rendering.
type Device struct {
	ID     string            `json:"id"`
	Fields map[string]string `json:"fields"`
}

// Field returns the cell value for a column ID, or "" when the agent did
// not report one.
func (d Device) Field(columnID string) string {
	if d.Fields == nil {
		return ""
	}
	return d.Fields[columnID]
}

// CatalogSnapshot is the latest resolved state of the scan agent's column
// catalog and device inventory. A zero FetchedAt means no fetch has
// resolved yet; a resolved snapshot with no columns is a genuinely empty
// catalog.
type CatalogSnapshot struct {
	Columns      []GridColumn `json:"columns"`
	Devices      []Device     `json:"devices,omitempty"`
	AgentVersion string       `json:"agentVersion,omitempty"`
	FetchedAt    time.Time    `json:"fetchedAt,omitempty"`
}

// Resolved reports whether a catalog fetch has ever completed.
func (s CatalogSnapshot) Resolved() bool {
	return !s.FetchedAt.IsZero()
}

// CloneColumns returns an independent copy of the snapshot's column list.
func (s CatalogSnapshot) CloneColumns() []GridColumn {
	if len(s.Columns) == 0 {
		return nil
	}
	return append([]GridColumn(nil), s.Columns...)
}
