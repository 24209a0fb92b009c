// Package reconcile merges the scan agent's column catalog with locally
// saved column preferences. Every function is pure: inputs are never
// mutated and outputs are freshly allocated.
package reconcile

import (
	"strings"

	"github.com/portscout/portscout/internal/models"
)

// SanitizeColumns drops entries without an ID and entries carrying the
// reserved row-number ID.
func SanitizeColumns(cols []models.GridColumn) []models.GridColumn {
	if len(cols) == 0 {
		return nil
	}
	out := make([]models.GridColumn, 0, len(cols))
	for _, col := range cols {
		if !validID(col.ID) {
			continue
		}
		out = append(out, col)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SanitizePrefs applies the same rules to persisted column preferences.
func SanitizePrefs(prefs []models.ColumnPref) []models.ColumnPref {
	if len(prefs) == 0 {
		return nil
	}
	out := make([]models.ColumnPref, 0, len(prefs))
	for _, pref := range prefs {
		if !validID(pref.ID) {
			continue
		}
		out = append(out, pref)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Merge builds the working column list. The catalog decides which columns
// exist and in what order; saved preferences decide the enabled flag of
// every surviving ID. Saved IDs the catalog no longer reports are dropped
// and never resurrected. An empty catalog yields an empty list so stale
// state cannot linger.
//
// The saved lookup is built by insertion: a duplicated saved ID resolves
// to its last occurrence.
func Merge(catalog []models.GridColumn, saved []models.ColumnPref) []models.GridColumn {
	cols := SanitizeColumns(catalog)
	if len(cols) == 0 {
		return nil
	}

	prefs := SanitizePrefs(saved)
	if len(prefs) == 0 {
		return append([]models.GridColumn(nil), cols...)
	}

	enabled := make(map[string]bool, len(prefs))
	for _, pref := range prefs {
		enabled[pref.ID] = pref.Enabled
	}

	out := make([]models.GridColumn, len(cols))
	for i, col := range cols {
		if flag, ok := enabled[col.ID]; ok {
			col.Enabled = flag
		}
		out[i] = col
	}
	return out
}

// Hydrate turns saved preferences into a provisional working list for the
// window before the first catalog snapshot resolves. Labels are not
// persisted, so the ID doubles as the label until the catalog supplies a
// real one.
func Hydrate(saved []models.ColumnPref) []models.GridColumn {
	prefs := SanitizePrefs(saved)
	if len(prefs) == 0 {
		return nil
	}
	out := make([]models.GridColumn, len(prefs))
	for i, pref := range prefs {
		out[i] = models.GridColumn{ID: pref.ID, Enabled: pref.Enabled}
	}
	return out
}

// PrefsFrom projects a working list into its persisted form.
func PrefsFrom(cols []models.GridColumn) []models.ColumnPref {
	sanitized := SanitizeColumns(cols)
	if len(sanitized) == 0 {
		return nil
	}
	out := make([]models.ColumnPref, len(sanitized))
	for i, col := range sanitized {
		out[i] = models.ColumnPref{ID: col.ID, Enabled: col.Enabled}
	}
	return out
}

// Toggle flips the enabled flag of the column with the given ID. An
// unknown ID leaves the list unchanged; the second return reports whether
// anything flipped.
func Toggle(cols []models.GridColumn, id string) ([]models.GridColumn, bool) {
	out := append([]models.GridColumn(nil), cols...)
	for i := range out {
		if out[i].ID == id {
			out[i].Enabled = !out[i].Enabled
			return out, true
		}
	}
	return out, false
}

// Move removes the column at from and reinserts it at to; everything
// between shifts by one (array move, not a swap). An out-of-range from is
// a no-op; to is clamped to the nearest valid index. Length and the ID
// multiset are invariant.
func Move(cols []models.GridColumn, from, to int) []models.GridColumn {
	out := append([]models.GridColumn(nil), cols...)
	if from < 0 || from >= len(out) {
		return out
	}
	if to < 0 {
		to = 0
	}
	if to > len(out)-1 {
		to = len(out) - 1
	}
	if from == to {
		return out
	}

	moved := out[from]
	out = append(out[:from], out[from+1:]...)
	rest := append([]models.GridColumn(nil), out[to:]...)
	out = append(append(out[:to], moved), rest...)
	return out
}

// Enabled returns the enabled-only subset in working-list order.
func Enabled(cols []models.GridColumn) []models.GridColumn {
	if len(cols) == 0 {
		return nil
	}
	out := make([]models.GridColumn, 0, len(cols))
	for _, col := range cols {
		if col.Enabled {
			out = append(out, col)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func validID(id string) bool {
	if strings.TrimSpace(id) == "" {
		return false
	}
	return id != models.RowNumberColumnID
}
