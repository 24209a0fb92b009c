// Package category assigns grid columns to display categories. The
// assignment is a pure function of a static ordered table: an exact-match
// stage over column IDs, then an ordered pattern scan, then a fallback.
package category

import (
	"regexp"

	"github.com/portscout/portscout/internal/models"
)

// FallbackKey is returned for every column no category claims.
const FallbackKey = "other"

// Category is one row of the classification table. ExactIDs lists column
// IDs that belong to the category outright; Patterns are matched against
// the column ID only when no exact entry claims it anywhere in the table.
type Category struct {
	Key      string
	Label    string
	ExactIDs []string
	Patterns []*regexp.Regexp
}

// Group is one bucket of a categorized working list.
type Group struct {
	Key     string
	Label   string
	Columns []models.GridColumn
}

// Table is an ordered category table with its exact-match index built.
type Table struct {
	categories []Category
	exact      map[string]string
	known      map[string]string // key -> label
}

// NewTable indexes a category list. The exact index is built by inserting
// every category's ExactIDs in table order; when two categories claim the
// same ID the later insertion wins. That tie-break is contract, not
// accident, and is covered by tests.
func NewTable(categories []Category) Table {
	t := Table{
		categories: append([]Category(nil), categories...),
		exact:      make(map[string]string),
		known:      make(map[string]string, len(categories)),
	}
	for _, cat := range t.categories {
		t.known[cat.Key] = cat.Label
		for _, id := range cat.ExactIDs {
			t.exact[id] = cat.Key
		}
	}
	return t
}

// Classify maps a column ID to a category key. It is total: every input,
// including the empty string, resolves to a defined key. An exact match
// short-circuits the pattern scan, even patterns of earlier categories.
func (t Table) Classify(id string) string {
	if id == "" {
		return FallbackKey
	}
	if key, ok := t.exact[id]; ok {
		return key
	}
	for _, cat := range t.categories {
		for _, pattern := range cat.Patterns {
			if pattern.MatchString(id) {
				return cat.Key
			}
		}
	}
	return FallbackKey
}

// GroupByCategory buckets a working list for display. Columns keep their
// working-list order inside each bucket; buckets appear in table order,
// with any key outside the table appended afterward in first-encounter
// order. Empty buckets are omitted.
func (t Table) GroupByCategory(cols []models.GridColumn) []Group {
	if len(cols) == 0 {
		return nil
	}

	buckets := make(map[string][]models.GridColumn)
	var extras []string
	for _, col := range cols {
		key := t.Classify(col.ID)
		if _, seen := buckets[key]; !seen {
			if _, ok := t.known[key]; !ok {
				extras = append(extras, key)
			}
		}
		buckets[key] = append(buckets[key], col)
	}

	out := make([]Group, 0, len(buckets))
	for _, cat := range t.categories {
		if members := buckets[cat.Key]; len(members) > 0 {
			out = append(out, Group{Key: cat.Key, Label: cat.Label, Columns: members})
		}
	}
	for _, key := range extras {
		out = append(out, Group{Key: key, Label: key, Columns: buckets[key]})
	}
	return out
}

// LabelFor returns the display label for a category key. Keys outside the
// table label as themselves.
func (t Table) LabelFor(key string) string {
	if label, ok := t.known[key]; ok {
		return label
	}
	return key
}

// Classify runs the shipped table.
func Classify(id string) string {
	return defaultTable.Classify(id)
}

// GroupByCategory runs the shipped table.
func GroupByCategory(cols []models.GridColumn) []Group {
	return defaultTable.GroupByCategory(cols)
}

// LabelFor runs the shipped table.
func LabelFor(key string) string {
	return defaultTable.LabelFor(key)
}
