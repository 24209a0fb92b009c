// Package prefs persists grid column preferences and serializes every
// mutation against the latest catalog snapshot.
package prefs

import "context"

// SettingsKey is the single namespaced key the preference blob lives
// under in keyed backends.
const SettingsKey = "ui.grid.preferences"

// Store is the persistence seam: a dumb blob surface. The schema inside
// the blob belongs to this package, not to the store.
type Store interface {
	// Get returns the stored blob, or (nil, nil) when none exists.
	Get(ctx context.Context) ([]byte, error)

	// Set replaces the stored blob. Implementations write atomically and
	// never touch sibling data living next to the blob.
	Set(ctx context.Context, blob []byte) error
}
