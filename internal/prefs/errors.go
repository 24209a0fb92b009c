package prefs

import "errors"

// Failure taxonomy. None of these are fatal to a hosting command or view;
// every one degrades to a previously valid state.
var (
	// ErrCatalogUnavailable means no catalog snapshot has resolved yet.
	// Columns returns it alongside the hydrated saved list.
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// ErrPersistedDataCorrupt tags an unreadable preference blob. The
	// manager treats the blob as absent and logs the cause; mutations
	// never return it.
	ErrPersistedDataCorrupt = errors.New("persisted preferences corrupt")

	// ErrInvalidMutation is reserved for mutation misuse that cannot be
	// resolved by the no-op and clamp rules.
	ErrInvalidMutation = errors.New("invalid mutation")

	// ErrStoreClosed is returned by stores used after Close.
	ErrStoreClosed = errors.New("preference store closed")
)
