package prefs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileStoreGetAbsent(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "settings.json"))
	require.NoError(t, err)

	blob, err := store.Get(context.Background())
	require.NoError(t, err)
	require.Nil(t, blob, "missing file reads as absent, not as an error")
}

func TestFileStoreRoundTrip(t *testing.T) {
	// The parent directory does not exist yet; Set must create it.
	store, err := NewFileStore(filepath.Join(t.TempDir(), "portscout", "settings.json"))
	require.NoError(t, err)

	ctx := context.Background()
	payload := []byte(`{"sshUsername":"netops","columns":[]}`)
	require.NoError(t, store.Set(ctx, payload))

	got, err := store.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, payload, got)

	// Overwrite replaces the whole blob.
	require.NoError(t, store.Set(ctx, []byte(`{}`)))
	got, err = store.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, []byte(`{}`), got)
}

func TestFileStoreEmptyFileReadsAsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	store, err := NewFileStore(path)
	require.NoError(t, err)

	blob, err := store.Get(context.Background())
	require.NoError(t, err)
	require.Nil(t, blob)
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(filepath.Join(dir, "settings.json"))
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Set(ctx, []byte(`{"columns":[]}`)))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	require.ElementsMatch(t, []string{"settings.json", "settings.json.lock"}, names)
}

func TestFileStoreRejectsEmptyPath(t *testing.T) {
	_, err := NewFileStore("   ")
	require.Error(t, err)
}

func TestFileStoreHonorsContextCancellation(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "settings.json"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = store.Get(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, store.Set(ctx, []byte(`{}`)), context.Canceled)
}
