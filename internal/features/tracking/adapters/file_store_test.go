package adapters

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"tracking-bot/internal/features/tracking/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempStorePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "tracking.json")
}

// TestFileStore_LoadAbsent verifies that a missing file yields an empty registry.
func TestFileStore_LoadAbsent(t *testing.T) {
	store := NewFileStore(tempStorePath(t))

	registry, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, registry)
	assert.NotNil(t, registry)
}

// TestFileStore_LoadCorrupted verifies corruption resets to empty without error.
func TestFileStore_LoadCorrupted(t *testing.T) {
	path := tempStorePath(t)
	require.NoError(t, os.WriteFile(path, []byte("{not valid json"), 0o644))

	store := NewFileStore(path)

	registry, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, registry)
}

// TestFileStore_LoadEmptyFile verifies an empty file behaves like absence.
func TestFileStore_LoadEmptyFile(t *testing.T) {
	path := tempStorePath(t)
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))

	store := NewFileStore(path)

	registry, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, registry)
}

// TestFileStore_SaveLoadRoundTrip verifies the document survives a cycle with
// insertion order intact.
func TestFileStore_SaveLoadRoundTrip(t *testing.T) {
	store := NewFileStore(tempStorePath(t))
	ctx := context.Background()

	want := map[string][]domain.TrackedShipment{
		"user-1": {
			{TrackingNumber: "1Z999AA10123456784", Carrier: "ups"},
			{TrackingNumber: "9400100000000000000000", Carrier: "usps"},
		},
		"user-2": {
			{TrackingNumber: "779912345678", Carrier: "fedex"},
		},
	}

	require.NoError(t, store.Save(ctx, want))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

// TestFileStore_SaveOverwrites verifies each save replaces the full document.
func TestFileStore_SaveOverwrites(t *testing.T) {
	store := NewFileStore(tempStorePath(t))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, map[string][]domain.TrackedShipment{
		"user-1": {{TrackingNumber: "a", Carrier: "ups"}},
	}))
	require.NoError(t, store.Save(ctx, map[string][]domain.TrackedShipment{
		"user-2": {{TrackingNumber: "b", Carrier: "dhl"}},
	}))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.NotContains(t, got, "user-1")
	assert.Contains(t, got, "user-2")
}
