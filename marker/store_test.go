package marker

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	store, err := Open(filepath.Join(t.TempDir(), "markers.db"))

	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func TestWriteMarker(t *testing.T) {
	var store = openStore(t)

	require.NoError(t, store.WriteMarker("firmware-update/20BS006LUS", "applied"))

	value, err := store.ReadMarker("firmware-update/20BS006LUS")

	require.NoError(t, err)
	assert.Equal(t, "applied", value)
}

func TestWriteMarkerIdempotent(t *testing.T) {
	var store = openStore(t)

	require.NoError(t, store.WriteMarker("firmware-update/20BS006LUS", "applied"))
	require.NoError(t, store.WriteMarker("firmware-update/20BS006LUS", "applied exit-status=0"))

	value, err := store.ReadMarker("firmware-update/20BS006LUS")

	require.NoError(t, err)
	assert.Equal(t, "applied exit-status=0", value)
}

func TestReadMarkerAbsent(t *testing.T) {
	var store = openStore(t)

	value, err := store.ReadMarker("firmware-update/none")

	require.NoError(t, err)
	assert.Equal(t, "", value)
}
