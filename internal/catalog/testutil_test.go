package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arung-agamani/soundvault/internal/bus"
)

// newTestStore opens a fresh sqlite-backed Store under t.TempDir, with no
// bootstrap record written to disk.
func newTestStore(t *testing.T) (*Store, *bus.Bus) {
	t.Helper()
	b := bus.New(64)
	t.Cleanup(func() { b.Close(context.Background()) })

	path := filepath.Join(t.TempDir(), "data.db")
	store, err := Open(context.Background(), path, b, "")
	require.NoError(t, err, "open store")
	t.Cleanup(func() { store.Close() })
	return store, b
}
