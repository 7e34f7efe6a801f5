package layout

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureTree_Idempotent(t *testing.T) {
	tree := New(filepath.Join(t.TempDir(), "data"))

	require.NoError(t, tree.EnsureTree())
	require.NoError(t, tree.EnsureTree())

	for _, dir := range tree.Dirs() {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		require.True(t, info.IsDir(), dir)
	}
}

func TestDeleteAsset(t *testing.T) {
	tree := New(t.TempDir())
	require.NoError(t, tree.EnsureTree())

	require.NoError(t, os.WriteFile(tree.ModelPath("chair"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(tree.GeometryPath("chair"), []byte("utf8"), 0o644))
	// An artifact that ended up as a directory is removed too.
	require.NoError(t, os.MkdirAll(filepath.Join(tree.ImagePath("chair"), "nested"), 0o755))
	// Other assets are untouched.
	require.NoError(t, os.WriteFile(tree.ModelPath("table"), []byte("{}"), 0o644))

	require.NoError(t, tree.DeleteAsset("chair"))

	for _, p := range tree.AssetPaths("chair") {
		_, err := os.Stat(p)
		require.ErrorIs(t, err, os.ErrNotExist, p)
	}
	_, err := os.Stat(tree.ModelPath("table"))
	require.NoError(t, err)

	// Deleting again is a no-op.
	require.NoError(t, tree.DeleteAsset("chair"))
}
