package scan

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"scenedb-tools/pkg/layout"
	"scenedb-tools/pkg/testutil"
)

func TestListAssetIDs(t *testing.T) {
	ds := testutil.NewDataset(t).Model("b", "wood").Model("a", "red")
	// Non-mesh files and the textures dir are ignored.
	ds.Texture("wood.jpg", "jpg")

	ids, err := NewDataset(ds.Root + "/").ListAssetIDs()
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, ids)
}

func TestOversized_ThresholdIsInclusive(t *testing.T) {
	ds := testutil.NewDataset(t).
		LargeModel("under", 999).
		LargeModel("exact", 1000).
		LargeModel("over", 1001)

	d := NewDataset(ds.Root)
	got, err := d.Oversized([]string{"under", "exact", "over"}, 1000)
	require.NoError(t, err)
	require.Equal(t, []string{"exact", "over"}, got)
}

func TestOversized_DefaultThreshold(t *testing.T) {
	ds := testutil.NewDataset(t).LargeModel("huge", 50_000_000).Model("small", "m")

	got, err := NewDataset(ds.Root).Oversized([]string{"huge", "small"}, 50_000_000)
	require.NoError(t, err)
	require.Equal(t, []string{"huge"}, got)
}

func TestOversized_MissingMesh(t *testing.T) {
	ds := testutil.NewDataset(t)
	_, err := NewDataset(ds.Root).Oversized([]string{"ghost"}, 10)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestPending(t *testing.T) {
	tree := layout.New(t.TempDir())
	require.NoError(t, tree.EnsureTree())
	require.NoError(t, os.WriteFile(tree.ModelPath("done"), []byte("{}"), 0o644))

	converted, err := Converted(tree)
	require.NoError(t, err)
	require.Equal(t, []string{"done"}, converted)

	ids := []string{"c", "done", "big", "a"}
	got := Pending(ids, NewSet(converted), NewSet([]string{"big"}))
	require.Equal(t, []string{"c", "a"}, got)
}
