package metadata

import (
	"bytes"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"scenedb-tools/pkg/layout"
	"scenedb-tools/pkg/scan"
	"scenedb-tools/pkg/testutil"
)

func readerFor(s string) *Reader {
	return NewReader(bytes.NewBufferString(s), "test", nil)
}

func TestJoin(t *testing.T) {
	records, err := ReadNames(readerFor("a|Chair\nb|Table\n"))
	require.NoError(t, err)

	orphans, err := FoldTags(readerFor("a|red|wood\n"), records)
	require.NoError(t, err)
	require.Empty(t, orphans)

	require.Equal(t, &Record{ID: "a", Name: "Chair", Tags: []string{"red", "wood"}}, records["a"])
	require.Equal(t, &Record{ID: "b", Name: "Table", Tags: []string{}}, records["b"])
}

func TestReadNames_TrimsFields(t *testing.T) {
	records, err := ReadNames(readerFor("  a  |  Office Chair \r\n"))
	require.NoError(t, err)
	require.Equal(t, "Office Chair", records["a"].Name)
}

func TestReadNames_Malformed(t *testing.T) {
	_, err := ReadNames(readerFor("a|Chair\nnopipe\n"))
	require.ErrorIs(t, err, ErrMalformedLine)
	require.ErrorContains(t, err, "line 2")
}

func TestFoldTags_TrimsOnlyTrailingTag(t *testing.T) {
	records, err := ReadNames(readerFor("a|Chair\n"))
	require.NoError(t, err)

	_, err = FoldTags(readerFor("a| red |wood \r\n"), records)
	require.NoError(t, err)
	require.Equal(t, []string{" red ", "wood"}, records["a"].Tags)
}

func TestFoldTags_DropsOrphans(t *testing.T) {
	records, err := ReadNames(readerFor("a|Chair\n"))
	require.NoError(t, err)

	orphans, err := FoldTags(readerFor("z|ghost\na|red\ny|other\n"), records)
	require.NoError(t, err)
	require.Equal(t, []string{"y", "z"}, orphans)
	require.Len(t, records, 1)
	require.Equal(t, []string{"red"}, records["a"].Tags)
}

func TestMerge_WritesRecordsExceptOversized(t *testing.T) {
	ds := testutil.NewDataset(t).
		Names("a|Chair", "b|Table", "big|Cathedral").
		Tags("a|red|wood", "ghost|spooky")

	tree := layout.New(t.TempDir())
	require.NoError(t, tree.EnsureTree())

	m := NewMerger(scan.NewDataset(ds.Root), tree, nil, zerolog.Nop())
	res, err := m.Merge(scan.NewSet([]string{"big"}))
	require.NoError(t, err)
	require.Equal(t, Result{Records: 3, Written: 2, Oversized: 1, Orphans: []string{"ghost"}}, res)

	data, err := os.ReadFile(tree.MetadataPath("a"))
	require.NoError(t, err)
	require.JSONEq(t, `{"id":"a","name":"Chair","tags":["red","wood"]}`, string(data))

	rec, err := ReadRecord(tree.MetadataPath("b"))
	require.NoError(t, err)
	require.Equal(t, &Record{ID: "b", Name: "Table", Tags: []string{}}, rec)

	_, err = os.Stat(tree.MetadataPath("big"))
	require.ErrorIs(t, err, os.ErrNotExist)
	_, err = os.Stat(tree.MetadataPath("ghost"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestMerge_Deterministic(t *testing.T) {
	ds := testutil.NewDataset(t).Names("a|Chair").Tags("a|red")
	tree := layout.New(t.TempDir())
	require.NoError(t, tree.EnsureTree())
	m := NewMerger(scan.NewDataset(ds.Root), tree, nil, zerolog.Nop())

	_, err := m.Merge(nil)
	require.NoError(t, err)
	first, err := os.ReadFile(tree.MetadataPath("a"))
	require.NoError(t, err)

	_, err = m.Merge(nil)
	require.NoError(t, err)
	second, err := os.ReadFile(tree.MetadataPath("a"))
	require.NoError(t, err)
	require.Equal(t, first, second)
}
