package stats

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"scenedb-tools/pkg/testutil"
)

func writeDescriptors(t *testing.T, counts map[string]int) string {
	t.Helper()
	dir := t.TempDir()
	for id, n := range counts {
		require.NoError(t, testutil.WriteDescriptor(filepath.Join(dir, id+".json"), n))
	}
	return dir
}

func TestAggregate_Buckets(t *testing.T) {
	dir := writeDescriptors(t, map[string]int{"b": 2, "a": 2, "c": 5})

	var calls []int
	h, err := Aggregate(dir, func(done, total int) {
		require.Equal(t, 3, total)
		calls = append(calls, done)
	})
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, calls)
	require.Equal(t, 3, h.Total())
	require.Equal(t, []Bucket{
		{Materials: 2, Occurrences: 2, Exemplar: "a"},
		{Materials: 5, Occurrences: 1, Exemplar: "c"},
	}, h.Buckets())

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(h, &buf))
	require.Equal(t, "2,2,a\n5,1,c\n", buf.String())
}

func TestAggregate_IgnoresOtherFiles(t *testing.T) {
	dir := writeDescriptors(t, map[string]int{"a": 1})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not json"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0o755))

	h, err := Aggregate(dir, nil)
	require.NoError(t, err)
	require.Equal(t, 1, h.Total())
}

func TestAggregate_ArrayMaterials(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.json"),
		[]byte(`{"materials": [{"name": "a"}, {"name": "b"}, {"name": "c"}]}`), 0o644))

	h, err := Aggregate(dir, nil)
	require.NoError(t, err)
	require.Equal(t, []Bucket{{Materials: 3, Occurrences: 1, Exemplar: "x"}}, h.Buckets())
}

func TestAggregate_ParseErrorIsFatal(t *testing.T) {
	dir := writeDescriptors(t, map[string]int{"good": 2})
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"materials": `), 0o644))

	h, err := Aggregate(dir, nil)
	require.Nil(t, h)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, bad, perr.Path)
	require.Contains(t, err.Error(), "could not parse JSON from file")
}

func TestCountMaterials(t *testing.T) {
	n, err := CountMaterials([]byte(`{"materials": {"x": {}, "y": {}}}`))
	require.NoError(t, err)
	require.Equal(t, 2, n)

	n, err = CountMaterials([]byte(`{"materials": []}`))
	require.NoError(t, err)
	require.Equal(t, 0, n)

	_, err = CountMaterials([]byte(`{"urls": {}}`))
	require.ErrorIs(t, err, ErrNoMaterials)

	_, err = CountMaterials([]byte(`{"materials": 4}`))
	require.ErrorIs(t, err, ErrNoMaterials)
}

func TestWriteFile_NoPartialReport(t *testing.T) {
	h := NewHistogram()
	h.Add("a", 1)
	dir := t.TempDir()
	out := filepath.Join(dir, "numMatsHist.csv")

	err := WriteFile(out, h, func(*Histogram, io.Writer) error { return errors.New("disk full") })
	require.ErrorContains(t, err, "disk full")
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)

	require.NoError(t, WriteFile(out, h, WriteCSV))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "1,1,a\n", string(data))
}

func TestWritePDF(t *testing.T) {
	h := NewHistogram()
	h.Add("a", 2)
	h.Add("b", 7)

	var buf bytes.Buffer
	require.NoError(t, WritePDF(h, &buf))
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	buf.Reset()
	require.NoError(t, WritePDF(NewHistogram(), &buf))
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestWriteXLSX(t *testing.T) {
	h := NewHistogram()
	h.Add("b", 3)
	h.Add("a", 3)
	h.Add("z", 1)

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(h, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Equal(t, [][]string{
		{"materials", "occurrences", "exemplar"},
		{"1", "1", "z"},
		{"3", "2", "a"},
	}, rows)
}
