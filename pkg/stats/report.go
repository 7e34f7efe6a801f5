package stats

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// WriteCSV writes one "materials,occurrences,exemplar" line per bucket.
func WriteCSV(h *Histogram, w io.Writer) error {
	cw := csv.NewWriter(w)
	for _, b := range h.Buckets() {
		rec := []string{strconv.Itoa(b.Materials), strconv.Itoa(b.Occurrences), b.Exemplar}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriterFunc renders a histogram into w.
type WriterFunc func(h *Histogram, w io.Writer) error

// WriteFile renders h into path through a temporary file, so a failed write
// leaves no partial report behind.
func WriteFile(path string, h *Histogram, write WriterFunc) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := write(h, tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write report %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
