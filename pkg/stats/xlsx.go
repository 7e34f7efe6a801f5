package stats

import (
	"io"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Materials"

// WriteXLSX writes the histogram as a spreadsheet with a header row.
func WriteXLSX(h *Histogram, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}
	header := []any{"materials", "occurrences", "exemplar"}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return err
	}
	for i, b := range h.Buckets() {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{b.Materials, b.Occurrences, b.Exemplar}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return err
		}
	}
	return f.Write(w)
}
