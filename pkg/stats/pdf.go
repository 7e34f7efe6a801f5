package stats

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

// Chart geometry in mm on an A4 landscape page.
const (
	chartLeft   = 25.0
	chartTop    = 30.0
	chartWidth  = 245.0
	chartHeight = 140.0
	maxBarWidth = 20.0
)

// WritePDF renders the histogram as a bar chart: one bar per bucket, labelled
// with its material count below and its occurrence count above.
func WritePDF(h *Histogram, w io.Writer) error {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "L",
		UnitStr:        "mm",
		SizeStr:        "A4",
	})
	pdf.SetTitle("Materials per model", true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Text(chartLeft, chartTop-12, fmt.Sprintf("Materials per model (%d models)", h.Total()))

	buckets := h.Buckets()
	maxOcc := 0
	for _, b := range buckets {
		if b.Occurrences > maxOcc {
			maxOcc = b.Occurrences
		}
	}

	// Axes
	pdf.SetLineWidth(0.3)
	pdf.SetDrawColor(0, 0, 0)
	pdf.Line(chartLeft, chartTop, chartLeft, chartTop+chartHeight)
	pdf.Line(chartLeft, chartTop+chartHeight, chartLeft+chartWidth, chartTop+chartHeight)

	if len(buckets) == 0 || maxOcc == 0 {
		pdf.SetFont("Arial", "", 10)
		pdf.Text(chartLeft+5, chartTop+chartHeight/2, "no descriptors")
		return pdf.Output(w)
	}

	slot := chartWidth / float64(len(buckets))
	barW := slot * 0.7
	if barW > maxBarWidth {
		barW = maxBarWidth
	}

	pdf.SetFont("Arial", "", 7)
	pdf.SetFillColor(70, 110, 180)
	for i, b := range buckets {
		barH := chartHeight * float64(b.Occurrences) / float64(maxOcc)
		x := chartLeft + float64(i)*slot + (slot-barW)/2
		y := chartTop + chartHeight - barH
		pdf.Rect(x, y, barW, barH, "F")

		pdf.Text(x, chartTop+chartHeight+4, fmt.Sprintf("%d", b.Materials))
		pdf.Text(x, y-1.5, fmt.Sprintf("%d", b.Occurrences))
	}

	pdf.SetFont("Arial", "", 9)
	pdf.Text(chartLeft+chartWidth/2-15, chartTop+chartHeight+11, "number of materials")

	return pdf.Output(w)
}
