package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"

	"scenedb-tools/pkg/stats"
)

func main() {
	output := flag.String("out", "numMatsHist.csv", "CSV report path")
	pdfPath := flag.String("pdf", "", "Also render the histogram as a PDF chart")
	xlsxPath := flag.String("xlsx", "", "Also write the histogram as a spreadsheet")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Println("Usage: materialstats [options] <model descriptor dir>")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cyan := color.New(color.FgCyan).SprintFunc()
	h, err := stats.Aggregate(args[0], func(done, total int) {
		fmt.Printf("\r%s %d/%d", cyan("Aggregating"), done, total)
	})
	fmt.Println()
	if err != nil {
		// Nothing is written when any descriptor is unreadable.
		red := color.New(color.FgRed, color.Bold).SprintFunc()
		fmt.Printf("%s %v\n", red("Error:"), err)
		os.Exit(1)
	}

	reports := []struct {
		path  string
		write stats.WriterFunc
	}{
		{*output, stats.WriteCSV},
		{*pdfPath, stats.WritePDF},
		{*xlsxPath, stats.WriteXLSX},
	}
	green := color.New(color.FgGreen).SprintFunc()
	for _, r := range reports {
		if r.path == "" {
			continue
		}
		if err := stats.WriteFile(r.path, h, r.write); err != nil {
			fmt.Printf("Error writing report: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s %s\n", green("Wrote"), r.path)
	}
	fmt.Printf("%d models in %d buckets\n", h.Total(), len(h.Buckets()))
}
