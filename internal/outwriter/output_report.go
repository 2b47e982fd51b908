package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/term"

	"github.com/benchvis/breakeven/internal/contract"
	"github.com/benchvis/breakeven/internal/parquet"
)

var missingColor = color.New(color.FgHiBlack)

// writeReportTable generates and writes the human-readable table.
func writeReportTable(w io.Writer, rows []ReportRow, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Group", "Label", "Control", "Mean (µs)", "CI Lower", "CI Upper"})
	table.Configure(func(tc *tablewriter.Config) {
		tc.Row.Alignment.Global = tw.AlignRight
	})

	fmtFloat := func(v float64) string {
		return strconv.FormatFloat(v, 'f', cfg.Precision, 64)
	}
	maxLabel := maxLabelWidth(cfg)

	measured := 0
	var data [][]string
	for _, r := range rows {
		row := []string{r.Group, truncateLabel(r.Label, maxLabel), trimControl(r.Control)}
		if r.Missing() {
			gap := gapMarker(cfg)
			row = append(row, gap, gap, gap)
		} else {
			measured++
			row = append(row,
				fmtFloat(*r.MeanNs/1e3),
				fmtFloat(*r.CILowerNs/1e3),
				fmtFloat(*r.CIUpperNs/1e3),
			)
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Fprintf(w, "Cells: %d measured, %d missing\n", measured, len(rows)-measured)
	return nil
}

// writeReportCSV writes the report with raw nanosecond values. Missing cells
// produce empty numeric fields.
func writeReportCSV(w io.Writer, rows []ReportRow, cfg *contract.Config) error {
	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	if err := csvWriter.Write([]string{"group", "label", "control", "mean_ns", "ci_lower_ns", "ci_upper_ns"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	fmtFloat := func(v float64) string {
		return strconv.FormatFloat(v, 'f', cfg.Precision, 64)
	}
	for _, r := range rows {
		record := []string{r.Group, r.Label, trimControl(r.Control)}
		if r.Missing() {
			record = append(record, "", "", "")
		} else {
			record = append(record, fmtFloat(*r.MeanNs), fmtFloat(*r.CILowerNs), fmtFloat(*r.CIUpperNs))
		}
		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	return nil
}

// writeReportJSON writes the report as indented JSON with null measurement
// fields for missing cells.
func writeReportJSON(w io.Writer, rows []ReportRow) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(rows); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeReportParquet writes the report via the parquet package.
func writeReportParquet(rows []ReportRow, outputPath string) error {
	records := make([]parquet.EstimateRecord, len(rows))
	for i, r := range rows {
		records[i] = parquet.EstimateRecord{
			Group:     r.Group,
			Label:     r.Label,
			Control:   r.Control,
			MeanNs:    r.MeanNs,
			CILowerNs: r.CILowerNs,
			CIUpperNs: r.CIUpperNs,
		}
	}
	return parquet.WriteEstimatesParquet(records, outputPath)
}

// gapMarker renders an explicit gap for a missing cell, dimmed when colors
// are enabled.
func gapMarker(cfg *contract.Config) string {
	if cfg.UseColors {
		return missingColor.Sprint("—")
	}
	return "—"
}

// trimControl drops the decimal part for integer control values so index
// counts print as "8", not "8.00".
func trimControl(x float64) string {
	if x == float64(int64(x)) {
		return strconv.FormatInt(int64(x), 10)
	}
	return strconv.FormatFloat(x, 'f', 2, 64)
}

// maxLabelWidth calculates the width available for the label column based on
// terminal width.
func maxLabelWidth(cfg *contract.Config) int {
	termWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || termWidth <= 0 {
		// Conservative default for narrow terminals and CI
		termWidth = 80
	}
	// Reserve space for the fixed numeric columns with borders and padding
	width := termWidth - 55
	if width < 20 {
		width = 20
	}
	return width
}

// truncateLabel shortens a label to fit the table, keeping the tail which
// carries the distinguishing axis values.
func truncateLabel(label string, maxWidth int) string {
	if len(label) <= maxWidth {
		return label
	}
	return "…" + label[len(label)-maxWidth+1:]
}
