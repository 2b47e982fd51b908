// Package outwriter has output and writer logic for the report command.
package outwriter

import (
	"fmt"
	"io"
	"os"

	"github.com/benchvis/breakeven/internal/contract"
	"github.com/benchvis/breakeven/schema"
)

// ReportRow is one configuration cell in the estimates report. Nil measurement
// fields mark an unmeasured cell; they serialize as explicit gaps (JSON null,
// empty CSV fields), never as numeric zeros.
type ReportRow struct {
	Group     string   `json:"group"`
	Label     string   `json:"label"`
	Control   float64  `json:"control"`
	MeanNs    *float64 `json:"mean_ns"`
	CILowerNs *float64 `json:"ci_lower_ns"`
	CIUpperNs *float64 `json:"ci_upper_ns"`
}

// Missing reports whether this row carries no measurement.
func (r ReportRow) Missing() bool {
	return r.MeanNs == nil
}

// BuildReportRows pairs enumerated cells with their loaded estimates, keeping
// the enumeration order.
func BuildReportRows(cells []schema.Cell, estimates []*schema.Estimate) []ReportRow {
	rows := make([]ReportRow, len(cells))
	for i, cell := range cells {
		rows[i] = ReportRow{
			Group:   cell.Group,
			Label:   cell.Label,
			Control: cell.Control,
		}
		if est := estimates[i]; est != nil {
			mean, lower, upper := est.Mean, est.CILower, est.CIUpper
			rows[i].MeanNs = &mean
			rows[i].CILowerNs = &lower
			rows[i].CIUpperNs = &upper
		}
	}
	return rows
}

// WriteReport outputs the estimates report, dispatching on the configured
// output format.
func WriteReport(rows []ReportRow, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportJSON(w, rows)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportCSV(w, rows, cfg)
		}, "Wrote CSV")
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return fmt.Errorf("parquet output requires --output-file")
		}
		if err := writeReportParquet(rows, cfg.OutputFile); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote parquet to %s\n", cfg.OutputFile)
		return nil
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportTable(w, rows, cfg)
		}, "Wrote table")
	}
}

// writeWithFile handles the common pattern of opening a file, writing to it,
// and cleaning up.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}
