// Package parquet provides data structures and functions for exporting
// breakeven analysis data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
)

// RunRecord represents a single tracked analysis run with metadata.
// This struct maps to the breakeven_runs database table.
type RunRecord struct {
	// RunID is the unique identifier for this analysis run
	RunID int64 `parquet:"run_id,snappy"`

	// StartTime is when the analysis began
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the analysis completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// LoadedCells is the number of configuration cells with measurements
	LoadedCells int32 `parquet:"loaded_cells,snappy"`

	// MissingCells is the number of configuration cells without measurements
	MissingCells int32 `parquet:"missing_cells,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// CrossoverRecord represents one computed breakeven point.
// This struct maps to the breakeven_crossovers database table.
type CrossoverRecord struct {
	// RunID references the parent analysis run
	RunID int64 `parquet:"run_id,snappy"`

	// SeriesName names the varying series that crossed its baseline
	SeriesName string `parquet:"series_name,snappy"`

	// Control is the interpolated control-axis value of the crossing
	Control float64 `parquet:"control,snappy"`

	// Level is the baseline level at the crossing
	Level float64 `parquet:"level,snappy"`
}

// EstimateRecord represents one configuration cell's measurement. Missing
// cells keep their optional fields null rather than zero.
type EstimateRecord struct {
	Group     string   `parquet:"group,snappy"`
	Label     string   `parquet:"label,snappy"`
	Control   float64  `parquet:"control,snappy"`
	MeanNs    *float64 `parquet:"mean_ns,optional,snappy"`
	CILowerNs *float64 `parquet:"ci_lower_ns,optional,snappy"`
	CIUpperNs *float64 `parquet:"ci_upper_ns,optional,snappy"`
}

// WriteRunsParquet writes a slice of RunRecord structs to a Parquet file.
func WriteRunsParquet(data []RunRecord, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteCrossoversParquet writes a slice of CrossoverRecord structs to a Parquet file.
func WriteCrossoversParquet(data []CrossoverRecord, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteEstimatesParquet writes a slice of EstimateRecord structs to a Parquet file.
func WriteEstimatesParquet(data []EstimateRecord, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet writes records using struct schema inference; the schema is
// derived from the struct tags.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}
