// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"fmt"
	"time"

	"github.com/benchvis/breakeven/schema"
)

// EstimateSource defines how measurement records are loaded for configuration
// cells. This allows the core pipeline to be tested without a real results tree.
type EstimateSource interface {
	// Load returns the estimate for the given cell. The second return value is
	// false when the cell was never measured; this is an expected condition,
	// not an error. A record that exists but cannot be parsed yields a
	// *MalformedRecordError.
	Load(cell schema.Cell) (schema.Estimate, bool, error)
}

// RunStore defines the interface for tracking analysis runs and their results.
type RunStore interface {
	// BeginRun creates a new analysis run and returns its unique ID.
	BeginRun(startTime time.Time, configParams map[string]any) (int64, error)

	// EndRun updates the analysis run with completion data.
	EndRun(runID int64, endTime time.Time, loadedCells, missingCells int) error

	// RecordEstimate stores one loaded estimate for a run.
	RecordEstimate(runID int64, cell schema.Cell, est schema.Estimate) error

	// RecordCrossover stores a computed crossover point for a named series.
	RecordCrossover(runID int64, seriesName string, cp schema.CrossoverPoint) error

	// GetStatus returns status information about the run store.
	GetStatus() (schema.StoreStatus, error)

	// Clear removes all tracked runs and their results.
	Clear() error

	// Migrate moves the store schema to the requested version. Negative means
	// latest, zero rolls everything back, positive targets that version.
	Migrate(targetVersion int) error

	// ExportParquet writes the tracked runs, estimates and crossovers as
	// Parquet files under the given directory.
	ExportParquet(dir string) error

	// Close closes the underlying connection.
	Close() error
}

// MalformedRecordError indicates a record exists on disk but fails to parse or
// is missing required numeric fields. It is fatal for the whole run: a corrupt
// record is an input-integrity defect, not an unmeasured cell.
type MalformedRecordError struct {
	Cell schema.Cell
	Err  error
}

// Error implements the error interface.
func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record for %s: %v", e.Cell, e.Err)
}

// Unwrap returns the underlying parse error.
func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}
