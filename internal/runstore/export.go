package runstore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/benchvis/breakeven/internal/parquet"
	"github.com/benchvis/breakeven/schema"
)

// Export file names, one per tracked table.
const (
	runsExportFile       = "runs.parquet"
	estimatesExportFile  = "estimates.parquet"
	crossoversExportFile = "crossovers.parquet"
)

// ExportParquet writes the tracked runs, estimates and crossovers as Parquet
// files under the given directory.
func (s *StoreImpl) ExportParquet(dir string) error {
	if s.db == nil {
		return fmt.Errorf("run tracking is disabled (backend: none)")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	runs, err := s.loadRunRecords()
	if err != nil {
		return err
	}
	if err := parquet.WriteRunsParquet(runs, filepath.Join(dir, runsExportFile)); err != nil {
		return fmt.Errorf("failed to export runs: %w", err)
	}

	estimates, err := s.loadEstimateRecords()
	if err != nil {
		return err
	}
	if err := parquet.WriteEstimatesParquet(estimates, filepath.Join(dir, estimatesExportFile)); err != nil {
		return fmt.Errorf("failed to export estimates: %w", err)
	}

	crossovers, err := s.loadCrossoverRecords()
	if err != nil {
		return err
	}
	if err := parquet.WriteCrossoversParquet(crossovers, filepath.Join(dir, crossoversExportFile)); err != nil {
		return fmt.Errorf("failed to export crossovers: %w", err)
	}
	return nil
}

func (s *StoreImpl) loadRunRecords() ([]parquet.RunRecord, error) {
	rows, err := s.db.Query(fmt.Sprintf(
		"SELECT run_id, start_time, end_time, loaded_cells, missing_cells, config_params FROM %s ORDER BY run_id", runsTable))
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []parquet.RunRecord
	for rows.Next() {
		var rec parquet.RunRecord
		var params sql.NullString
		if s.backend == schema.SQLiteBackend {
			var startRaw string
			var endRaw sql.NullString
			if err := rows.Scan(&rec.RunID, &startRaw, &endRaw, &rec.LoadedCells, &rec.MissingCells, &params); err != nil {
				return nil, fmt.Errorf("failed to scan run row: %w", err)
			}
			if rec.StartTime, err = time.Parse(time.RFC3339Nano, startRaw); err != nil {
				return nil, fmt.Errorf("failed to parse run start time: %w", err)
			}
			if endRaw.Valid {
				end, err := time.Parse(time.RFC3339Nano, endRaw.String)
				if err != nil {
					return nil, fmt.Errorf("failed to parse run end time: %w", err)
				}
				rec.EndTime = &end
			}
		} else {
			var endTime sql.NullTime
			if err := rows.Scan(&rec.RunID, &rec.StartTime, &endTime, &rec.LoadedCells, &rec.MissingCells, &params); err != nil {
				return nil, fmt.Errorf("failed to scan run row: %w", err)
			}
			if endTime.Valid {
				t := endTime.Time
				rec.EndTime = &t
			}
		}
		if params.Valid {
			p := params.String
			rec.ConfigParams = &p
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *StoreImpl) loadEstimateRecords() ([]parquet.EstimateRecord, error) {
	rows, err := s.db.Query(fmt.Sprintf(
		"SELECT cell_group, label, control, mean_ns, ci_lower_ns, ci_upper_ns FROM %s ORDER BY id", estimatesTable))
	if err != nil {
		return nil, fmt.Errorf("failed to query estimates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []parquet.EstimateRecord
	for rows.Next() {
		var rec parquet.EstimateRecord
		var mean, lower, upper float64
		if err := rows.Scan(&rec.Group, &rec.Label, &rec.Control, &mean, &lower, &upper); err != nil {
			return nil, fmt.Errorf("failed to scan estimate row: %w", err)
		}
		rec.MeanNs, rec.CILowerNs, rec.CIUpperNs = &mean, &lower, &upper
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *StoreImpl) loadCrossoverRecords() ([]parquet.CrossoverRecord, error) {
	rows, err := s.db.Query(fmt.Sprintf(
		"SELECT run_id, series_name, control, level FROM %s ORDER BY id", crossoversTable))
	if err != nil {
		return nil, fmt.Errorf("failed to query crossovers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []parquet.CrossoverRecord
	for rows.Next() {
		var rec parquet.CrossoverRecord
		if err := rows.Scan(&rec.RunID, &rec.SeriesName, &rec.Control, &rec.Level); err != nil {
			return nil, fmt.Errorf("failed to scan crossover row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
