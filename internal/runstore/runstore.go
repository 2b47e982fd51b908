// Package runstore tracks analysis runs, their loaded estimates and computed
// crossovers in a relational store.
package runstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver

	"github.com/benchvis/breakeven/internal/contract"
	"github.com/benchvis/breakeven/schema"
)

// Table names for run tracking.
const (
	runsTable       = "breakeven_runs"
	estimatesTable  = "breakeven_estimates"
	crossoversTable = "breakeven_crossovers"
)

// StoreImpl implements the RunStore interface over database/sql.
type StoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.RunStore = &StoreImpl{} // Compile-time check

// NewRunStore creates a new RunStore with the specified backend. The sqlite
// backend defaults its file under the user cache directory; NoneBackend
// returns a no-op store.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (contract.RunStore, error) {
	if backend == schema.NoneBackend {
		return &StoreImpl{db: nil, backend: backend}, nil
	}

	db, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w. Check that the server is running and the connection string is valid", backend, err)
	}

	if err := migrateUp(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to prepare run store schema: %w", err)
	}

	return &StoreImpl{db: db, backend: backend}, nil
}

// openDB opens the backend-appropriate database handle.
func openDB(backend schema.DatabaseBackend, connStr string) (*sql.DB, error) {
	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetRunDBFilePath()
			if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
				return nil, fmt.Errorf("failed to create store directory: %w", err)
			}
		}
		db, err := sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
		return db, nil

	case schema.MySQLBackend:
		db, err := sql.Open("mysql", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}
		return db, nil

	case schema.PostgreSQLBackend:
		db, err := sql.Open("pgx", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}
		return db, nil

	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}
}

// formatTime converts a time.Time to the appropriate argument for the backend.
// SQLite stores timestamps as RFC3339Nano strings; the other backends take
// native datetimes.
func (s *StoreImpl) formatTime(t time.Time) any {
	if s.backend == schema.SQLiteBackend {
		return t.Format(time.RFC3339Nano)
	}
	return t
}

// readRunTime reads one run's start_time with backend-appropriate scanning.
func (s *StoreImpl) readRunTime(order string) (time.Time, error) {
	row := s.db.QueryRow(fmt.Sprintf(
		"SELECT start_time FROM %s ORDER BY run_id %s LIMIT 1", runsTable, order))
	if s.backend == schema.SQLiteBackend {
		var raw string
		if err := row.Scan(&raw); err != nil {
			return time.Time{}, err
		}
		return time.Parse(time.RFC3339Nano, raw)
	}
	var t time.Time
	if err := row.Scan(&t); err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// rebind converts ?-style placeholders to the backend's dialect.
func (s *StoreImpl) rebind(query string) string {
	if s.backend != schema.PostgreSQLBackend {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// BeginRun creates a new analysis run and returns its unique ID.
func (s *StoreImpl) BeginRun(startTime time.Time, configParams map[string]any) (int64, error) {
	if s.db == nil {
		return 0, nil
	}

	params, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to encode config params: %w", err)
	}

	if s.backend == schema.PostgreSQLBackend {
		var runID int64
		query := s.rebind(fmt.Sprintf(
			"INSERT INTO %s (start_time, config_params) VALUES (?, ?) RETURNING run_id", runsTable))
		if err := s.db.QueryRow(query, s.formatTime(startTime), string(params)).Scan(&runID); err != nil {
			return 0, fmt.Errorf("failed to begin run: %w", err)
		}
		return runID, nil
	}

	result, err := s.db.Exec(
		fmt.Sprintf("INSERT INTO %s (start_time, config_params) VALUES (?, ?)", runsTable),
		s.formatTime(startTime), string(params))
	if err != nil {
		return 0, fmt.Errorf("failed to begin run: %w", err)
	}
	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run ID: %w", err)
	}
	return runID, nil
}

// EndRun updates the analysis run with completion data.
func (s *StoreImpl) EndRun(runID int64, endTime time.Time, loadedCells, missingCells int) error {
	if s.db == nil {
		return nil
	}
	query := s.rebind(fmt.Sprintf(
		"UPDATE %s SET end_time = ?, loaded_cells = ?, missing_cells = ? WHERE run_id = ?", runsTable))
	if _, err := s.db.Exec(query, s.formatTime(endTime), loadedCells, missingCells, runID); err != nil {
		return fmt.Errorf("failed to end run %d: %w", runID, err)
	}
	return nil
}

// RecordEstimate stores one loaded estimate for a run.
func (s *StoreImpl) RecordEstimate(runID int64, cell schema.Cell, est schema.Estimate) error {
	if s.db == nil {
		return nil
	}
	query := s.rebind(fmt.Sprintf(
		"INSERT INTO %s (run_id, cell_group, label, control, mean_ns, ci_lower_ns, ci_upper_ns) VALUES (?, ?, ?, ?, ?, ?, ?)",
		estimatesTable))
	if _, err := s.db.Exec(query, runID, cell.Group, cell.Label, cell.Control, est.Mean, est.CILower, est.CIUpper); err != nil {
		return fmt.Errorf("failed to record estimate for %s: %w", cell, err)
	}
	return nil
}

// RecordCrossover stores a computed crossover point for a named series.
func (s *StoreImpl) RecordCrossover(runID int64, seriesName string, cp schema.CrossoverPoint) error {
	if s.db == nil {
		return nil
	}
	query := s.rebind(fmt.Sprintf(
		"INSERT INTO %s (run_id, series_name, control, level) VALUES (?, ?, ?, ?)", crossoversTable))
	if _, err := s.db.Exec(query, runID, seriesName, cp.Control, cp.Level); err != nil {
		return fmt.Errorf("failed to record crossover for %s: %w", seriesName, err)
	}
	return nil
}

// GetStatus returns status information about the run store.
func (s *StoreImpl) GetStatus() (schema.StoreStatus, error) {
	status := schema.StoreStatus{Backend: s.backend}
	if s.db == nil {
		return status, nil
	}
	status.Connected = true

	row := s.db.QueryRow(fmt.Sprintf("SELECT COUNT(*), COALESCE(MAX(run_id), 0) FROM %s", runsTable))
	if err := row.Scan(&status.TotalRuns, &status.LastRunID); err != nil {
		return status, fmt.Errorf("failed to read run counts: %w", err)
	}

	if status.TotalRuns > 0 {
		last, err := s.readRunTime("DESC")
		if err != nil {
			return status, fmt.Errorf("failed to read last run time: %w", err)
		}
		status.LastRunTime = last

		oldest, err := s.readRunTime("ASC")
		if err != nil {
			return status, fmt.Errorf("failed to read oldest run time: %w", err)
		}
		status.OldestRunTime = oldest
	}

	status.TableSizes = make(map[string]int64)
	for _, table := range []string{runsTable, estimatesTable, crossoversTable} {
		var count int64
		if err := s.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to count %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	return status, nil
}

// Clear removes all tracked runs and their results.
func (s *StoreImpl) Clear() error {
	if s.db == nil {
		return nil
	}
	// Children first to respect foreign keys
	for _, table := range []string{crossoversTable, estimatesTable, runsTable} {
		if _, err := s.db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

// Close closes the underlying connection.
func (s *StoreImpl) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
