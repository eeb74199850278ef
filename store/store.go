// Package store persists operation logs and speed summaries to a local
// SQLite database so analysis runs can be audited and compared later.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"

	_ "modernc.org/sqlite"

	"github.com/movetrack/posekit/dataset"
	"github.com/movetrack/posekit/report"
)

// Store wraps a SQLite database holding posekit analysis records.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the
// schema exists. Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS operation_log (
			dataset_uuid   TEXT NOT NULL,
			seq            INTEGER NOT NULL,
			operation      TEXT NOT NULL,
			params         TEXT,
			applied_at     TIMESTAMP,
			PRIMARY KEY (dataset_uuid, seq)
		);
		CREATE TABLE IF NOT EXISTS speed_summaries (
			dataset_uuid   TEXT NOT NULL,
			individual     TEXT NOT NULL,
			keypoint       TEXT NOT NULL,
			mean           DOUBLE,
			std            DOUBLE,
			median         DOUBLE,
			p85            DOUBLE,
			p95            DOUBLE,
			n              BIGINT,
			recorded_at    TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (dataset_uuid, individual, keypoint)
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create store schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// RecordLog persists the dataset's operation log, replacing any previously
// stored entries for the same dataset UUID.
func (s *Store) RecordLog(ds *dataset.Dataset) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM operation_log WHERE dataset_uuid = ?`, ds.UUID); err != nil {
		return fmt.Errorf("failed to clear previous log: %w", err)
	}
	for seq, entry := range ds.Log {
		params, err := json.Marshal(entry.Params)
		if err != nil {
			return fmt.Errorf("failed to encode params for %q: %w", entry.Operation, err)
		}
		_, err = tx.Exec(
			`INSERT INTO operation_log (dataset_uuid, seq, operation, params, applied_at)
			 VALUES (?, ?, ?, ?, ?)`,
			ds.UUID, seq, entry.Operation, string(params), entry.Time.UTC(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert log entry %d: %w", seq, err)
		}
	}
	return tx.Commit()
}

// LogEntries reads back the stored operation log for a dataset UUID, in
// application order.
func (s *Store) LogEntries(datasetUUID string) ([]dataset.LogEntry, error) {
	rows, err := s.db.Query(
		`SELECT operation, params, applied_at FROM operation_log
		 WHERE dataset_uuid = ? ORDER BY seq`, datasetUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to query operation log: %w", err)
	}
	defer rows.Close()

	var entries []dataset.LogEntry
	for rows.Next() {
		var e dataset.LogEntry
		var params string
		var appliedAt time.Time
		if err := rows.Scan(&e.Operation, &params, &appliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan log entry: %w", err)
		}
		if params != "" {
			if err := json.Unmarshal([]byte(params), &e.Params); err != nil {
				return nil, fmt.Errorf("failed to decode params for %q: %w", e.Operation, err)
			}
		}
		e.Time = appliedAt
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// RecordSummaries persists speed summaries for a dataset UUID, replacing any
// previous summaries for the same individual/keypoint pairs.
func (s *Store) RecordSummaries(datasetUUID string, summaries []report.SpeedSummary) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, sum := range summaries {
		// SQLite has no NaN; non-finite stats are stored as NULL.
		_, err := tx.Exec(
			`INSERT OR REPLACE INTO speed_summaries
			 (dataset_uuid, individual, keypoint, mean, std, median, p85, p95, n)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			datasetUUID, sum.Individual, sum.Keypoint,
			finiteOrNil(sum.Mean), finiteOrNil(sum.Std), finiteOrNil(sum.Median),
			finiteOrNil(sum.P85), finiteOrNil(sum.P95), sum.N,
		)
		if err != nil {
			return fmt.Errorf("failed to insert summary for %s/%s: %w", sum.Individual, sum.Keypoint, err)
		}
	}
	return tx.Commit()
}

// Summaries reads back the stored speed summaries for a dataset UUID.
func (s *Store) Summaries(datasetUUID string) ([]report.SpeedSummary, error) {
	rows, err := s.db.Query(
		`SELECT individual, keypoint, mean, std, median, p85, p95, n
		 FROM speed_summaries WHERE dataset_uuid = ?
		 ORDER BY individual, keypoint`, datasetUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to query summaries: %w", err)
	}
	defer rows.Close()

	var out []report.SpeedSummary
	for rows.Next() {
		var sum report.SpeedSummary
		var mean, std, median, p85, p95 sql.NullFloat64
		if err := rows.Scan(&sum.Individual, &sum.Keypoint,
			&mean, &std, &median, &p85, &p95, &sum.N); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		sum.Mean = floatOrNaN(mean)
		sum.Std = floatOrNaN(std)
		sum.Median = floatOrNaN(median)
		sum.P85 = floatOrNaN(p85)
		sum.P95 = floatOrNaN(p95)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// finiteOrNil maps non-finite values to nil so they bind as NULL.
func finiteOrNil(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

// floatOrNaN maps NULL columns back to NaN.
func floatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
