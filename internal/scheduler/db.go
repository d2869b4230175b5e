package scheduler

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// DB wraps the SQL database connection holding the cycle history.
type DB struct {
	db     *sql.DB
	logger zerolog.Logger
}

// CycleHistoryEntry represents a record in the cycle_history table.
type CycleHistoryEntry struct {
	ID         int64
	CycleID    string
	StartTime  time.Time
	EndTime    sql.NullTime
	Status     string
	Subjects   int
	Checked    int
	Failed     int
	LogSummary sql.NullString
}

// NewDB opens the database and ensures the schema is set up.
func NewDB(dataSourceName string, logger zerolog.Logger) (*DB, error) {
	logger = logger.With().Str("component", "SchedulerDB").Logger()
	logger.Debug().Str("db_path", dataSourceName).Msg("Opening scheduler database")

	dbDir := filepath.Dir(dataSourceName)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create scheduler database directory %s: %w", dbDir, err)
	}

	dbInstance, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("sql.Open failed for %s: %w", dataSourceName, err)
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY between cycles.
	dbInstance.SetMaxOpenConns(1)

	db := &DB{
		db:     dbInstance,
		logger: logger,
	}

	if err := db.InitSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// InitSchema creates the cycle_history table if it doesn't already exist.
func (d *DB) InitSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS cycle_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		cycle_id TEXT UNIQUE NOT NULL,
		cycle_start_time DATETIME NOT NULL,
		cycle_end_time DATETIME,
		status TEXT NOT NULL,
		num_subjects INTEGER NOT NULL DEFAULT 0,
		checked INTEGER NOT NULL DEFAULT 0,
		failed INTEGER NOT NULL DEFAULT 0,
		log_summary TEXT
	);
	`
	if _, err := d.db.Exec(query); err != nil {
		d.logger.Error().Err(err).Msg("Failed to initialize schema")
		return err
	}
	return nil
}

// RecordCycleStart inserts a STARTED row and returns its row id.
func (d *DB) RecordCycleStart(cycleID string, numSubjects int, startTime time.Time) (int64, error) {
	query := `INSERT INTO cycle_history (cycle_id, cycle_start_time, status, num_subjects) VALUES (?, ?, ?, ?)`
	result, err := d.db.Exec(query, cycleID, startTime.UTC(), CycleStatusStarted, numSubjects)
	if err != nil {
		return 0, fmt.Errorf("failed to insert cycle start record: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	d.logger.Debug().Int64("db_id", id).Str("cycle_id", cycleID).Msg("Recorded cycle start")
	return id, nil
}

// UpdateCycleCompletion stores the outcome of a cycle.
func (d *DB) UpdateCycleCompletion(dbID int64, endTime time.Time, status string, checked, failed int, logSummary string) error {
	query := `UPDATE cycle_history SET cycle_end_time = ?, status = ?, checked = ?, failed = ?, log_summary = ? WHERE id = ?`
	_, err := d.db.Exec(query, endTime.UTC(), status, checked, failed, sql.NullString{String: logSummary, Valid: logSummary != ""}, dbID)
	if err != nil {
		return fmt.Errorf("failed to update cycle completion for ID %d: %w", dbID, err)
	}
	d.logger.Debug().Int64("db_id", dbID).Str("status", status).Msg("Updated cycle completion")
	return nil
}

// GetLastCompletedCycleTime returns the start time of the most recent cycle
// that ran to the end, or nil when there is none.
func (d *DB) GetLastCompletedCycleTime() (*time.Time, error) {
	query := `SELECT cycle_start_time FROM cycle_history WHERE status IN (?, ?) ORDER BY cycle_start_time DESC LIMIT 1`
	var startTime time.Time
	err := d.db.QueryRow(query, CycleStatusCompleted, CycleStatusCompletedWithFailures).Scan(&startTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query last cycle start time: %w", err)
	}
	return &startTime, nil
}

// RecentCycles returns up to limit cycles, newest first.
func (d *DB) RecentCycles(limit int) ([]CycleHistoryEntry, error) {
	query := `SELECT id, cycle_id, cycle_start_time, cycle_end_time, status, num_subjects, checked, failed, log_summary
		FROM cycle_history ORDER BY id DESC LIMIT ?`
	rows, err := d.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query cycle history: %w", err)
	}
	defer rows.Close()

	var entries []CycleHistoryEntry
	for rows.Next() {
		var e CycleHistoryEntry
		if err := rows.Scan(&e.ID, &e.CycleID, &e.StartTime, &e.EndTime, &e.Status, &e.Subjects, &e.Checked, &e.Failed, &e.LogSummary); err != nil {
			return nil, fmt.Errorf("failed to scan cycle history row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
