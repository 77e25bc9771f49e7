package library

import (
	"database/sql"
	"fmt"
	"time"
)

// Run is a recorded downloader invocation.
type Run struct {
	ID           int64
	StartedAt    time.Time
	URLCount     int
	Merged       bool
	MergedName   string
	SuccessCount int
	FailedCount  int
}

// RunResult is one recorded acquisition slot.
type RunResult struct {
	RunID        int64
	Slot         int
	URL          string
	Status       string
	ErrorKind    string
	ErrorMessage string
	Title        string
	OutputPath   string
}

// CreateRun inserts a run header row and returns its id.
func (db *DB) CreateRun(urlCount int, merged bool, mergedName string) (int64, error) {
	result, err := db.Exec(`
		INSERT INTO runs (url_count, merged, merged_name)
		VALUES (?, ?, ?)
	`, urlCount, merged, mergedName)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}
	return runID, nil
}

// InsertResult records one slot outcome for a run.
func (db *DB) InsertResult(r RunResult) error {
	_, err := db.Exec(`
		INSERT INTO run_results (run_id, slot, url, status, error_kind, error_message, title, output_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, r.RunID, r.Slot, r.URL, r.Status,
		nullString(r.ErrorKind), nullString(r.ErrorMessage),
		nullString(r.Title), nullString(r.OutputPath))
	if err != nil {
		return fmt.Errorf("failed to insert run result: %w", err)
	}
	return nil
}

// FinishRun stores the final success/failure tallies.
func (db *DB) FinishRun(runID int64, successCount, failedCount int) error {
	_, err := db.Exec(`
		UPDATE runs SET success_count = ?, failed_count = ? WHERE run_id = ?
	`, successCount, failedCount, runID)
	if err != nil {
		return fmt.Errorf("failed to update run stats: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(`
		SELECT run_id, started_at, url_count, merged, COALESCE(merged_name, ''),
		       success_count, failed_count
		FROM runs ORDER BY run_id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.URLCount, &r.Merged,
			&r.MergedName, &r.SuccessCount, &r.FailedCount); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRunResults returns a run's slot outcomes in slot order.
func (db *DB) GetRunResults(runID int64) ([]RunResult, error) {
	rows, err := db.Query(`
		SELECT run_id, slot, url, status,
		       COALESCE(error_kind, ''), COALESCE(error_message, ''),
		       COALESCE(title, ''), COALESCE(output_path, '')
		FROM run_results WHERE run_id = ? ORDER BY slot
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run results: %w", err)
	}
	defer rows.Close()

	var results []RunResult
	for rows.Next() {
		var r RunResult
		if err := rows.Scan(&r.RunID, &r.Slot, &r.URL, &r.Status,
			&r.ErrorKind, &r.ErrorMessage, &r.Title, &r.OutputPath); err != nil {
			return nil, fmt.Errorf("failed to scan run result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// FailedURLs returns the distinct URLs that failed in a run.
func (db *DB) FailedURLs(runID int64) ([]string, error) {
	results, err := db.GetRunResults(runID)
	if err != nil {
		return nil, err
	}
	var failed []string
	for _, r := range results {
		if r.Status == "failed" {
			failed = append(failed, r.URL)
		}
	}
	return failed, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
