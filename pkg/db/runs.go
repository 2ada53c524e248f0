package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrRunNotFound is returned when a run id has no row.
var ErrRunNotFound = errors.New("run not found")

// Run represents one process invocation.
type Run struct {
	RunID          string
	StartedAt      time.Time
	FinishedAt     time.Time
	InputDir       string
	OutputDir      string
	Model          string
	FilepathBase   string
	Workers        int
	Status         string
	UnitsTotal     int
	UnitsFailed    int
	FilesProcessed int
	FilesSkipped   int
	WordsTotal     int64
	TokensTotal    int64
	BytesWritten   int64
	TopKeywords    string
}

// Unit represents the outcome of one top-level unit within a run.
type Unit struct {
	UnitID       int64
	RunID        string
	Name         string
	Status       string
	Processed    int
	Skipped      int
	BytesWritten int64
	Duration     time.Duration
	ErrorType    string
	ErrorMessage string
	Files        []File
}

// File represents the outcome of one source file.
type File struct {
	RelPath      string
	OutputPath   string
	Status       string
	ContentHash  string
	WordCount    int
	TokenCount   int
	ErrorMessage string
}

// NewRunID returns a fresh identifier for a run.
func NewRunID() string {
	return uuid.NewString()
}

// RecordRun stores a run with all of its units and files in one transaction.
// An empty RunID is filled in and returned.
func (db *DB) RecordRun(run *Run, units []Unit) (string, error) {
	if run.RunID == "" {
		run.RunID = NewRunID()
	}

	tx, err := db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.Exec(`
		INSERT INTO runs (run_id, started_at, finished_at, input_dir, output_dir, model, filepath_base, workers,
			status, units_total, units_failed, files_processed, files_skipped, words_total, tokens_total, bytes_written, top_keywords)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.RunID, run.StartedAt.UTC(), run.FinishedAt.UTC(), run.InputDir, run.OutputDir, run.Model, run.FilepathBase, run.Workers,
		run.Status, run.UnitsTotal, run.UnitsFailed, run.FilesProcessed, run.FilesSkipped, run.WordsTotal, run.TokensTotal, run.BytesWritten, run.TopKeywords)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	unitStmt, err := tx.Prepare(`
		INSERT INTO units (run_id, name, status, processed, skipped, bytes_written, duration_ms, error_type, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare unit insert: %w", err)
	}
	defer unitStmt.Close()

	fileStmt, err := tx.Prepare(`
		INSERT INTO files (unit_id, rel_path, output_path, status, content_hash, word_count, token_count, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare file insert: %w", err)
	}
	defer fileStmt.Close()

	for _, u := range units {
		res, err := unitStmt.Exec(run.RunID, u.Name, u.Status, u.Processed, u.Skipped, u.BytesWritten,
			u.Duration.Milliseconds(), NewNullString(u.ErrorType), NewNullString(u.ErrorMessage))
		if err != nil {
			return "", fmt.Errorf("failed to insert unit %s: %w", u.Name, err)
		}
		unitID, err := res.LastInsertId()
		if err != nil {
			return "", fmt.Errorf("failed to get unit ID: %w", err)
		}

		for _, f := range u.Files {
			_, err := fileStmt.Exec(unitID, f.RelPath, NewNullString(f.OutputPath), f.Status, NewNullString(f.ContentHash),
				f.WordCount, f.TokenCount, NewNullString(f.ErrorMessage))
			if err != nil {
				return "", fmt.Errorf("failed to insert file %s: %w", f.RelPath, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}
	return run.RunID, nil
}

const runColumns = `run_id, started_at, finished_at, input_dir, output_dir, model, filepath_base, workers,
	status, units_total, units_failed, files_processed, files_skipped, words_total, tokens_total, bytes_written, COALESCE(top_keywords, '')`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var r Run
	err := row.Scan(&r.RunID, &r.StartedAt, &r.FinishedAt, &r.InputDir, &r.OutputDir, &r.Model, &r.FilepathBase, &r.Workers,
		&r.Status, &r.UnitsTotal, &r.UnitsFailed, &r.FilesProcessed, &r.FilesSkipped, &r.WordsTotal, &r.TokensTotal, &r.BytesWritten, &r.TopKeywords)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListRuns returns the most recent runs first. limit <= 0 returns all runs.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	query := "SELECT " + runColumns + " FROM runs ORDER BY started_at DESC"
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// GetRun retrieves a run by id. A unique id prefix is accepted.
func (db *DB) GetRun(runID string) (*Run, error) {
	rows, err := db.Query("SELECT "+runColumns+" FROM runs WHERE run_id = ? OR run_id LIKE ? LIMIT 2", runID, runID+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	defer rows.Close()

	var found []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		found = append(found, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	case 1:
		return found[0], nil
	}
	for _, r := range found {
		if r.RunID == runID {
			return r, nil
		}
	}
	return nil, fmt.Errorf("run id prefix %q is ambiguous", runID)
}

// GetRunUnits returns the units of a run ordered by name, without files.
func (db *DB) GetRunUnits(runID string) ([]Unit, error) {
	rows, err := db.Query(`
		SELECT unit_id, run_id, name, status, processed, skipped, bytes_written, duration_ms,
			COALESCE(error_type, ''), COALESCE(error_message, '')
		FROM units
		WHERE run_id = ?
		ORDER BY name
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get units: %w", err)
	}
	defer rows.Close()

	var units []Unit
	for rows.Next() {
		var u Unit
		var durationMS int64
		if err := rows.Scan(&u.UnitID, &u.RunID, &u.Name, &u.Status, &u.Processed, &u.Skipped, &u.BytesWritten,
			&durationMS, &u.ErrorType, &u.ErrorMessage); err != nil {
			return nil, fmt.Errorf("failed to scan unit: %w", err)
		}
		u.Duration = time.Duration(durationMS) * time.Millisecond
		units = append(units, u)
	}
	return units, rows.Err()
}

// GetSkippedFiles returns skipped files for a run, ordered by unit then path.
func (db *DB) GetSkippedFiles(runID string) ([]File, error) {
	rows, err := db.Query(`
		SELECT u.name || '/' || f.rel_path, COALESCE(f.output_path, ''), f.status,
			COALESCE(f.content_hash, ''), f.word_count, f.token_count, COALESCE(f.error_message, '')
		FROM files f
		JOIN units u ON u.unit_id = f.unit_id
		WHERE u.run_id = ? AND f.status = 'skipped'
		ORDER BY u.name, f.rel_path
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get skipped files: %w", err)
	}
	defer rows.Close()

	var files []File
	for rows.Next() {
		var f File
		if err := rows.Scan(&f.RelPath, &f.OutputPath, &f.Status, &f.ContentHash, &f.WordCount, &f.TokenCount, &f.ErrorMessage); err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// CountFiles returns the number of file rows for a run with the given status.
func (db *DB) CountFiles(runID, status string) (int, error) {
	var n int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM files f JOIN units u ON u.unit_id = f.unit_id
		WHERE u.run_id = ? AND f.status = ?
	`, runID, status).Scan(&n)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to count files: %w", err)
	}
	return n, nil
}
