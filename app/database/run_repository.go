package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunRepository records pipeline runs for the lifetime of the process
type RunRepository struct {
	db *DB
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *DB) *RunRepository {
	return &RunRepository{db: db}
}

// SaveRun assigns an id and creation time when missing and stores the run
func (r *RunRepository) SaveRun(run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	if run.Failures == nil {
		run.Failures = []string{}
	}

	failures, err := json.Marshal(run.Failures)
	if err != nil {
		return fmt.Errorf("failed to encode failures: %w", err)
	}

	payload := run.Payload
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}

	_, err = r.db.Exec(`
		INSERT INTO runs (id, profile, status, created_at, item_count, target_count, failures, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Profile, run.Status, run.CreatedAt, run.ItemCount, run.TargetCount, string(failures), string(payload))
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	return nil
}

// GetRun returns nil when no run has the given id
func (r *RunRepository) GetRun(id string) (*Run, error) {
	row := r.db.QueryRow(`
		SELECT id, profile, status, created_at, item_count, target_count, failures, payload
		FROM runs
		WHERE id = ?
	`, id)

	run, err := scanRun(row, true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return run, nil
}

// ListRuns returns the most recent runs first, without payloads
func (r *RunRepository) ListRuns(limit int) ([]Run, error) {
	rows, err := r.db.Query(`
		SELECT id, profile, status, created_at, item_count, target_count, failures, ''
		FROM runs
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows, false)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return runs, nil
}

// Prune deletes all but the newest keep runs and reports how many were removed
func (r *RunRepository) Prune(keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}

	result, err := r.db.Exec(`
		DELETE FROM runs
		WHERE id NOT IN (
			SELECT id FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned runs: %w", err)
	}

	return int(removed), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner, withPayload bool) (*Run, error) {
	var run Run
	var failures, payload string

	err := s.Scan(&run.ID, &run.Profile, &run.Status, &run.CreatedAt,
		&run.ItemCount, &run.TargetCount, &failures, &payload)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(failures), &run.Failures); err != nil {
		return nil, fmt.Errorf("failed to decode failures: %w", err)
	}
	if withPayload {
		run.Payload = json.RawMessage(payload)
	}

	return &run, nil
}
