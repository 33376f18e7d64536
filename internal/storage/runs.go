package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// RunInfo contains metadata about one synchronization run
type RunInfo struct {
	RunUUID         string     `json:"run_uuid"`
	TriggeredBy     string     `json:"triggered_by"` // manual, daemon
	StartedAt       time.Time  `json:"started_at"`
	FinishedAt      *time.Time `json:"finished_at,omitempty"`
	State           string     `json:"state"` // PENDING, STARTED, SUCCESS, FAILURE
	ReleasesSeen    int        `json:"releases_seen"`
	ReleasesApplied int        `json:"releases_applied"`
	CommitHash      string     `json:"commit_hash"`
	Error           string     `json:"error"`
}

// RunStore handles run persistence in SQLite
type RunStore struct {
	db      *DB
	maxRuns int
}

// NewRunStore creates a new run store
func NewRunStore(db *DB, maxRuns int) *RunStore {
	if maxRuns <= 0 {
		maxRuns = 1000
	}
	return &RunStore{
		db:      db,
		maxRuns: maxRuns,
	}
}

// RecordRun stores run metadata, updating the existing row on conflict.
// Rows already in a terminal state (SUCCESS, FAILURE) are not updated.
func (s *RunStore) RecordRun(run RunInfo) error {
	query := `
		INSERT INTO sync_runs (
			run_uuid, triggered_by, started_at, finished_at, state,
			releases_seen, releases_applied, commit_hash, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_uuid) DO UPDATE SET
			triggered_by = excluded.triggered_by,
			finished_at = excluded.finished_at,
			state = excluded.state,
			releases_seen = excluded.releases_seen,
			releases_applied = excluded.releases_applied,
			commit_hash = excluded.commit_hash,
			error = excluded.error,
			updated_at = CURRENT_TIMESTAMP
		WHERE sync_runs.state NOT IN ('SUCCESS', 'FAILURE')
	`

	_, err := s.db.Exec(query,
		run.RunUUID, run.TriggeredBy, run.StartedAt, run.FinishedAt, run.State,
		run.ReleasesSeen, run.ReleasesApplied, run.CommitHash, run.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	if err := s.cleanupOldRuns(); err != nil {
		// Log but don't fail
		fmt.Printf("Warning: failed to cleanup old runs: %v\n", err)
	}

	return nil
}

// GetRun retrieves a run by UUID
func (s *RunStore) GetRun(runUUID string) (*RunInfo, error) {
	query := `
		SELECT run_uuid, triggered_by, started_at, finished_at, state,
			   releases_seen, releases_applied, commit_hash, error
		FROM sync_runs
		WHERE run_uuid = ?
	`

	var run RunInfo
	err := s.db.QueryRow(query, runUUID).Scan(
		&run.RunUUID, &run.TriggeredBy, &run.StartedAt, &run.FinishedAt, &run.State,
		&run.ReleasesSeen, &run.ReleasesApplied, &run.CommitHash, &run.Error,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", runUUID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return &run, nil
}

// GetRecentRuns retrieves the N most recent runs
func (s *RunStore) GetRecentRuns(limit int) ([]*RunInfo, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT run_uuid, triggered_by, started_at, finished_at, state,
			   releases_seen, releases_applied, commit_hash, error
		FROM sync_runs
		ORDER BY started_at DESC
		LIMIT ?
	`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*RunInfo
	for rows.Next() {
		var run RunInfo
		err := rows.Scan(
			&run.RunUUID, &run.TriggeredBy, &run.StartedAt, &run.FinishedAt, &run.State,
			&run.ReleasesSeen, &run.ReleasesApplied, &run.CommitHash, &run.Error,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, &run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// IsTerminalState returns true if the state is a final state that should not be overwritten.
func IsTerminalState(state string) bool {
	switch state {
	case "SUCCESS", "FAILURE":
		return true
	}
	return false
}

// UpdateRunState updates the state of a run.
// Terminal states (SUCCESS, FAILURE) are never overwritten.
func (s *RunStore) UpdateRunState(runUUID, state string) error {
	query := `
		UPDATE sync_runs
		SET state = ?, updated_at = CURRENT_TIMESTAMP
		WHERE run_uuid = ?
		AND state NOT IN ('SUCCESS', 'FAILURE')
	`

	_, err := s.db.Exec(query, state, runUUID)
	if err != nil {
		return fmt.Errorf("failed to update run state: %w", err)
	}

	return nil
}

// cleanupOldRuns removes old runs exceeding the maximum count
func (s *RunStore) cleanupOldRuns() error {
	query := `
		DELETE FROM sync_runs
		WHERE id NOT IN (
			SELECT id FROM sync_runs
			ORDER BY started_at DESC
			LIMIT ?
		)
	`

	_, err := s.db.Exec(query, s.maxRuns)
	return err
}
