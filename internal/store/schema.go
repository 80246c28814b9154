package store

import (
	"context"
	"database/sql"
	"fmt"
)

// SchemaVersion is the current schema version.
const SchemaVersion = 1

// schemaV1 is the initial schema for the SQLite recorder.
const schemaV1 = `
-- One row per simulation run
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    started_at TEXT NOT NULL,
    finished_at TEXT,
    seed INTEGER NOT NULL,
    planned_steps INTEGER NOT NULL,
    status TEXT NOT NULL,  -- 'running', 'completed', 'failed', 'cancelled'
    config TEXT
);

-- Per-step statistics
CREATE TABLE IF NOT EXISTS steps (
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    step INTEGER NOT NULL,
    somas INTEGER NOT NULL,
    segments INTEGER NOT NULL,
    terminals INTEGER NOT NULL,
    bifurcation_points INTEGER NOT NULL,
    total_length REAL NOT NULL,
    mean_tension REAL NOT NULL,
    max_branch_order INTEGER NOT NULL,
    added INTEGER NOT NULL,
    removed INTEGER NOT NULL,
    duration_ns INTEGER NOT NULL,
    PRIMARY KEY (run_id, step)
);

-- Morphology snapshots
CREATE TABLE IF NOT EXISTS segments (
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    step INTEGER NOT NULL,
    segment_id INTEGER NOT NULL,
    parent_id INTEGER NOT NULL,
    daughter_left INTEGER NOT NULL DEFAULT 0,
    daughter_right INTEGER NOT NULL DEFAULT 0,
    px REAL NOT NULL, py REAL NOT NULL, pz REAL NOT NULL,
    dx REAL NOT NULL, dy REAL NOT NULL, dz REAL NOT NULL,
    diameter REAL NOT NULL,
    actual_length REAL NOT NULL,
    resting_length REAL NOT NULL,
    tension REAL NOT NULL,
    branch_order INTEGER NOT NULL,
    PRIMARY KEY (run_id, step, segment_id)
);
CREATE INDEX IF NOT EXISTS idx_segments_run_step ON segments(run_id, step);

-- Schema version
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL
);
`

// InitSchema creates the schema on a fresh database and rejects databases
// written by a newer version.
func InitSchema(ctx context.Context, db *sql.DB) error {
	currentVersion, err := getSchemaVersion(ctx, db)
	if err != nil {
		// Schema version table doesn't exist yet, create fresh schema
		if err := createSchema(ctx, db); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
		return nil
	}

	if currentVersion > SchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", currentVersion, SchemaVersion)
	}
	return nil
}

// getSchemaVersion returns the current schema version from the database.
// Returns 0 and an error if the schema_version table doesn't exist.
func getSchemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	err := db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_version`).Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

func createSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schemaV1); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_version (version, applied_at) VALUES (?, datetime('now'))`,
		SchemaVersion); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	return tx.Commit()
}
