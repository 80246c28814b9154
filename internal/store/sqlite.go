package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver
)

// timeFormat is fixed-width so that timestamps sort as text.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteRecorder implements Recorder and History on a SQLite database.
type SQLiteRecorder struct {
	mu     sync.RWMutex
	db     *sql.DB
	dbPath string
}

// NewSQLiteRecorder opens or creates the database at dbPath.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite works best with single writer

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteRecorder{db: db, dbPath: dbPath}, nil
}

// Path returns the database file path.
func (s *SQLiteRecorder) Path() string { return s.dbPath }

// BeginRun inserts a run row.
func (s *SQLiteRecorder) BeginRun(ctx context.Context, info RunInfo) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if info.ID == "" {
		info.ID = uuid.NewString()
	}
	if info.StartedAt.IsZero() {
		info.StartedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, seed, planned_steps, status, config)
		VALUES (?, ?, ?, ?, ?, ?)`,
		info.ID, info.StartedAt.UTC().Format(timeFormat), int64(info.Seed), info.Steps,
		string(StatusRunning), info.Config)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}
	return info.ID, nil
}

// RecordStep inserts one row of step statistics.
func (s *SQLiteRecorder) RecordStep(ctx context.Context, runID string, st StepStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO steps (
			run_id, step, somas, segments, terminals, bifurcation_points,
			total_length, mean_tension, max_branch_order, added, removed, duration_ns
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, st.Step, st.Somas, st.Segments, st.Terminals, st.BifurcationPoints,
		st.TotalLength, st.MeanTension, st.MaxBranchOrder, st.Added, st.Removed, st.Duration.Nanoseconds())
	if err != nil {
		return fmt.Errorf("failed to record step %d: %w", st.Step, err)
	}
	return nil
}

// RecordMorphology writes all segments of a step in one transaction.
func (s *SQLiteRecorder) RecordMorphology(ctx context.Context, runID string, step int, segments []SegmentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM segments WHERE run_id = ? AND step = ?`, runID, step); err != nil {
		return fmt.Errorf("failed to clear morphology: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO segments (
			run_id, step, segment_id, parent_id, daughter_left, daughter_right,
			px, py, pz, dx, dy, dz,
			diameter, actual_length, resting_length, tension, branch_order
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare segment insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range segments {
		if _, err := stmt.ExecContext(ctx,
			runID, step, int64(r.ID), int64(r.Parent), int64(r.DaughterLeft), int64(r.DaughterRight),
			r.Proximal[0], r.Proximal[1], r.Proximal[2],
			r.Distal[0], r.Distal[1], r.Distal[2],
			r.Diameter, r.ActualLength, r.RestingLength, r.Tension, r.BranchOrder,
		); err != nil {
			return fmt.Errorf("failed to insert segment %d: %w", r.ID, err)
		}
	}

	return tx.Commit()
}

// EndRun sets the final status and finish time.
func (s *SQLiteRecorder) EndRun(ctx context.Context, runID string, status RunStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid run status: %q", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, finished_at = ? WHERE id = ?`,
		string(status), time.Now().UTC().Format(timeFormat), runID)
	if err != nil {
		return fmt.Errorf("failed to end run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteRecorder) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// ListRuns returns all runs, newest first.
func (s *SQLiteRecorder) ListRuns(ctx context.Context) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.started_at, r.finished_at, r.seed, r.planned_steps, r.status, COALESCE(r.config, ''),
		       (SELECT COUNT(*) FROM steps st WHERE st.run_id = r.id)
		FROM runs r
		ORDER BY r.started_at DESC, r.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run      Run
			started  string
			finished sql.NullString
			seed     int64
			status   string
		)
		if err := rows.Scan(&run.ID, &started, &finished, &seed, &run.Steps, &status, &run.Config, &run.Recorded); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Seed = uint64(seed)
		run.Status = RunStatus(status)
		if run.StartedAt, err = time.Parse(timeFormat, started); err != nil {
			return nil, fmt.Errorf("failed to parse started_at of run %s: %w", run.ID, err)
		}
		if finished.Valid {
			t, err := time.Parse(timeFormat, finished.String)
			if err != nil {
				return nil, fmt.Errorf("failed to parse finished_at of run %s: %w", run.ID, err)
			}
			run.FinishedAt = &t
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// StepHistory returns a run's statistics in step order.
func (s *SQLiteRecorder) StepHistory(ctx context.Context, runID string) ([]StepStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.requireRun(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT step, somas, segments, terminals, bifurcation_points,
		       total_length, mean_tension, max_branch_order, added, removed, duration_ns
		FROM steps WHERE run_id = ? ORDER BY step`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query steps: %w", err)
	}
	defer rows.Close()

	var out []StepStats
	for rows.Next() {
		var (
			st StepStats
			ns int64
		)
		if err := rows.Scan(&st.Step, &st.Somas, &st.Segments, &st.Terminals, &st.BifurcationPoints,
			&st.TotalLength, &st.MeanTension, &st.MaxBranchOrder, &st.Added, &st.Removed, &ns); err != nil {
			return nil, fmt.Errorf("failed to scan step: %w", err)
		}
		st.Duration = time.Duration(ns)
		out = append(out, st)
	}
	return out, rows.Err()
}

// Morphology returns a recorded snapshot.
func (s *SQLiteRecorder) Morphology(ctx context.Context, runID string, step int) ([]SegmentRecord, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.requireRun(ctx, runID); err != nil {
		return nil, 0, err
	}

	if step < 0 {
		var latest sql.NullInt64
		if err := s.db.QueryRowContext(ctx,
			`SELECT MAX(step) FROM segments WHERE run_id = ?`, runID).Scan(&latest); err != nil {
			return nil, 0, fmt.Errorf("failed to find latest snapshot: %w", err)
		}
		if !latest.Valid {
			return nil, 0, fmt.Errorf("run %s has no morphology snapshots", runID)
		}
		step = int(latest.Int64)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT segment_id, parent_id, daughter_left, daughter_right,
		       px, py, pz, dx, dy, dz,
		       diameter, actual_length, resting_length, tension, branch_order
		FROM segments WHERE run_id = ? AND step = ? ORDER BY segment_id`, runID, step)
	if err != nil {
		return nil, step, fmt.Errorf("failed to query segments: %w", err)
	}
	defer rows.Close()

	var out []SegmentRecord
	for rows.Next() {
		var (
			r                  SegmentRecord
			id, parent, dl, dr int64
		)
		if err := rows.Scan(&id, &parent, &dl, &dr,
			&r.Proximal[0], &r.Proximal[1], &r.Proximal[2],
			&r.Distal[0], &r.Distal[1], &r.Distal[2],
			&r.Diameter, &r.ActualLength, &r.RestingLength, &r.Tension, &r.BranchOrder); err != nil {
			return nil, step, fmt.Errorf("failed to scan segment: %w", err)
		}
		r.ID, r.Parent, r.DaughterLeft, r.DaughterRight = uint64(id), uint64(parent), uint64(dl), uint64(dr)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, step, err
	}
	if len(out) == 0 {
		return nil, step, fmt.Errorf("run %s has no morphology at step %d", runID, step)
	}
	return out, step, nil
}

func (s *SQLiteRecorder) requireRun(ctx context.Context, runID string) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM runs WHERE id = ?`, runID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return fmt.Errorf("failed to look up run: %w", err)
	}
	return nil
}
