package simulation

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/nvandessel/neurite/internal/config"
	"github.com/nvandessel/neurite/internal/store"
)

// Runner executes scenarios against a real scheduler and SQLite recorder.
type Runner struct {
	t     *testing.T
	dir   string
	store *store.SQLiteRecorder
}

// NewRunner creates a simulation runner with an isolated SQLite recorder
// and sandboxed HOME directory.
func NewRunner(t *testing.T) *Runner {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	s, err := store.NewSQLiteRecorder(filepath.Join(tmpDir, "history.db"))
	if err != nil {
		t.Fatalf("NewRunner: failed to create recorder: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return &Runner{t: t, dir: tmpDir, store: s}
}

// Run seeds the configured cells, runs the scenario and returns the
// collected results. Any step error fails the test.
func (r *Runner) Run(scenario Scenario) SimulationResult {
	r.t.Helper()
	ctx := context.Background()

	cfg := config.Default()
	cfg.Logging.Dir = filepath.Join(r.dir, scenario.Name)
	if scenario.Configure != nil {
		scenario.Configure(cfg)
	}
	cfg.Simulation.CheckInvariants = true

	opts := []Option{WithRecorder(r.store)}
	if scenario.Behavior != nil {
		opts = append(opts, WithBehavior(scenario.Behavior))
	}
	if scenario.BeforeStep != nil {
		opts = append(opts, WithBeforeStep(scenario.BeforeStep))
	}
	sched, err := New(cfg, opts...)
	if err != nil {
		r.t.Fatalf("scenario %s: New: %v", scenario.Name, err)
	}
	r.t.Cleanup(func() { sched.Close() })

	if err := sched.Seed(); err != nil {
		r.t.Fatalf("scenario %s: Seed: %v", scenario.Name, err)
	}

	res, err := sched.Run(ctx, scenario.Steps)
	if err != nil {
		r.t.Fatalf("scenario %s: Run: %v", scenario.Name, err)
	}

	steps, err := r.store.StepHistory(ctx, res.RunID)
	if err != nil {
		r.t.Fatalf("scenario %s: StepHistory: %v", scenario.Name, err)
	}
	// An empty tree leaves no segment rows behind.
	var morph []store.SegmentRecord
	if sched.Arena().Len() > 0 {
		morph, _, err = r.store.Morphology(ctx, res.RunID, -1)
		if err != nil {
			r.t.Fatalf("scenario %s: Morphology: %v", scenario.Name, err)
		}
	}

	return SimulationResult{
		RunID:      res.RunID,
		Status:     res.Status,
		Steps:      steps,
		Morphology: morph,
		Scheduler:  sched,
		Store:      r.store,
	}
}
