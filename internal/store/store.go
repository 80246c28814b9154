// Package store defines the Recorder interface for run history: per-step
// statistics and morphology snapshots of a simulation. History is written
// for analysis only and is never read back to resume a run.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrRunNotFound is returned when a run ID is unknown.
var ErrRunNotFound = errors.New("run not found")

// RunStatus is the lifecycle state of a recorded run.
type RunStatus string

const (
	StatusRunning   RunStatus = "running"   // Steps are still being recorded
	StatusCompleted RunStatus = "completed" // All requested steps ran
	StatusFailed    RunStatus = "failed"    // Aborted on a structural error
	StatusCancelled RunStatus = "cancelled" // Stopped by the caller
)

// Valid reports whether s is a known status.
func (s RunStatus) Valid() bool {
	switch s {
	case StatusRunning, StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// RunInfo describes a run when it starts.
type RunInfo struct {
	// ID is generated when empty.
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	Seed      uint64    `json:"seed"`
	Steps     int       `json:"steps"`

	// Config is the serialized configuration the run used.
	Config string `json:"config,omitempty"`
}

// Run is a recorded run with its outcome.
type Run struct {
	RunInfo
	Status     RunStatus  `json:"status"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Recorded   int        `json:"recorded_steps"`
}

// StepStats summarises the tree after one step.
type StepStats struct {
	Step              int           `json:"step"`
	Somas             int           `json:"somas"`
	Segments          int           `json:"segments"`
	Terminals         int           `json:"terminals"`
	BifurcationPoints int           `json:"bifurcation_points"`
	TotalLength       float64       `json:"total_length"`
	MeanTension       float64       `json:"mean_tension"`
	MaxBranchOrder    int           `json:"max_branch_order"`
	Added             int           `json:"added"`
	Removed           int           `json:"removed"`
	Duration          time.Duration `json:"duration"`
}

// SegmentRecord is the recorded state of one segment.
type SegmentRecord struct {
	ID            uint64     `json:"id"`
	Parent        uint64     `json:"parent"`
	DaughterLeft  uint64     `json:"daughter_left,omitempty"`
	DaughterRight uint64     `json:"daughter_right,omitempty"`
	Proximal      [3]float64 `json:"proximal"`
	Distal        [3]float64 `json:"distal"`
	Diameter      float64    `json:"diameter"`
	ActualLength  float64    `json:"actual_length"`
	RestingLength float64    `json:"resting_length"`
	Tension       float64    `json:"tension"`
	BranchOrder   int        `json:"branch_order"`
}

// Recorder receives run history from the simulation scheduler.
type Recorder interface {
	// BeginRun registers a run and returns its ID.
	BeginRun(ctx context.Context, info RunInfo) (string, error)

	// RecordStep appends the statistics of one step.
	RecordStep(ctx context.Context, runID string, stats StepStats) error

	// RecordMorphology stores the full tree at a step.
	RecordMorphology(ctx context.Context, runID string, step int, segments []SegmentRecord) error

	// EndRun sets the final status of a run.
	EndRun(ctx context.Context, runID string, status RunStatus) error

	Close() error
}

// History reads recorded runs back for inspection.
type History interface {
	// ListRuns returns all runs, newest first.
	ListRuns(ctx context.Context) ([]Run, error)

	// StepHistory returns the statistics of a run in step order.
	StepHistory(ctx context.Context, runID string) ([]StepStats, error)

	// Morphology returns the segments recorded at step, or at the latest
	// recorded step when step is negative, together with that step.
	Morphology(ctx context.Context, runID string, step int) ([]SegmentRecord, int, error)
}
