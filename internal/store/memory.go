package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryRun struct {
	run       Run
	steps     []StepStats
	snapshots map[int][]SegmentRecord
}

// MemoryRecorder implements Recorder and History in memory, for tests and
// runs without a database.
type MemoryRecorder struct {
	mu   sync.RWMutex
	runs map[string]*memoryRun
}

// NewMemoryRecorder creates an empty in-memory recorder.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{runs: make(map[string]*memoryRun)}
}

// BeginRun registers a run.
func (m *MemoryRecorder) BeginRun(ctx context.Context, info RunInfo) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if info.ID == "" {
		info.ID = uuid.NewString()
	}
	if info.StartedAt.IsZero() {
		info.StartedAt = time.Now().UTC()
	}
	if _, exists := m.runs[info.ID]; exists {
		return "", fmt.Errorf("run %s already exists", info.ID)
	}

	m.runs[info.ID] = &memoryRun{
		run:       Run{RunInfo: info, Status: StatusRunning},
		snapshots: make(map[int][]SegmentRecord),
	}
	return info.ID, nil
}

// RecordStep appends step statistics.
func (m *MemoryRecorder) RecordStep(ctx context.Context, runID string, stats StepStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.runs[runID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	r.steps = append(r.steps, stats)
	r.run.Recorded = len(r.steps)
	return nil
}

// RecordMorphology stores a copy of the segments.
func (m *MemoryRecorder) RecordMorphology(ctx context.Context, runID string, step int, segments []SegmentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.runs[runID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	r.snapshots[step] = slices.Clone(segments)
	return nil
}

// EndRun sets the final status.
func (m *MemoryRecorder) EndRun(ctx context.Context, runID string, status RunStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid run status: %q", status)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.runs[runID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	now := time.Now().UTC()
	r.run.Status = status
	r.run.FinishedAt = &now
	return nil
}

// Close is a no-op.
func (m *MemoryRecorder) Close() error { return nil }

// ListRuns returns all runs, newest first.
func (m *MemoryRecorder) ListRuns(ctx context.Context) ([]Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Run, 0, len(m.runs))
	for _, r := range m.runs {
		out = append(out, r.run)
	}
	slices.SortFunc(out, func(a, b Run) int {
		if c := b.StartedAt.Compare(a.StartedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

// StepHistory returns a run's statistics in step order.
func (m *MemoryRecorder) StepHistory(ctx context.Context, runID string) ([]StepStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.runs[runID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	out := slices.Clone(r.steps)
	slices.SortStableFunc(out, func(a, b StepStats) int { return cmp.Compare(a.Step, b.Step) })
	return out, nil
}

// Morphology returns a recorded snapshot.
func (m *MemoryRecorder) Morphology(ctx context.Context, runID string, step int) ([]SegmentRecord, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.runs[runID]
	if !ok {
		return nil, 0, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if step < 0 {
		if len(r.snapshots) == 0 {
			return nil, 0, fmt.Errorf("run %s has no morphology snapshots", runID)
		}
		step = slices.Max(mapKeys(r.snapshots))
	}
	segs, ok := r.snapshots[step]
	if !ok {
		return nil, step, fmt.Errorf("run %s has no morphology at step %d", runID, step)
	}
	return slices.Clone(segs), step, nil
}

func mapKeys(m map[int][]SegmentRecord) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
