package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

type recorderUnderTest interface {
	Recorder
	History
}

func recorders(t *testing.T) map[string]func(t *testing.T) recorderUnderTest {
	return map[string]func(t *testing.T) recorderUnderTest{
		"memory": func(t *testing.T) recorderUnderTest {
			return NewMemoryRecorder()
		},
		"sqlite": func(t *testing.T) recorderUnderTest {
			r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "runs.db"))
			if err != nil {
				t.Fatalf("NewSQLiteRecorder() error = %v", err)
			}
			return r
		},
	}
}

func sampleSegments() []SegmentRecord {
	return []SegmentRecord{
		{ID: 2, Parent: 1, DaughterLeft: 3, Proximal: [3]float64{5, 0, 0}, Distal: [3]float64{6, 0, 0}, Diameter: 1, ActualLength: 1, RestingLength: 1},
		{ID: 3, Parent: 2, Proximal: [3]float64{6, 0, 0}, Distal: [3]float64{8, 0.5, 0}, Diameter: 0.8, ActualLength: 2.06, RestingLength: 2, Tension: 0.3, BranchOrder: 1},
	}
}

func TestRecorder_RunLifecycle(t *testing.T) {
	for name, open := range recorders(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			rec := open(t)
			defer rec.Close()

			id, err := rec.BeginRun(ctx, RunInfo{Seed: 42, Steps: 3, Config: "seed: 42"})
			if err != nil {
				t.Fatalf("BeginRun() error = %v", err)
			}
			if id == "" {
				t.Fatal("BeginRun() returned empty ID")
			}

			for step := 1; step <= 3; step++ {
				st := StepStats{Step: step, Somas: 1, Segments: step + 1, Terminals: 1, TotalLength: float64(step), Duration: time.Millisecond}
				if err := rec.RecordStep(ctx, id, st); err != nil {
					t.Fatalf("RecordStep(%d) error = %v", step, err)
				}
			}
			if err := rec.EndRun(ctx, id, StatusCompleted); err != nil {
				t.Fatalf("EndRun() error = %v", err)
			}

			runs, err := rec.ListRuns(ctx)
			if err != nil {
				t.Fatalf("ListRuns() error = %v", err)
			}
			if len(runs) != 1 {
				t.Fatalf("ListRuns() = %d runs, want 1", len(runs))
			}
			r := runs[0]
			if r.ID != id || r.Seed != 42 || r.Steps != 3 || r.Config != "seed: 42" {
				t.Errorf("run = %+v", r)
			}
			if r.Status != StatusCompleted || r.FinishedAt == nil {
				t.Errorf("status = %s, finished = %v", r.Status, r.FinishedAt)
			}
			if r.Recorded != 3 {
				t.Errorf("Recorded = %d, want 3", r.Recorded)
			}

			history, err := rec.StepHistory(ctx, id)
			if err != nil {
				t.Fatalf("StepHistory() error = %v", err)
			}
			if len(history) != 3 {
				t.Fatalf("StepHistory() = %d steps, want 3", len(history))
			}
			for i, st := range history {
				if st.Step != i+1 || st.Segments != i+2 || st.Duration != time.Millisecond {
					t.Errorf("history[%d] = %+v", i, st)
				}
			}
		})
	}
}

func TestRecorder_Morphology(t *testing.T) {
	for name, open := range recorders(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			rec := open(t)
			defer rec.Close()

			id, err := rec.BeginRun(ctx, RunInfo{ID: "fixed-id"})
			if err != nil {
				t.Fatalf("BeginRun() error = %v", err)
			}
			if id != "fixed-id" {
				t.Errorf("BeginRun() = %q, want the given ID", id)
			}

			segs := sampleSegments()
			if err := rec.RecordMorphology(ctx, id, 10, segs[:1]); err != nil {
				t.Fatalf("RecordMorphology(10) error = %v", err)
			}
			if err := rec.RecordMorphology(ctx, id, 20, segs); err != nil {
				t.Fatalf("RecordMorphology(20) error = %v", err)
			}

			got, step, err := rec.Morphology(ctx, id, 10)
			if err != nil {
				t.Fatalf("Morphology(10) error = %v", err)
			}
			if step != 10 || len(got) != 1 {
				t.Errorf("Morphology(10) = %d segments at step %d", len(got), step)
			}

			got, step, err = rec.Morphology(ctx, id, -1)
			if err != nil {
				t.Fatalf("Morphology(latest) error = %v", err)
			}
			if step != 20 {
				t.Errorf("latest step = %d, want 20", step)
			}
			if len(got) != 2 || got[1] != segs[1] {
				t.Errorf("Morphology(latest) = %+v", got)
			}

			if _, _, err := rec.Morphology(ctx, id, 15); err == nil {
				t.Error("expected error for step without snapshot")
			}
		})
	}
}

func TestRecorder_UnknownRun(t *testing.T) {
	for name, open := range recorders(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			rec := open(t)
			defer rec.Close()

			if _, err := rec.StepHistory(ctx, "missing"); !errors.Is(err, ErrRunNotFound) {
				t.Errorf("StepHistory() error = %v, want ErrRunNotFound", err)
			}
			if _, _, err := rec.Morphology(ctx, "missing", -1); !errors.Is(err, ErrRunNotFound) {
				t.Errorf("Morphology() error = %v, want ErrRunNotFound", err)
			}
			if err := rec.EndRun(ctx, "missing", StatusFailed); !errors.Is(err, ErrRunNotFound) {
				t.Errorf("EndRun() error = %v, want ErrRunNotFound", err)
			}
		})
	}
}

func TestRecorder_InvalidStatus(t *testing.T) {
	for name, open := range recorders(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			rec := open(t)
			defer rec.Close()

			id, err := rec.BeginRun(ctx, RunInfo{})
			if err != nil {
				t.Fatal(err)
			}
			if err := rec.EndRun(ctx, id, "paused"); err == nil {
				t.Error("expected error for invalid status")
			}
		})
	}
}

func TestRecorder_ListRunsNewestFirst(t *testing.T) {
	for name, open := range recorders(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			rec := open(t)
			defer rec.Close()

			base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
			for i, id := range []string{"old", "new", "mid"} {
				offset := []time.Duration{0, 2 * time.Hour, time.Hour}[i]
				if _, err := rec.BeginRun(ctx, RunInfo{ID: id, StartedAt: base.Add(offset)}); err != nil {
					t.Fatal(err)
				}
			}

			runs, err := rec.ListRuns(ctx)
			if err != nil {
				t.Fatal(err)
			}
			var ids []string
			for _, r := range runs {
				ids = append(ids, r.ID)
			}
			if len(ids) != 3 || ids[0] != "new" || ids[1] != "mid" || ids[2] != "old" {
				t.Errorf("ListRuns() order = %v", ids)
			}
		})
	}
}

func TestSQLiteRecorder_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "runs.db")

	rec, err := NewSQLiteRecorder(path)
	if err != nil {
		t.Fatalf("NewSQLiteRecorder() error = %v", err)
	}
	id, err := rec.BeginRun(ctx, RunInfo{Seed: 7})
	if err != nil {
		t.Fatal(err)
	}
	if err := rec.RecordStep(ctx, id, StepStats{Step: 1, Segments: 4}); err != nil {
		t.Fatal(err)
	}
	if err := rec.Close(); err != nil {
		t.Fatal(err)
	}

	rec, err = NewSQLiteRecorder(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer rec.Close()

	history, err := rec.StepHistory(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 || history[0].Segments != 4 {
		t.Errorf("history after reopen = %+v", history)
	}
	if rec.Path() != path {
		t.Errorf("Path() = %q, want %q", rec.Path(), path)
	}
}

func TestMemoryRecorder_DuplicateRun(t *testing.T) {
	rec := NewMemoryRecorder()
	ctx := context.Background()
	if _, err := rec.BeginRun(ctx, RunInfo{ID: "a"}); err != nil {
		t.Fatal(err)
	}
	if _, err := rec.BeginRun(ctx, RunInfo{ID: "a"}); err == nil {
		t.Error("expected error for duplicate run ID")
	}
}

func TestRunStatusValid(t *testing.T) {
	tests := []struct {
		status RunStatus
		want   bool
	}{
		{StatusRunning, true},
		{StatusCompleted, true},
		{StatusFailed, true},
		{StatusCancelled, true},
		{"", false},
		{"paused", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}
