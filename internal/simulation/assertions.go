package simulation

import (
	"math"
	"testing"

	"github.com/nvandessel/neurite/internal/store"
)

// AssertCompleted asserts that the run finished every requested step.
func AssertCompleted(t *testing.T, result SimulationResult, steps int) {
	t.Helper()
	if result.Status != store.StatusCompleted {
		t.Errorf("AssertCompleted: status %s, want %s", result.Status, store.StatusCompleted)
	}
	if len(result.Steps) != steps {
		t.Errorf("AssertCompleted: %d steps recorded, want %d", len(result.Steps), steps)
	}
}

// AssertGrowth asserts that the total neurite length at the last step is at
// least minFactor times the length after the first step.
func AssertGrowth(t *testing.T, result SimulationResult, minFactor float64) {
	t.Helper()
	if len(result.Steps) < 2 {
		t.Fatal("AssertGrowth: fewer than two steps")
	}
	first, last := result.Steps[0].TotalLength, result.Last().TotalLength
	if last < first*minFactor {
		t.Errorf("AssertGrowth: total length %.3f -> %.3f, want at least x%.2f", first, last, minFactor)
	}
}

// AssertLengthsBounded asserts that no segment of the final morphology is
// longer than maxLength.
func AssertLengthsBounded(t *testing.T, result SimulationResult, maxLength float64) {
	t.Helper()
	for _, s := range result.Morphology {
		if s.ActualLength > maxLength {
			t.Errorf("AssertLengthsBounded: segment %d has length %.4f > %.4f", s.ID, s.ActualLength, maxLength)
		}
	}
}

// AssertTreeConnected asserts that every recorded segment's proximal end
// coincides with its parent segment's distal end and that daughter links are
// mirrored by parent links.
func AssertTreeConnected(t *testing.T, result SimulationResult) {
	t.Helper()
	byID := make(map[uint64]store.SegmentRecord, len(result.Morphology))
	for _, s := range result.Morphology {
		byID[s.ID] = s
	}
	for _, s := range result.Morphology {
		if p, ok := byID[s.Parent]; ok {
			if !nearPoint(p.Distal, s.Proximal) {
				t.Errorf("AssertTreeConnected: segment %d starts at %v, parent %d ends at %v", s.ID, s.Proximal, p.ID, p.Distal)
			}
			if p.DaughterLeft != s.ID && p.DaughterRight != s.ID {
				t.Errorf("AssertTreeConnected: parent %d does not list segment %d", p.ID, s.ID)
			}
		}
		for _, d := range []uint64{s.DaughterLeft, s.DaughterRight} {
			if d == 0 {
				continue
			}
			ds, ok := byID[d]
			if !ok {
				t.Errorf("AssertTreeConnected: segment %d lists missing daughter %d", s.ID, d)
				continue
			}
			if ds.Parent != s.ID {
				t.Errorf("AssertTreeConnected: daughter %d has parent %d, want %d", d, ds.Parent, s.ID)
			}
		}
		if s.DaughterRight != 0 && s.DaughterLeft == 0 {
			t.Errorf("AssertTreeConnected: segment %d has a right daughter but no left daughter", s.ID)
		}
	}
}

// AssertFinite asserts that every recorded quantity is finite.
func AssertFinite(t *testing.T, result SimulationResult) {
	t.Helper()
	for _, st := range result.Steps {
		if !finite(st.TotalLength) || !finite(st.MeanTension) {
			t.Errorf("AssertFinite: step %d: total length %v, mean tension %v", st.Step, st.TotalLength, st.MeanTension)
		}
	}
	for _, s := range result.Morphology {
		vals := []float64{s.Diameter, s.ActualLength, s.RestingLength, s.Tension}
		vals = append(vals, s.Proximal[:]...)
		vals = append(vals, s.Distal[:]...)
		for _, v := range vals {
			if !finite(v) {
				t.Errorf("AssertFinite: segment %d has non-finite value %v", s.ID, v)
				break
			}
		}
	}
}

// AssertBranchOrderAtMost asserts that no step exceeded the given branch order.
func AssertBranchOrderAtMost(t *testing.T, result SimulationResult, order int) {
	t.Helper()
	for _, st := range result.Steps {
		if st.MaxBranchOrder > order {
			t.Errorf("AssertBranchOrderAtMost: step %d reached branch order %d > %d", st.Step, st.MaxBranchOrder, order)
		}
	}
}

func nearPoint(a, b [3]float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-6*math.Max(1, math.Abs(a[i])) {
			return false
		}
	}
	return true
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
