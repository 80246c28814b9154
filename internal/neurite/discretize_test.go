package neurite_test

import (
	"testing"

	"github.com/nvandessel/neurite/internal/constants"
	"github.com/nvandessel/neurite/internal/neurite"
)

// A long pure leaf is split at 0.1: the new proximal segment keeps 90% of
// the resting length and the leaf keeps 10%.
func TestRunDiscretization_SplitsLongLeaf(t *testing.T) {
	p := neurite.DefaultParams()
	p.MaxLength = 100
	f := newFixture(t, p)
	s := f.root(150)
	resting := s.RestingLength()

	if err := f.e.RunDiscretization(s); err != nil {
		t.Fatalf("RunDiscretization() error = %v", err)
	}

	n, ok := f.a.Node(s.Parent())
	if !ok {
		t.Fatal("parent does not resolve")
	}
	proximal, ok := n.AsSegment()
	if !ok {
		t.Fatal("leaf was not split")
	}
	if proximal.DaughterLeft() != s.ID() || proximal.Parent() != f.soma.NodeID() {
		t.Error("split did not insert the new segment between soma and leaf")
	}
	if !near(s.RestingLength(), 0.1*resting) {
		t.Errorf("leaf resting length = %v, want %v", s.RestingLength(), 0.1*resting)
	}
	if !near(proximal.RestingLength(), 0.9*resting) {
		t.Errorf("proximal resting length = %v, want %v", proximal.RestingLength(), 0.9*resting)
	}
	if !near(s.ActualLength(), 15) || !near(proximal.ActualLength(), 135) {
		t.Errorf("lengths = %v/%v, want 15/135", s.ActualLength(), proximal.ActualLength())
	}
	f.check()
}

func TestRunDiscretization_NoOp(t *testing.T) {
	tests := []struct {
		name  string
		build func(f *fixture) *neurite.Segment
	}{
		{
			name:  "length within bounds",
			build: func(f *fixture) *neurite.Segment { return f.root(5) },
		},
		{
			name: "short root on a soma",
			build: func(f *fixture) *neurite.Segment {
				return f.root(1)
			},
		},
		{
			name: "short daughter of a bifurcation point",
			build: func(f *fixture) *neurite.Segment {
				s := f.root(5)
				pair, err := f.e.BifurcateRandom(s)
				if err != nil {
					f.t.Fatalf("BifurcateRandom() error = %v", err)
				}
				return pair[0]
			},
		},
		{
			name: "non-terminal segment",
			build: func(f *fixture) *neurite.Segment {
				s := f.root(40)
				p, err := f.e.Split(s, 0.5)
				if err != nil {
					f.t.Fatalf("Split() error = %v", err)
				}
				return p
			},
		},
		{
			name: "merged segment would be too long",
			build: func(f *fixture) *neurite.Segment {
				s := f.root(14.5)
				if _, err := f.e.Split(s, 0.1); err != nil {
					f.t.Fatalf("Split() error = %v", err)
				}
				return s
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, neurite.DefaultParams())
			s := tt.build(f)
			parent := s.Parent()
			length := s.ActualLength()
			staged, removed := f.a.Pending()

			if err := f.e.RunDiscretization(s); err != nil {
				t.Fatalf("RunDiscretization() error = %v", err)
			}
			if s.Parent() != parent || s.ActualLength() != length {
				t.Error("segment changed")
			}
			if st, rm := f.a.Pending(); st != staged || rm != removed {
				t.Errorf("pending changed from %d/%d to %d/%d", staged, removed, st, rm)
			}
		})
	}
}

func TestRunDiscretization_MergesShortLeaf(t *testing.T) {
	f := newFixture(t, neurite.DefaultParams())
	s := f.root(4)
	p, err := f.e.Split(s, 0.25)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	f.a.Commit()
	tip := s.DistalEnd()

	if err := f.e.RunDiscretization(s); err != nil {
		t.Fatalf("RunDiscretization() error = %v", err)
	}

	if s.Parent() != f.soma.NodeID() {
		t.Errorf("Parent() = %d, want soma", s.Parent())
	}
	if !f.gone(p.ID()) {
		t.Error("merged parent still resolves")
	}
	if got := f.soma.Daughters(); len(got) != 1 || got[0] != s.ID() {
		t.Errorf("soma daughters = %v, want [%d]", got, s.ID())
	}
	if !near(s.ActualLength(), 4) || !nearVec(s.DistalEnd(), tip) {
		t.Errorf("merged segment length %v ends at %v", s.ActualLength(), s.DistalEnd())
	}
	if s.Tension() != 0 || !near(s.RestingLength(), 4) {
		t.Errorf("merged segment tension %v resting %v, want relaxed", s.Tension(), s.RestingLength())
	}
	f.check()

	if res := f.a.Commit(); res.Removed != 1 {
		t.Errorf("Commit() removed %d, want 1", res.Removed)
	}
}

func TestRunDiscretization_MergeKeepsTension(t *testing.T) {
	f := newFixture(t, neurite.DefaultParams())
	s := f.root(4)
	if _, err := f.e.Split(s, 0.25); err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	s.SetRestingLengthForDesiredTension(2)

	if err := f.e.RunDiscretization(s); err != nil {
		t.Fatalf("RunDiscretization() error = %v", err)
	}
	if !near(s.Tension(), 2) {
		t.Errorf("Tension() = %v after merge, want 2", s.Tension())
	}
	if want := s.SpringConstant() * s.ActualLength() / (2 + s.SpringConstant()); !near(s.RestingLength(), want) {
		t.Errorf("RestingLength() = %v, want %v", s.RestingLength(), want)
	}
	f.check()
}

// A chain soma -> a -> b -> c -> leaf of unit segments, all shorter than the
// minimum length together; the policy decides how far the leaf merges.
func TestRunDiscretization_MergePolicy(t *testing.T) {
	tests := []struct {
		name       string
		policy     constants.MergePolicy
		maxCascade int
		wantLength float64
		wantSoma   bool
	}{
		{"defer", constants.MergeDefer, 8, 2, false},
		{"once", constants.MergeOnce, 8, 3, false},
		{"cascade", constants.MergeCascade, 8, 4, true},
		{"cascade with one re-entry", constants.MergeCascade, 1, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := neurite.DefaultParams()
			p.MinLength = 5
			p.MergePolicy = tt.policy
			p.MaxMergeCascade = tt.maxCascade
			f := newFixture(t, p)

			s := f.root(4)
			for _, portion := range []float64{0.75, 2.0 / 3, 0.5} {
				if _, err := f.e.Split(s, portion); err != nil {
					t.Fatalf("Split(%v) error = %v", portion, err)
				}
			}
			if !near(s.ActualLength(), 1) {
				t.Fatalf("leaf length = %v, want 1", s.ActualLength())
			}

			if err := f.e.RunDiscretization(s); err != nil {
				t.Fatalf("RunDiscretization() error = %v", err)
			}
			if !near(s.ActualLength(), tt.wantLength) {
				t.Errorf("leaf length = %v, want %v", s.ActualLength(), tt.wantLength)
			}
			if got := s.Parent() == f.soma.NodeID(); got != tt.wantSoma {
				t.Errorf("leaf attached to soma = %v, want %v", got, tt.wantSoma)
			}
			f.check()
		})
	}
}

func TestSplitPortion(t *testing.T) {
	f := newFixture(t, neurite.DefaultParams())
	s := f.root(40)
	first, err := f.e.Split(s, 0.5)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	second, err := f.e.Split(s, 0.5)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}

	tests := []struct {
		name string
		seg  *neurite.Segment
		want float64
	}{
		{"terminal", s, constants.TerminalSplitPortion},
		{"root on soma", first, constants.SomaSplitPortion},
		{"internal", second, constants.DefaultSplitPortion},
	}
	for _, tt := range tests {
		got, err := f.e.SplitPortion(tt.seg)
		if err != nil {
			t.Fatalf("%s: SplitPortion() error = %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("%s: SplitPortion() = %v, want %v", tt.name, got, tt.want)
		}
	}
}
