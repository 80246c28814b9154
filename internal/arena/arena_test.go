package arena

import (
	"math"
	"testing"

	"github.com/nvandessel/neurite/internal/neurite"
	"github.com/nvandessel/neurite/internal/random"
)

func newEngine(a *Arena) *neurite.Engine {
	return neurite.NewEngine(a, random.New(1), neurite.DefaultParams())
}

func TestNewIDMonotonic(t *testing.T) {
	a := New()
	prev := a.NewID()
	if prev == 0 {
		t.Fatal("NewID returned the unset ID")
	}
	for i := 0; i < 10; i++ {
		id := a.NewID()
		if id <= prev {
			t.Fatalf("NewID() = %d after %d", id, prev)
		}
		prev = id
	}
}

func TestStageAndCommit(t *testing.T) {
	a := New()
	e := newEngine(a)
	soma := a.AddSoma(neurite.Vec3{}, 10)

	s, err := e.ExtendNewNeurite(soma, 1, 0, math.Pi/2)
	if err != nil {
		t.Fatalf("ExtendNewNeurite: %v", err)
	}

	if _, ok := a.Node(s.ID()); !ok {
		t.Error("staged segment should resolve before commit")
	}
	if a.Len() != 0 {
		t.Errorf("Len() before commit = %d, want 0", a.Len())
	}
	if got := len(a.AllSegments()); got != 1 {
		t.Errorf("AllSegments() before commit = %d, want 1", got)
	}

	res := a.Commit()
	if res.Added != 1 || res.Removed != 0 {
		t.Errorf("Commit() = %+v, want 1 added", res)
	}
	if a.Len() != 1 {
		t.Errorf("Len() = %d, want 1", a.Len())
	}
	if staged, removed := a.Pending(); staged != 0 || removed != 0 {
		t.Errorf("Pending() = %d, %d after commit", staged, removed)
	}
	if got := len(a.Nodes()); got != 2 {
		t.Errorf("Nodes() = %d, want soma and segment", got)
	}
}

func TestMarkRemovedHidesNode(t *testing.T) {
	a := New()
	e := newEngine(a)
	soma := a.AddSoma(neurite.Vec3{}, 10)
	s, err := e.ExtendNewNeurite(soma, 1, 0, 0)
	if err != nil {
		t.Fatalf("ExtendNewNeurite: %v", err)
	}
	a.Commit()

	a.MarkRemoved(s.ID())
	if _, ok := a.Node(s.ID()); ok {
		t.Error("marked node should not resolve")
	}
	if got := len(a.Segments()); got != 1 {
		t.Errorf("Segments() before commit = %d, want 1", got)
	}
	if got := len(a.AllSegments()); got != 0 {
		t.Errorf("AllSegments() = %d, want 0", got)
	}

	res := a.Commit()
	if res.Removed != 1 {
		t.Errorf("Commit().Removed = %d, want 1", res.Removed)
	}
	if a.Len() != 0 {
		t.Errorf("Len() = %d, want 0", a.Len())
	}
}

func TestStagedThenRemovedNeverCommits(t *testing.T) {
	a := New()
	e := newEngine(a)
	soma := a.AddSoma(neurite.Vec3{}, 10)
	s, err := e.ExtendNewNeurite(soma, 1, 0, 0)
	if err != nil {
		t.Fatalf("ExtendNewNeurite: %v", err)
	}
	a.MarkRemoved(s.ID())

	res := a.Commit()
	if res.Added != 0 || res.Removed != 0 {
		t.Errorf("Commit() = %+v, want nothing", res)
	}
	if a.Len() != 0 {
		t.Errorf("Len() = %d, want 0", a.Len())
	}
}

func TestSegmentsInIDOrder(t *testing.T) {
	a := New()
	e := newEngine(a)
	soma := a.AddSoma(neurite.Vec3{}, 10)
	for i := 0; i < 5; i++ {
		if _, err := e.ExtendNewNeurite(soma, 1, float64(i), 1); err != nil {
			t.Fatalf("ExtendNewNeurite: %v", err)
		}
	}
	a.Commit()

	segs := a.Segments()
	for i := 1; i < len(segs); i++ {
		if segs[i].ID() <= segs[i-1].ID() {
			t.Fatalf("segments out of order: %d before %d", segs[i-1].ID(), segs[i].ID())
		}
	}
	if len(a.Somas()) != 1 {
		t.Errorf("Somas() = %d, want 1", len(a.Somas()))
	}
}

func TestUnsetIDNeverResolves(t *testing.T) {
	a := New()
	if _, ok := a.Node(0); ok {
		t.Error("Node(0) should not resolve")
	}
}
