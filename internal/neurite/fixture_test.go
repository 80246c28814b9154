package neurite_test

import (
	"math"
	"testing"

	"github.com/nvandessel/neurite/internal/arena"
	"github.com/nvandessel/neurite/internal/neurite"
	"github.com/nvandessel/neurite/internal/random"
	"github.com/nvandessel/neurite/internal/vecmath"
)

const eps = 1e-9

// fixture is one soma of diameter 10 at the origin with its engine.
type fixture struct {
	t    *testing.T
	a    *arena.Arena
	e    *neurite.Engine
	soma *neurite.Soma
}

func newFixture(t *testing.T, p neurite.Params, opts ...neurite.Option) *fixture {
	t.Helper()
	a := arena.New()
	return &fixture{
		t:    t,
		a:    a,
		e:    neurite.NewEngine(a, random.New(1), p, opts...),
		soma: a.AddSoma(neurite.Vec3{}, 10),
	}
}

// root grows a committed root segment along +x from (5,0,0) to (5+length,0,0).
func (f *fixture) root(length float64) *neurite.Segment {
	f.t.Helper()
	s, err := f.e.ExtendNewNeurite(f.soma, 1, 0, math.Pi/2)
	if err != nil {
		f.t.Fatalf("ExtendNewNeurite() error = %v", err)
	}
	f.grow(s, length)
	f.a.Commit()
	return s
}

// grow moves a terminal point mass along its axis until the segment has the
// given length. The spring ends up relaxed.
func (f *fixture) grow(s *neurite.Segment, length float64) {
	f.t.Helper()
	delta := length - s.ActualLength()
	if delta == 0 {
		return
	}
	dir := s.UnitAxis()
	if delta < 0 {
		dir = dir.Mul(-1)
		delta = -delta
	}
	if err := f.e.MovePointMass(s, delta/f.e.Params().TimeStep, dir); err != nil {
		f.t.Fatalf("MovePointMass() error = %v", err)
	}
}

// check fails the test if any live segment violates an invariant.
func (f *fixture) check() {
	f.t.Helper()
	if err := neurite.CheckInvariants(f.a.AllSegments(), f.a.Node); err != nil {
		f.t.Fatalf("CheckInvariants() error = %v", err)
	}
}

func (f *fixture) gone(id neurite.ID) bool {
	_, ok := f.a.Node(id)
	return !ok
}

func near(a, b float64) bool {
	return math.Abs(a-b) <= eps*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

func nearVec(a, b neurite.Vec3) bool {
	return vecmath.ApproxEqual(a, b, 1e-9)
}
