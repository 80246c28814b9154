package simulation

import (
	"github.com/nvandessel/neurite/internal/config"
	"github.com/nvandessel/neurite/internal/neurite"
	"github.com/nvandessel/neurite/internal/random"
	"github.com/nvandessel/neurite/internal/vecmath"
)

// Behavior decides what a terminal segment does in one step. It runs on the
// scheduler goroutine after the mechanics have been applied and may call any
// mutating engine operation on the segment it is given.
type Behavior interface {
	Run(e *neurite.Engine, s *neurite.Segment) error
}

// BehaviorFunc adapts a function to the Behavior interface.
type BehaviorFunc func(e *neurite.Engine, s *neurite.Segment) error

// Run implements Behavior.
func (f BehaviorFunc) Run(e *neurite.Engine, s *neurite.Segment) error { return f(e, s) }

// GrowthCone is the default tip behavior: persistent elongation with random
// jitter, a thinning tip, probabilistic bifurcation and side branching, and
// optional retraction.
type GrowthCone struct {
	cfg config.GrowthConfig
	rnd *random.Source
}

// NewGrowthCone creates a growth cone driven by the given source.
func NewGrowthCone(cfg config.GrowthConfig, rnd *random.Source) *GrowthCone {
	return &GrowthCone{cfg: cfg, rnd: rnd}
}

// Run implements Behavior.
func (g *GrowthCone) Run(e *neurite.Engine, s *neurite.Segment) error {
	if !s.IsTerminal() {
		return nil
	}

	if g.rnd.Chance(g.cfg.RetractionProbability) {
		return e.RetractTerminalEnd(s, g.cfg.RetractionSpeed)
	}

	if s.Diameter() > g.cfg.MinDiameter {
		e.ChangeVolume(s, g.cfg.DiameterTaper)
	}

	if err := e.ElongateTerminalEnd(s, g.cfg.ElongationSpeed, g.heading(s)); err != nil {
		return err
	}

	if s.BranchOrder() >= g.cfg.MaxBranchOrder {
		return nil
	}

	if e.BifurcationPermitted(s) && g.rnd.Chance(g.cfg.BifurcationProbability) {
		_, err := e.BifurcateRandom(s)
		return err
	}

	if g.rnd.Chance(g.cfg.BranchProbability) {
		return g.sideBranch(e, s)
	}
	return nil
}

// heading mixes the current axis with a random unit vector.
func (g *GrowthCone) heading(s *neurite.Segment) neurite.Vec3 {
	noise := neurite.Vec3{
		g.rnd.Normal(0, 1),
		g.rnd.Normal(0, 1),
		g.rnd.Normal(0, 1),
	}
	dir := s.UnitAxis().Mul(g.cfg.Persistence)
	if n := noise.Len(); n > 0 {
		dir = dir.Add(noise.Mul(g.cfg.Jitter / n))
	}
	if dir.Dot(s.SpringAxis()) <= 0 || !vecmath.IsFinite(dir) {
		return s.UnitAxis()
	}
	return dir
}

// sideBranch grows a branch off the tip's parent when that parent is an
// unbranched segment. Tips attached to a soma or a branch point keep growing.
func (g *GrowthCone) sideBranch(e *neurite.Engine, s *neurite.Segment) error {
	n, ok := e.Storage().Node(s.Parent())
	if !ok {
		return nil
	}
	p, ok := n.AsSegment()
	if !ok || !p.BranchPermitted() {
		return nil
	}
	_, err := e.BranchRandom(p)
	return err
}
