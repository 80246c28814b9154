package neurite

import (
	"math"

	"github.com/nvandessel/neurite/internal/constants"
	"github.com/nvandessel/neurite/internal/vecmath"
)

// ExtendNewNeurite grows a new root segment out of a soma in the direction
// given by spherical angles (phi, theta) relative to the soma's frame.
func (e *Engine) ExtendNewNeurite(soma *Soma, diameter, phi, theta float64) (*Segment, error) {
	return e.extendNewNeurite(soma, Extension{Diameter: diameter, Phi: phi, Theta: theta})
}

// Bifurcate splits a terminal segment's growth cone into two new terminal
// daughters. Returns ErrNotTerminal, leaving the tree untouched, if the
// segment already has daughters.
func (e *Engine) Bifurcate(s *Segment, length, diameterLeft, diameterRight float64, dirLeft, dirRight Vec3) ([2]*Segment, error) {
	return e.bifurcate(s, Bifurcation{
		Length:         length,
		DiameterLeft:   diameterLeft,
		DiameterRight:  diameterRight,
		DirectionLeft:  dirLeft,
		DirectionRight: dirRight,
	})
}

// BifurcateRandom bifurcates with the default length and the segment's own
// diameter. The daughters are 60 degrees apart in a random plane containing
// the spring axis.
func (e *Engine) BifurcateRandom(s *Segment) ([2]*Segment, error) {
	plane := vecmath.Perp3(s.springAxis, e.rnd.Uniform(0, 1))
	half := constants.BifurcationAngle / 2
	left := vecmath.RotAroundAxis(s.springAxis, half, plane)
	right := vecmath.RotAroundAxis(s.springAxis, -half, plane)
	return e.Bifurcate(s, e.params.DefaultActualLength, s.diameter, s.diameter, left, right)
}

// BifurcationPermitted reports whether the segment is terminal and longer
// than the minimal bifurcation length.
func (e *Engine) BifurcationPermitted(s *Segment) bool {
	return s.IsTerminal() && s.actualLength > e.params.MinBifurcationLength
}

// Branch attaches a new side branch to s and returns it. If s has exactly
// one daughter the branch becomes its right daughter; if s is terminal it is
// first split in half and the branch is attached to the new proximal
// segment. Returns ErrBranchOccupied if the right daughter is already set.
func (e *Engine) Branch(s *Segment, diameter float64, direction Vec3, length float64) (*Segment, error) {
	if s.daughterRight != 0 {
		return nil, opError("branch", s.id, ErrBranchOccupied)
	}
	if s.daughterLeft != 0 {
		return e.extendSide(s, SideExtension{Length: length, Diameter: diameter, Direction: direction})
	}
	_, branch, err := e.branching(s, Branching{
		DistalPortion: constants.DefaultSplitPortion,
		Length:        length,
		Diameter:      diameter,
		Direction:     direction,
	})
	return branch, err
}

// BranchRandom branches with the segment's diameter, the default length and a
// jittered direction perpendicular to the spring axis.
func (e *Engine) BranchRandom(s *Segment) (*Segment, error) {
	j := constants.BranchJitter
	noise := Vec3{e.rnd.Uniform(-j, j), e.rnd.Uniform(-j, j), e.rnd.Uniform(-j, j)}
	dir := vecmath.Normalize(vecmath.Perp3(s.UnitAxis().Add(noise), e.rnd.Uniform(0, 1)))
	return e.Branch(s, s.diameter, dir, e.params.DefaultActualLength)
}

// Split inserts a new proximal segment covering (1 - distalPortion) of s and
// returns it. s keeps the distal part and becomes the new segment's only daughter.
func (e *Engine) Split(s *Segment, distalPortion float64) (*Segment, error) {
	return e.split(s, distalPortion)
}

func (e *Engine) extendNewNeurite(soma *Soma, ev Extension) (*Segment, error) {
	if !finite(ev.Phi) || !finite(ev.Theta) {
		return nil, opError("extension", soma.id, ErrInvalidDirection)
	}

	s := e.newSegment()
	radius := 0.5 * soma.diameter
	length := e.params.DefaultActualLength
	dir := soma.directionFromAngles(ev.Phi, ev.Theta)

	begin := soma.position.Add(dir.Mul(radius))
	s.springAxis = dir.Mul(length)
	s.massLocation = begin.Add(s.springAxis)
	s.actualLength = length
	s.diameter = ev.Diameter
	s.UpdateVolume()
	s.SetRestingLengthForDesiredTension(e.params.DefaultTension)
	s.UpdateLocalCoordinateAxis(e.rnd)

	s.parent = soma.id
	soma.addDaughter(s.id, begin)
	e.store.Stage(s)

	e.record(string(KindExtension), "soma", soma.id, "segment", s.id)
	return s, nil
}

func (e *Engine) bifurcate(s *Segment, ev Bifurcation) ([2]*Segment, error) {
	if !s.IsTerminal() {
		return [2]*Segment{}, opError("bifurcate", s.id, ErrNotTerminal)
	}
	if !validDirection(ev.DirectionLeft) || !validDirection(ev.DirectionRight) {
		return [2]*Segment{}, opError("bifurcate", s.id, ErrInvalidDirection)
	}

	left := e.bifurcationDaughter(s, ev.Length, ev.DiameterLeft, ev.DirectionLeft)
	right := e.bifurcationDaughter(s, ev.Length, ev.DiameterRight, ev.DirectionRight)
	e.store.Stage(left)
	e.store.Stage(right)
	s.daughterLeft = left.id
	s.daughterRight = right.id

	e.record(string(KindBifurcation), "segment", s.id, "left", left.id, "right", right.id)
	return [2]*Segment{left, right}, nil
}

// bifurcationDaughter derives one daughter of a bifurcation from its mother.
// Directions pointing backwards (more than 90 degrees from the mother's axis)
// lose their backward component.
func (e *Engine) bifurcationDaughter(mother *Segment, length, diameter float64, direction Vec3) *Segment {
	d := e.newSegment()
	d.copyFrom(mother)
	d.parent = mother.id

	dir := direction
	if vecmath.AngleRadian(mother.springAxis, direction) > math.Pi/2 {
		dir = direction.Sub(vecmath.ProjectionOnto(direction, mother.springAxis))
		if dir.Len() < constants.FrameDegeneracyEpsilon {
			// Exactly backwards: nothing is left after removing the projection.
			dir = vecmath.Perp3(mother.springAxis, e.rnd.Uniform(0, 1))
		}
	}

	d.springAxis = vecmath.Normalize(dir).Mul(length)
	d.massLocation = mother.massLocation.Add(d.springAxis)
	d.UpdateLocalCoordinateAxis(e.rnd)

	d.actualLength = length
	d.SetRestingLengthForDesiredTension(e.params.DefaultTension)

	d.diameter = diameter
	d.branchOrder = mother.branchOrder + 1
	d.UpdateDependentPhysicalVariables(mother)
	return d
}

func (e *Engine) extendSide(s *Segment, ev SideExtension) (*Segment, error) {
	if s.daughterRight != 0 {
		return nil, opError("side extension", s.id, ErrBranchOccupied)
	}
	if s.daughterLeft == 0 {
		return nil, opError("side extension", s.id, ErrNoDaughter)
	}
	if !validDirection(ev.Direction) {
		return nil, opError("side extension", s.id, ErrInvalidDirection)
	}

	b := e.sideBranch(s, ev.Length, ev.Diameter, ev.Direction)
	e.store.Stage(b)
	s.daughterRight = b.id

	e.record(string(KindSideExtension), "segment", s.id, "branch", b.id)
	return b, nil
}

// sideBranch derives a side branch of mother. Directions closer than 45
// degrees to the mother's axis (or its reverse) are rotated towards the
// perpendicular plane.
func (e *Engine) sideBranch(mother *Segment, length, diameter float64, direction Vec3) *Segment {
	b := e.newSegment()
	b.copyFrom(mother)

	dir := direction
	angle := vecmath.AngleRadian(mother.springAxis, direction)
	if angle < constants.SideBranchMinAngle || angle > constants.SideBranchMaxAngle {
		p := mother.springAxis.Cross(direction).Cross(mother.springAxis)
		if p.Len() < constants.FrameDegeneracyEpsilon {
			p = vecmath.Perp3(mother.springAxis, e.rnd.Uniform(0, 1))
		}
		dir = vecmath.Normalize(direction).Add(vecmath.Normalize(p))
	}

	b.springAxis = vecmath.Normalize(dir).Mul(length)
	b.massLocation = mother.massLocation.Add(b.springAxis)
	b.actualLength = length
	b.SetRestingLengthForDesiredTension(e.params.DefaultTension)
	b.UpdateLocalCoordinateAxis(e.rnd)

	b.parent = mother.id
	b.branchOrder = mother.branchOrder + 1
	b.diameter = diameter
	b.UpdateDependentPhysicalVariables(mother)
	return b
}

func (e *Engine) branching(s *Segment, ev Branching) (*Segment, *Segment, error) {
	if s.daughterRight != 0 {
		return nil, nil, opError("branch", s.id, ErrBranchOccupied)
	}
	if !validDirection(ev.Direction) {
		return nil, nil, opError("branch", s.id, ErrInvalidDirection)
	}

	proximal, err := e.split(s, ev.DistalPortion)
	if err != nil {
		return nil, nil, err
	}
	b := e.sideBranch(proximal, ev.Length, ev.Diameter, ev.Direction)
	e.store.Stage(b)
	proximal.daughterRight = b.id

	e.record(string(KindBranching), "segment", s.id, "proximal", proximal.id, "branch", b.id)
	return proximal, b, nil
}

func (e *Engine) split(s *Segment, distalPortion float64) (*Segment, error) {
	if !(distalPortion > 0 && distalPortion < 1) {
		return nil, opError("split", s.id, ErrInvalidPortion)
	}
	parent, err := e.parentOf("split", s)
	if err != nil {
		return nil, err
	}

	p := e.newSegment()
	p.copyFrom(s)
	p.massLocation = s.massLocation.Sub(s.springAxis.Mul(distalPortion))
	p.parent = s.parent
	p.daughterLeft = s.id
	p.restingLength = (1 - distalPortion) * s.restingLength
	e.store.Stage(p)

	// The parent points at p before s lets go of it.
	parent.UpdateRelative(s.id, p.id)
	s.parent = p.id
	s.restingLength *= distalPortion

	s.UpdateDependentPhysicalVariables(p)
	p.UpdateDependentPhysicalVariables(parent)
	p.UpdateLocalCoordinateAxis(e.rnd)
	s.UpdateLocalCoordinateAxis(e.rnd)

	e.record(string(KindSplit), "segment", s.id, "proximal", p.id, "portion", distalPortion)
	return p, nil
}

func validDirection(v Vec3) bool {
	return vecmath.IsFinite(v) && v.Len() > 0
}
