package neurite

import (
	"github.com/nvandessel/neurite/internal/vecmath"
)

// ElongateTerminalEnd moves the point mass like MovePointMass, but only if
// direction has a positive component along the spring axis.
func (e *Engine) ElongateTerminalEnd(s *Segment, speed float64, direction Vec3) error {
	if direction.Dot(s.springAxis) <= 0 {
		return nil
	}
	return e.MovePointMass(s, speed, direction)
}

// MovePointMass advances the point mass of a terminal segment by speed*dt
// along direction and relaxes the spring: tension drops to zero and the
// resting length becomes the new actual length. Non-terminal segments are
// left alone.
func (e *Engine) MovePointMass(s *Segment, speed float64, direction Vec3) error {
	if !s.IsTerminal() {
		return nil
	}
	if !validDirection(direction) {
		return opError("move point mass", s.id, ErrInvalidDirection)
	}
	parent, err := e.parentOf("move point mass", s)
	if err != nil {
		return err
	}

	length := speed * e.params.TimeStep
	s.massLocation = s.massLocation.Add(vecmath.Normalize(direction).Mul(length))
	s.springAxis = s.massLocation.Sub(parent.OriginOf(s.id))
	s.actualLength = s.springAxis.Len()
	s.SetRestingLengthForDesiredTension(0)
	s.UpdateVolume()
	s.UpdateLocalCoordinateAxis(e.rnd)
	return nil
}

// ChangeVolume grows the segment's volume by speed*dt, keeping its length.
func (e *Engine) ChangeVolume(s *Segment, speed float64) {
	s.ChangeVolume(speed, e.params.TimeStep)
}

// ChangeDiameter grows the segment's diameter by speed*dt, keeping its length.
func (e *Engine) ChangeDiameter(s *Segment, speed float64) {
	s.ChangeDiameter(speed, e.params.TimeStep)
}

// LengthToProximalBranchingPoint sums the lengths of s and its ancestors up
// to the nearest bifurcation point or soma.
func (e *Engine) LengthToProximalBranchingPoint(s *Segment) float64 {
	length := s.actualLength
	for cur := s; ; {
		n, ok := e.store.Node(cur.parent)
		if !ok {
			return length
		}
		p, ok := n.AsSegment()
		if !ok || p.daughterRight != 0 {
			return length
		}
		length += p.actualLength
		cur = p
	}
}
