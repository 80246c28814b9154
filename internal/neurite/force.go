package neurite

import (
	"math"

	"github.com/nvandessel/neurite/internal/constants"
)

// Displacement is the result of the compute phase for one segment.
type Displacement struct {
	// Move is added to the point mass in the apply phase.
	Move Vec3

	// ProximalForce is the neighbor force share the parent's point mass
	// receives in the next step through ForceToTransmitToProximal.
	ProximalForce Vec3
}

// IsZero reports whether the segment neither moves nor pushes its parent.
func (d Displacement) IsZero() bool {
	return d.Move == (Vec3{}) && d.ProximalForce == (Vec3{})
}

// CalculateDisplacement computes the movement of the segment's point mass
// from its spring, the forces its daughters transmit and the neighbors
// within sqrt(squaredRadius). It does not modify any segment.
func (e *Engine) CalculateDisplacement(s *Segment, squaredRadius float64) Displacement {
	var force, fromNeighbors, proximal Vec3

	if s.actualLength > 0 {
		force = s.springAxis.Mul(-s.tension / s.actualLength)
	}

	for _, id := range s.Daughters() {
		n, ok := e.store.Node(id)
		if !ok {
			continue
		}
		if d, ok := n.AsSegment(); ok {
			force = force.Add(ForceTransmittedToParent(d))
		}
	}

	filamentNeighbor := false
	if e.neighbors != nil {
		e.neighbors.ForEachWithinRadius(func(n Node) {
			if e.isRelative(s, n) {
				return
			}
			f, w := e.forces.Force(s, n)
			if _, ok := n.AsSegment(); ok {
				f = f.Mul(constants.NeuriteInteractionDamping)
				filamentNeighbor = true
			}
			if math.Abs(w) < constants.PartitionEpsilon {
				fromNeighbors = fromNeighbors.Add(f)
				return
			}
			fromNeighbors = fromNeighbors.Add(f.Mul(1 - w))
			proximal = proximal.Add(f.Mul(w))
		}, s, squaredRadius)
	}

	if filamentNeighbor {
		force = force.Mul(constants.NeuriteInteractionDamping)
	}
	force = force.Add(fromNeighbors)

	norm := force.Len()
	if norm < s.adherence || norm == 0 {
		return Displacement{ProximalForce: proximal}
	}
	if limit := e.params.MaxDisplacement; norm > limit {
		force = force.Mul(limit / norm)
	}
	return Displacement{Move: force, ProximalForce: proximal}
}

// isRelative reports whether n is self, the parent, a daughter or a sibling of s.
func (e *Engine) isRelative(s *Segment, n Node) bool {
	id := n.NodeID()
	if id == s.id || id == s.parent || id == s.daughterLeft || id == s.daughterRight {
		return true
	}
	if other, ok := n.AsSegment(); ok && other.parent == s.parent {
		return true
	}
	return false
}

// ApplyDisplacement moves the point mass and refreshes the segment and its
// daughters, whose proximal ends follow it.
func (e *Engine) ApplyDisplacement(s *Segment, move Vec3) error {
	parent, err := e.parentOf("apply displacement", s)
	if err != nil {
		return err
	}
	s.massLocation = s.massLocation.Add(move)
	s.UpdateDependentPhysicalVariables(parent)
	s.UpdateLocalCoordinateAxis(e.rnd)

	for _, id := range s.Daughters() {
		d, err := e.segment("apply displacement", id)
		if err != nil {
			return err
		}
		d.UpdateDependentPhysicalVariables(s)
		d.UpdateLocalCoordinateAxis(e.rnd)
	}
	return nil
}

// ForceTransmittedToParent is the force s exerts on its parent's point mass:
// the pull of a stretched spring plus the neighbor force share computed in
// the previous step. A compressed spring does not push.
func ForceTransmittedToParent(s *Segment) Vec3 {
	var f Vec3
	if s.actualLength > 0 {
		f = s.springAxis.Mul(math.Max(0, s.tension/s.actualLength))
	}
	return f.Add(s.forceToTransmitToProximal)
}

// SomaForce sums the forces the soma's root segments transmit to it.
func (e *Engine) SomaForce(soma *Soma) Vec3 {
	var f Vec3
	for _, id := range soma.daughters {
		n, ok := e.store.Node(id)
		if !ok {
			continue
		}
		if s, ok := n.AsSegment(); ok {
			f = f.Add(ForceTransmittedToParent(s))
		}
	}
	return f
}
