package neurite

import (
	"fmt"
	"math"
)

// Segment is one rigid, spring-connected cylinder of a neurite tree.
//
// The distal end is the point mass at MassLocation. The proximal end is
// MassLocation - SpringAxis and coincides with the parent's attachment point
// once UpdateDependentPhysicalVariables has run.
type Segment struct {
	id ID

	massLocation Vec3
	diameter     float64
	volume       float64
	density      float64
	adherence    float64

	xAxis Vec3
	yAxis Vec3
	zAxis Vec3

	springAxis     Vec3
	actualLength   float64
	restingLength  float64
	tension        float64
	springConstant float64

	branchOrder int
	isAxon      bool

	parent        ID
	daughterLeft  ID
	daughterRight ID

	forceToTransmitToProximal Vec3
}

// newSegment returns a segment with the default mechanical state.
func newSegment(id ID, p Params) *Segment {
	s := &Segment{
		id:             id,
		tension:        p.DefaultTension,
		diameter:       p.DefaultDiameter,
		actualLength:   p.DefaultActualLength,
		density:        p.DefaultDensity,
		springConstant: p.DefaultSpringConstant,
		adherence:      p.DefaultAdherence,
		xAxis:          Vec3{1, 0, 0},
		yAxis:          Vec3{0, 1, 0},
		zAxis:          Vec3{0, 0, 1},
	}
	s.restingLength = s.springConstant * s.actualLength / (s.tension + s.springConstant)
	s.UpdateVolume()
	return s
}

// copyFrom takes over the baseline state shared by a segment and the
// segments derived from it.
func (s *Segment) copyFrom(o *Segment) {
	s.adherence = o.adherence
	s.density = o.density
	s.SetDiameter(o.diameter)
	s.xAxis = o.xAxis
	s.yAxis = o.yAxis
	s.zAxis = o.zAxis
	s.springAxis = o.springAxis
	s.branchOrder = o.branchOrder
	s.springConstant = o.springConstant
	s.isAxon = o.isAxon
}

// NodeID implements Node.
func (s *Segment) NodeID() ID { return s.id }

// AsSegment implements Node.
func (s *Segment) AsSegment() (*Segment, bool) { return s, true }

// AsSoma implements Node.
func (s *Segment) AsSoma() (*Soma, bool) { return nil, false }

// OriginOf implements Node. Daughters attach at the distal end.
func (s *Segment) OriginOf(ID) Vec3 { return s.massLocation }

// UpdateRelative implements Node.
func (s *Segment) UpdateRelative(old, next ID) {
	switch old {
	case s.parent:
		s.parent = next
	case s.daughterLeft:
		s.daughterLeft = next
	case s.daughterRight:
		s.daughterRight = next
	}
}

// RemoveDaughter implements Node. A remaining daughter always ends up on the left.
func (s *Segment) RemoveDaughter(id ID) error {
	if id == 0 {
		return opError("remove daughter", s.id, ErrNotDaughter)
	}
	switch id {
	case s.daughterRight:
		s.daughterRight = 0
		return nil
	case s.daughterLeft:
		s.daughterLeft = s.daughterRight
		s.daughterRight = 0
		return nil
	}
	return opError("remove daughter", s.id, fmt.Errorf("%w: %d", ErrNotDaughter, id))
}

// Center implements Node. It is the midpoint of the cylinder.
func (s *Segment) Center() Vec3 { return s.Position() }

// Diameter implements Node.
func (s *Segment) Diameter() float64 { return s.diameter }

// Position returns the midpoint of the segment.
func (s *Segment) Position() Vec3 {
	return s.massLocation.Sub(s.springAxis.Mul(0.5))
}

// ID returns the segment's identifier.
func (s *Segment) ID() ID { return s.id }

func (s *Segment) MassLocation() Vec3 { return s.massLocation }

// SetMassLocation moves the distal end without recomputing dependent state.
// Call UpdateDependentPhysicalVariables and UpdateLocalCoordinateAxis afterwards.
func (s *Segment) SetMassLocation(p Vec3) { s.massLocation = p }

// ProximalEnd returns the attachment point at the parent.
func (s *Segment) ProximalEnd() Vec3 { return s.massLocation.Sub(s.springAxis) }

// DistalEnd returns the point mass location.
func (s *Segment) DistalEnd() Vec3 { return s.massLocation }

func (s *Segment) Volume() float64    { return s.volume }
func (s *Segment) Density() float64   { return s.density }
func (s *Segment) Adherence() float64 { return s.adherence }
func (s *Segment) Mass() float64      { return s.density * s.volume }

func (s *Segment) SetDensity(d float64)   { s.density = d }
func (s *Segment) SetAdherence(a float64) { s.adherence = a }

// SetDiameter sets the diameter and recomputes the volume.
func (s *Segment) SetDiameter(d float64) {
	s.diameter = d
	s.UpdateVolume()
}

func (s *Segment) XAxis() Vec3 { return s.xAxis }
func (s *Segment) YAxis() Vec3 { return s.yAxis }
func (s *Segment) ZAxis() Vec3 { return s.zAxis }

func (s *Segment) SpringAxis() Vec3        { return s.springAxis }
func (s *Segment) ActualLength() float64   { return s.actualLength }
func (s *Segment) RestingLength() float64  { return s.restingLength }
func (s *Segment) Tension() float64        { return s.tension }
func (s *Segment) SpringConstant() float64 { return s.springConstant }

// SetRestingLength changes the natural length. Call
// UpdateDependentPhysicalVariables afterwards to refresh the tension.
func (s *Segment) SetRestingLength(l float64) { s.restingLength = l }

func (s *Segment) SetSpringConstant(k float64) { s.springConstant = k }

// UnitAxis returns the spring axis scaled to unit length.
func (s *Segment) UnitAxis() Vec3 {
	if s.actualLength == 0 {
		return Vec3{}
	}
	return s.springAxis.Mul(1 / s.actualLength)
}

func (s *Segment) BranchOrder() int { return s.branchOrder }
func (s *Segment) IsAxon() bool     { return s.isAxon }
func (s *Segment) SetAxon(v bool)   { s.isAxon = v }

func (s *Segment) Parent() ID        { return s.parent }
func (s *Segment) DaughterLeft() ID  { return s.daughterLeft }
func (s *Segment) DaughterRight() ID { return s.daughterRight }

// ForceToTransmitToProximal is the share of the neighbor force computed in
// the previous compute phase that acts on the parent's point mass.
func (s *Segment) ForceToTransmitToProximal() Vec3 { return s.forceToTransmitToProximal }

// SetForceToTransmitToProximal stores the proximal force share. The scheduler
// calls it in the apply phase so that concurrent compute workers only ever see
// the previous step's value.
func (s *Segment) SetForceToTransmitToProximal(f Vec3) { s.forceToTransmitToProximal = f }

// IsTerminal reports whether the segment has no daughters.
func (s *Segment) IsTerminal() bool { return s.daughterLeft == 0 }

// IsBifurcationPoint reports whether both daughters are set.
func (s *Segment) IsBifurcationPoint() bool {
	return s.daughterLeft != 0 && s.daughterRight != 0
}

// BranchPermitted reports whether Branch may be called on this segment.
func (s *Segment) BranchPermitted() bool { return s.daughterRight == 0 }

// Daughters returns the set daughter IDs, left first.
func (s *Segment) Daughters() []ID {
	var ds []ID
	if s.daughterLeft != 0 {
		ds = append(ds, s.daughterLeft)
	}
	if s.daughterRight != 0 {
		ds = append(ds, s.daughterRight)
	}
	return ds
}

// String implements fmt.Stringer for debug output.
func (s *Segment) String() string {
	return fmt.Sprintf("Segment{id:%d parent:%d left:%d right:%d len:%.4g rest:%.4g T:%.4g d:%.4g order:%d}",
		s.id, s.parent, s.daughterLeft, s.daughterRight,
		s.actualLength, s.restingLength, s.tension, s.diameter, s.branchOrder)
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
