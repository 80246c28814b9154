package neurite

import (
	"github.com/nvandessel/neurite/internal/constants"
	"github.com/nvandessel/neurite/internal/vecmath"
)

// ContactForce is the default neighbor force model: a linear repulsion
// proportional to the overlap of the two bodies. Segments are cylinders
// reduced to their axis and radius; every other node is treated as a sphere
// around its center.
type ContactForce struct {
	Stiffness float64
}

// Force implements ForceModel. The proximal share is the fraction of self's
// length between the contact point and the distal end, so contacts near the
// proximal end mostly push the parent.
func (c ContactForce) Force(self *Segment, neighbor Node) (Vec3, float64) {
	var (
		mine, theirs Vec3
		t            float64
		reach        = 0.5 * (self.diameter + neighbor.Diameter())
	)

	if other, ok := neighbor.AsSegment(); ok {
		mine, theirs, t, _ = vecmath.ClosestPointsBetweenSegments(
			self.ProximalEnd(), self.massLocation,
			other.ProximalEnd(), other.massLocation,
		)
	} else {
		theirs = neighbor.Center()
		mine, t = vecmath.ClosestPointOnSegment(theirs, self.ProximalEnd(), self.massLocation)
	}

	sep := mine.Sub(theirs)
	dist := sep.Len()
	overlap := reach - dist
	if overlap <= 0 {
		return Vec3{}, 0
	}

	// Touching points have no usable separation; push along the local y axis.
	dir := self.yAxis
	if dist > constants.FrameDegeneracyEpsilon {
		dir = sep.Mul(1 / dist)
	}
	return dir.Mul(c.Stiffness * overlap), 1 - t
}
