package neurite

import (
	"math"

	"github.com/nvandessel/neurite/internal/constants"
	"github.com/nvandessel/neurite/internal/vecmath"
)

// Coordinate systems of a segment:
//
//	Global: fixed Cartesian axes, origin at (0,0,0).
//	Local:  axes {x, y, z} of the segment, origin at the proximal end.
//	Polar:  cylindrical (h, theta, r) with h along x, theta measured from y
//	        towards z, and r the distance from the x axis; origin at the
//	        proximal end.
//
// The transforms map positions, not directions.

// UpdateLocalCoordinateAxis re-derives the local frame after the spring axis
// changed. x follows the spring axis, z = x × y_old, y = z × x. When the old y
// axis became parallel to the new x axis the cross product vanishes and z is
// re-seeded from a random perpendicular of x.
func (s *Segment) UpdateLocalCoordinateAxis(rnd Random) {
	s.xAxis = vecmath.Normalize(s.springAxis)
	z := s.xAxis.Cross(s.yAxis)
	if n := z.Len(); n < constants.FrameDegeneracyEpsilon {
		z = vecmath.Perp3(s.xAxis, rnd.Uniform(0, 1))
	} else {
		z = z.Mul(1 / n)
	}
	s.zAxis = z
	s.yAxis = z.Cross(s.xAxis)
}

// GlobalToLocal expresses a global position in the local frame.
func (s *Segment) GlobalToLocal(p Vec3) Vec3 {
	d := p.Sub(s.ProximalEnd())
	return Vec3{d.Dot(s.xAxis), d.Dot(s.yAxis), d.Dot(s.zAxis)}
}

// LocalToGlobal expresses a local position in global coordinates.
func (s *Segment) LocalToGlobal(p Vec3) Vec3 {
	return s.xAxis.Mul(p[0]).
		Add(s.yAxis.Mul(p[1])).
		Add(s.zAxis.Mul(p[2])).
		Add(s.ProximalEnd())
}

// LocalToPolar converts a local position to (h, theta, r).
func (s *Segment) LocalToPolar(p Vec3) Vec3 {
	return Vec3{p[0], math.Atan2(p[2], p[1]), math.Hypot(p[1], p[2])}
}

// PolarToLocal converts (h, theta, r) to a local position.
func (s *Segment) PolarToLocal(q Vec3) Vec3 {
	return Vec3{q[0], q[2] * math.Cos(q[1]), q[2] * math.Sin(q[1])}
}

// GlobalToPolar is GlobalToLocal followed by LocalToPolar.
func (s *Segment) GlobalToPolar(p Vec3) Vec3 {
	return s.LocalToPolar(s.GlobalToLocal(p))
}

// PolarToGlobal maps a point on the cylinder surface given by (h, theta) to
// global coordinates. The radius is half the diameter.
func (s *Segment) PolarToGlobal(h, theta float64) Vec3 {
	return s.LocalToGlobal(s.PolarToLocal(Vec3{h, theta, 0.5 * s.diameter}))
}

// sphericalUnit returns the unit vector for azimuth phi and polar angle theta.
func sphericalUnit(phi, theta float64) Vec3 {
	return Vec3{
		math.Sin(theta) * math.Cos(phi),
		math.Sin(theta) * math.Sin(phi),
		math.Cos(theta),
	}
}
