// Package vecmath provides the 3D vector operations used by the mechanical
// neurite model. Vectors are mgl64.Vec3 values so callers get the library's
// arithmetic methods (Add, Sub, Mul, Dot, Cross, Len) for free; this package
// adds the helpers the library lacks and zero-safe variants of the ones it has.
package vecmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 is a 3D float64 vector.
type Vec3 = mgl64.Vec3

// Norm returns the Euclidean length of v.
func Norm(v Vec3) float64 {
	return v.Len()
}

// Normalize returns v scaled to unit length.
// The zero vector is returned unchanged instead of producing NaN.
func Normalize(v Vec3) Vec3 {
	n := v.Len()
	if n == 0 {
		return Vec3{}
	}
	return v.Mul(1 / n)
}

// AngleRadian returns the angle between a and b in [0, pi].
// Returns 0 if either vector has zero length.
func AngleRadian(a, b Vec3) float64 {
	na, nb := a.Len(), b.Len()
	if na == 0 || nb == 0 {
		return 0
	}
	cos := a.Dot(b) / (na * nb)
	// Rounding can push cos slightly outside [-1, 1].
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos)
}

// ProjectionOnto returns the projection of a onto the line spanned by b.
func ProjectionOnto(a, b Vec3) Vec3 {
	lenSq := b.LenSqr()
	if lenSq == 0 {
		return Vec3{}
	}
	return b.Mul(a.Dot(b) / lenSq)
}

// RotAroundAxis rotates v by theta radians around axis (right-hand rule).
// A zero axis leaves v unchanged.
func RotAroundAxis(v Vec3, theta float64, axis Vec3) Vec3 {
	unit := Normalize(axis)
	if unit == (Vec3{}) {
		return v
	}
	return mgl64.QuatRotate(theta, unit).Rotate(v)
}

// Perp3 returns a unit vector perpendicular to a. The random value in [0, 1)
// selects the vector's orientation around a, so different values produce
// different perpendiculars.
func Perp3(a Vec3, random float64) Vec3 {
	var perp Vec3
	if a[0] == 0 {
		perp = Vec3{1, 0, 0}
	} else {
		perp = Normalize(Vec3{a[1], -a[0], 0})
	}
	return RotAroundAxis(perp, 6.35*random, a)
}

// ApproxEqual reports whether every component of a and b differs by less than eps.
func ApproxEqual(a, b Vec3, eps float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) >= eps {
			return false
		}
	}
	return true
}

// IsFinite reports whether no component of v is NaN or infinite.
func IsFinite(v Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
