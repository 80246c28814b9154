package neurite

import (
	"math"

	"github.com/nvandessel/neurite/internal/constants"
)

// UpdateVolume recomputes the volume after the diameter or length changed:
// V = pi/4 * d^2 * L.
func (s *Segment) UpdateVolume() {
	s.volume = math.Pi / 4 * s.diameter * s.diameter * s.actualLength
}

// UpdateDiameter recomputes the diameter after the volume changed.
func (s *Segment) UpdateDiameter() {
	if s.actualLength == 0 {
		return
	}
	s.diameter = math.Sqrt(4 / math.Pi * s.volume / s.actualLength)
}

// SetRestingLengthForDesiredTension sets the tension and derives the resting
// length from T = k(A-R)/R, i.e. R = kA/(T+k). A zero tension makes the
// segment forget any stress: R = A.
func (s *Segment) SetRestingLengthForDesiredTension(tension float64) {
	s.tension = tension
	if tension == 0 {
		s.restingLength = s.actualLength
		return
	}
	s.restingLength = s.restingLengthPreservingTension()
}

func (s *Segment) restingLengthPreservingTension() float64 {
	return s.springConstant * s.actualLength / (s.tension + s.springConstant)
}

// UpdateDependentPhysicalVariables recomputes the spring axis, actual length,
// tension and volume from the mass location and the parent's attachment
// point. Call it after changing the mass location, the parent or the resting
// length, and call UpdateLocalCoordinateAxis afterwards.
func (s *Segment) UpdateDependentPhysicalVariables(parent Node) {
	s.springAxis = s.massLocation.Sub(parent.OriginOf(s.id))
	s.actualLength = s.springAxis.Len()
	s.tension = tensionFor(s.springConstant, s.actualLength, s.restingLength)
	s.UpdateVolume()
}

// tensionFor evaluates T = k(A-R)/R, returning zero near equilibrium.
func tensionFor(k, actual, resting float64) float64 {
	if math.Abs(actual-resting) < constants.TensionEpsilon {
		return 0
	}
	return k * (actual - resting) / resting
}

// ChangeVolume grows the volume by speed*dt, never below the minimum volume,
// and updates the diameter.
func (s *Segment) ChangeVolume(speed, dt float64) {
	s.volume += speed * dt
	if s.volume < constants.MinVolume {
		s.volume = constants.MinVolume
	}
	s.UpdateDiameter()
}

// ChangeDiameter grows the diameter by speed*dt and updates the volume.
func (s *Segment) ChangeDiameter(speed, dt float64) {
	s.diameter += speed * dt
	s.UpdateVolume()
}
