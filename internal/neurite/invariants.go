package neurite

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// ErrInvariant is wrapped by every error CheckSegment reports.
var ErrInvariant = errors.New("invariant violated")

const invariantTolerance = 1e-6

// CheckSegment validates the numeric and structural state of one segment and
// its links. lookup resolves node IDs; pass Storage.Node.
func CheckSegment(s *Segment, lookup func(ID) (Node, bool)) error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: segment %d: %s", ErrInvariant, s.id, fmt.Sprintf(format, args...)))
	}

	if s.daughterRight != 0 && s.daughterLeft == 0 {
		fail("right daughter %d set without left daughter", s.daughterRight)
	}
	if s.daughterLeft != 0 && s.daughterLeft == s.daughterRight {
		fail("both daughters are %d", s.daughterLeft)
	}

	for name, v := range map[string]float64{
		"actual length":  s.actualLength,
		"resting length": s.restingLength,
		"tension":        s.tension,
		"diameter":       s.diameter,
		"volume":         s.volume,
	} {
		if !finite(v) {
			fail("%s is %v", name, v)
		}
	}
	if s.actualLength <= 0 {
		fail("actual length %v is not positive", s.actualLength)
	}
	if s.restingLength <= 0 {
		fail("resting length %v is not positive", s.restingLength)
	}

	if want := math.Pi / 4 * s.diameter * s.diameter * s.actualLength; !near(s.volume, want) {
		fail("volume %v, want %v", s.volume, want)
	}
	if want := tensionFor(s.springConstant, s.actualLength, s.restingLength); !near(s.tension, want) {
		fail("tension %v, want %v", s.tension, want)
	}
	if !near(s.springAxis.Len(), s.actualLength) {
		fail("spring axis length %v differs from actual length %v", s.springAxis.Len(), s.actualLength)
	}
	if err := checkFrame(s); err != nil {
		fail("%v", err)
	}

	errs = append(errs, checkLinks(s, lookup)...)
	return errors.Join(errs...)
}

// CheckInvariants runs CheckSegment over every segment and joins the results.
func CheckInvariants(segments []*Segment, lookup func(ID) (Node, bool)) error {
	var errs []error
	for _, s := range segments {
		if err := CheckSegment(s, lookup); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func checkFrame(s *Segment) error {
	axes := [3]Vec3{s.xAxis, s.yAxis, s.zAxis}
	for i, a := range axes {
		if !near(a.Len(), 1) {
			return fmt.Errorf("axis %d has norm %v", i, a.Len())
		}
		for _, b := range axes[i+1:] {
			if math.Abs(a.Dot(b)) > invariantTolerance {
				return fmt.Errorf("axes are not orthogonal")
			}
		}
	}
	if s.actualLength > 0 && !near(s.xAxis.Dot(s.springAxis)/s.actualLength, 1) {
		return fmt.Errorf("x axis is not parallel to the spring axis")
	}
	return nil
}

func checkLinks(s *Segment, lookup func(ID) (Node, bool)) []error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: segment %d: %s", ErrInvariant, s.id, fmt.Sprintf(format, args...)))
	}

	parent, ok := lookup(s.parent)
	switch {
	case !ok:
		fail("parent %d does not resolve", s.parent)
	default:
		if p, ok := parent.AsSegment(); ok && p.daughterLeft != s.id && p.daughterRight != s.id {
			fail("parent segment %d does not list it as daughter", s.parent)
		}
		if so, ok := parent.AsSoma(); ok && !slices.Contains(so.daughters, s.id) {
			fail("parent soma %d does not list it as daughter", s.parent)
		}
		if origin := parent.OriginOf(s.id); !nearVec(origin, s.ProximalEnd()) {
			fail("proximal end %v detached from parent origin %v", s.ProximalEnd(), origin)
		}
	}

	for _, id := range s.Daughters() {
		n, ok := lookup(id)
		if !ok {
			fail("daughter %d does not resolve", id)
			continue
		}
		d, ok := n.AsSegment()
		if !ok {
			fail("daughter %d is not a segment", id)
			continue
		}
		if d.parent != s.id {
			fail("daughter %d has parent %d", id, d.parent)
		}
	}
	return errs
}

func near(a, b float64) bool {
	return math.Abs(a-b) <= invariantTolerance*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

func nearVec(a, b Vec3) bool {
	return near(a[0], b[0]) && near(a[1], b[1]) && near(a[2], b[2])
}
