package vecmath

// ClosestPointOnSegment returns the point of segment [a, b] nearest to p and
// its parameter t in [0, 1] measured from a. A degenerate segment yields a.
func ClosestPointOnSegment(p, a, b Vec3) (Vec3, float64) {
	ab := b.Sub(a)
	lenSq := ab.LenSqr()
	if lenSq == 0 {
		return a, 0
	}
	t := clamp01(p.Sub(a).Dot(ab) / lenSq)
	return a.Add(ab.Mul(t)), t
}

// ClosestPointsBetweenSegments returns the nearest points c1 on [p1, q1] and
// c2 on [p2, q2] with their parameters s and t in [0, 1]. Parallel segments
// resolve to s = 0.
func ClosestPointsBetweenSegments(p1, q1, p2, q2 Vec3) (c1, c2 Vec3, s, t float64) {
	d1 := q1.Sub(p1)
	d2 := q2.Sub(p2)
	r := p1.Sub(p2)
	a := d1.LenSqr()
	e := d2.LenSqr()
	f := d2.Dot(r)

	switch {
	case a == 0 && e == 0:
		return p1, p2, 0, 0
	case a == 0:
		t = clamp01(f / e)
	default:
		c := d1.Dot(r)
		if e == 0 {
			s = clamp01(-c / a)
			break
		}
		b := d1.Dot(d2)
		denom := a*e - b*b
		if denom != 0 {
			s = clamp01((b*f - c*e) / denom)
		}
		t = (b*s + f) / e
		if t < 0 {
			t = 0
			s = clamp01(-c / a)
		} else if t > 1 {
			t = 1
			s = clamp01((b - c) / a)
		}
	}

	return p1.Add(d1.Mul(s)), p2.Add(d2.Mul(t)), s, t
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
