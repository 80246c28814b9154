package vecmath

import (
	"math"
	"testing"
)

func TestClosestPointOnSegment(t *testing.T) {
	tests := []struct {
		name  string
		p     Vec3
		a, b  Vec3
		want  Vec3
		wantT float64
	}{
		{"interior", Vec3{1, 1, 0}, Vec3{0, 0, 0}, Vec3{4, 0, 0}, Vec3{1, 0, 0}, 0.25},
		{"before start", Vec3{-3, 1, 0}, Vec3{0, 0, 0}, Vec3{4, 0, 0}, Vec3{0, 0, 0}, 0},
		{"past end", Vec3{9, -2, 5}, Vec3{0, 0, 0}, Vec3{4, 0, 0}, Vec3{4, 0, 0}, 1},
		{"degenerate segment", Vec3{1, 1, 1}, Vec3{2, 2, 2}, Vec3{2, 2, 2}, Vec3{2, 2, 2}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, gotT := ClosestPointOnSegment(tt.p, tt.a, tt.b)
			if !ApproxEqual(got, tt.want, 1e-12) {
				t.Errorf("point = %v, want %v", got, tt.want)
			}
			if math.Abs(gotT-tt.wantT) > 1e-12 {
				t.Errorf("t = %v, want %v", gotT, tt.wantT)
			}
		})
	}
}

func TestClosestPointsBetweenSegments(t *testing.T) {
	t.Run("crossing", func(t *testing.T) {
		c1, c2, s, u := ClosestPointsBetweenSegments(
			Vec3{0, 0, 0}, Vec3{2, 0, 0},
			Vec3{1, -1, 1}, Vec3{1, 1, 1},
		)
		if !ApproxEqual(c1, Vec3{1, 0, 0}, 1e-12) || !ApproxEqual(c2, Vec3{1, 0, 1}, 1e-12) {
			t.Errorf("closest points = %v, %v", c1, c2)
		}
		if math.Abs(s-0.5) > 1e-12 || math.Abs(u-0.5) > 1e-12 {
			t.Errorf("params = %v, %v, want 0.5, 0.5", s, u)
		}
	})

	t.Run("parallel", func(t *testing.T) {
		c1, c2, _, _ := ClosestPointsBetweenSegments(
			Vec3{0, 0, 0}, Vec3{2, 0, 0},
			Vec3{0, 1, 0}, Vec3{2, 1, 0},
		)
		if d := c1.Sub(c2).Len(); math.Abs(d-1) > 1e-12 {
			t.Errorf("distance = %v, want 1", d)
		}
	})

	t.Run("end to end", func(t *testing.T) {
		_, _, s, u := ClosestPointsBetweenSegments(
			Vec3{0, 0, 0}, Vec3{1, 0, 0},
			Vec3{3, 0, 0}, Vec3{5, 0, 0},
		)
		if s != 1 || u != 0 {
			t.Errorf("params = %v, %v, want 1, 0", s, u)
		}
	})

	t.Run("point and segment", func(t *testing.T) {
		c1, _, _, u := ClosestPointsBetweenSegments(
			Vec3{1, 2, 0}, Vec3{1, 2, 0},
			Vec3{0, 0, 0}, Vec3{4, 0, 0},
		)
		if !ApproxEqual(c1, Vec3{1, 2, 0}, 1e-12) || math.Abs(u-0.25) > 1e-12 {
			t.Errorf("c1 = %v, t = %v", c1, u)
		}
	})
}
