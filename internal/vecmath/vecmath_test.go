package vecmath

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		vec  Vec3
		want float64 // expected norm after normalization
	}{
		{
			name: "standard vector",
			vec:  Vec3{3, 4, 0},
			want: 1.0,
		},
		{
			name: "already normalized",
			vec:  Vec3{1, 0, 0},
			want: 1.0,
		},
		{
			name: "negative components",
			vec:  Vec3{-2, -2, -1},
			want: 1.0,
		},
		{
			name: "zero vector unchanged",
			vec:  Vec3{0, 0, 0},
			want: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Norm(Normalize(tt.vec))
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Norm(Normalize(%v)) = %v, want %v", tt.vec, got, tt.want)
			}
		})
	}
}

func TestAngleRadian(t *testing.T) {
	tests := []struct {
		name string
		a    Vec3
		b    Vec3
		want float64
	}{
		{"identical", Vec3{1, 2, 3}, Vec3{1, 2, 3}, 0},
		{"orthogonal", Vec3{1, 0, 0}, Vec3{0, 1, 0}, math.Pi / 2},
		{"opposite", Vec3{1, 2, 3}, Vec3{-1, -2, -3}, math.Pi},
		{"45 degrees", Vec3{1, 0, 0}, Vec3{1, 1, 0}, math.Pi / 4},
		{"zero vector", Vec3{0, 0, 0}, Vec3{1, 0, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AngleRadian(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("AngleRadian() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProjectionOnto(t *testing.T) {
	got := ProjectionOnto(Vec3{3, 4, 5}, Vec3{0, 2, 0})
	if !ApproxEqual(got, Vec3{0, 4, 0}, 1e-12) {
		t.Errorf("ProjectionOnto() = %v, want [0 4 0]", got)
	}

	if got := ProjectionOnto(Vec3{1, 1, 1}, Vec3{}); got != (Vec3{}) {
		t.Errorf("ProjectionOnto(zero axis) = %v, want zero", got)
	}
}

func TestRotAroundAxis(t *testing.T) {
	got := RotAroundAxis(Vec3{1, 0, 0}, math.Pi/2, Vec3{0, 0, 1})
	if !ApproxEqual(got, Vec3{0, 1, 0}, 1e-12) {
		t.Errorf("RotAroundAxis() = %v, want [0 1 0]", got)
	}

	// Axis length must not matter.
	got = RotAroundAxis(Vec3{1, 0, 0}, math.Pi/2, Vec3{0, 0, 7})
	if !ApproxEqual(got, Vec3{0, 1, 0}, 1e-12) {
		t.Errorf("RotAroundAxis(scaled axis) = %v, want [0 1 0]", got)
	}

	v := Vec3{1, 2, 3}
	if got := RotAroundAxis(v, 1.3, Vec3{}); got != v {
		t.Errorf("RotAroundAxis(zero axis) = %v, want %v", got, v)
	}
}

func TestPerp3(t *testing.T) {
	axes := []Vec3{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
		{0, 3, 4},
		{1, 1, 1},
		{-2, 0.5, 7},
	}
	randoms := []float64{0, 0.25, 0.5, 0.99}

	for _, a := range axes {
		for _, r := range randoms {
			p := Perp3(a, r)
			if math.Abs(Norm(p)-1) > 1e-9 {
				t.Errorf("Perp3(%v, %v) norm = %v, want 1", a, r, Norm(p))
			}
			if math.Abs(p.Dot(Normalize(a))) > 1e-9 {
				t.Errorf("Perp3(%v, %v) = %v is not perpendicular", a, r, p)
			}
		}
	}

	if ApproxEqual(Perp3(Vec3{1, 1, 1}, 0.1), Perp3(Vec3{1, 1, 1}, 0.6), 1e-6) {
		t.Error("Perp3 should depend on the random value")
	}
}

func TestIsFinite(t *testing.T) {
	if !IsFinite(Vec3{1, 2, 3}) {
		t.Error("expected finite vector")
	}
	if IsFinite(Vec3{math.NaN(), 0, 0}) {
		t.Error("expected NaN to be reported")
	}
	if IsFinite(Vec3{0, math.Inf(1), 0}) {
		t.Error("expected Inf to be reported")
	}
}
