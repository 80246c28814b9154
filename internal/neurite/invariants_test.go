package neurite_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/nvandessel/neurite/internal/neurite"
)

func TestCheckInvariants_ValidTree(t *testing.T) {
	f := newFixture(t, neurite.DefaultParams())
	s := f.root(8)
	if _, err := f.e.Split(s, 0.5); err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if _, err := f.e.BifurcateRandom(s); err != nil {
		t.Fatalf("BifurcateRandom() error = %v", err)
	}
	f.check()

	f.a.Commit()
	if err := neurite.CheckInvariants(f.a.Segments(), f.a.Node); err != nil {
		t.Errorf("CheckInvariants() after commit error = %v", err)
	}
}

func TestCheckSegment(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(f *fixture, s *neurite.Segment) func(neurite.ID) (neurite.Node, bool)
		wantMsg string
	}{
		{
			name: "mass moved without update",
			corrupt: func(f *fixture, s *neurite.Segment) func(neurite.ID) (neurite.Node, bool) {
				s.SetMassLocation(s.MassLocation().Add(neurite.Vec3{1, 0, 0}))
				return f.a.Node
			},
			wantMsg: "detached",
		},
		{
			name: "resting length changed without update",
			corrupt: func(f *fixture, s *neurite.Segment) func(neurite.ID) (neurite.Node, bool) {
				s.SetRestingLength(2)
				return f.a.Node
			},
			wantMsg: "tension",
		},
		{
			name: "non-finite diameter",
			corrupt: func(f *fixture, s *neurite.Segment) func(neurite.ID) (neurite.Node, bool) {
				s.SetDiameter(math.NaN())
				return f.a.Node
			},
			wantMsg: "diameter is NaN",
		},
		{
			name: "missing parent",
			corrupt: func(f *fixture, s *neurite.Segment) func(neurite.ID) (neurite.Node, bool) {
				return func(id neurite.ID) (neurite.Node, bool) {
					if id == s.Parent() {
						return nil, false
					}
					return f.a.Node(id)
				}
			},
			wantMsg: "does not resolve",
		},
		{
			name: "parent no longer lists it",
			corrupt: func(f *fixture, s *neurite.Segment) func(neurite.ID) (neurite.Node, bool) {
				if err := f.e.RemoveDaughter(f.soma, s.ID()); err != nil {
					f.t.Fatalf("RemoveDaughter() error = %v", err)
				}
				return f.a.Node
			},
			wantMsg: "does not list it",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, neurite.DefaultParams())
			s := f.root(3)
			lookup := tt.corrupt(f, s)

			err := neurite.CheckSegment(s, lookup)
			if !errors.Is(err, neurite.ErrInvariant) {
				t.Fatalf("CheckSegment() error = %v, want ErrInvariant", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("CheckSegment() error = %q, want it to mention %q", err, tt.wantMsg)
			}
		})
	}
}
