package neurite

import (
	"github.com/nvandessel/neurite/internal/vecmath"
)

// Vec3 is the vector type used for all positions, axes and forces.
type Vec3 = vecmath.Vec3

// ID identifies a node in storage. The zero ID means "unset".
type ID uint64

// Node is anything that can be a parent in the tree: a Segment or a Soma.
// AsSegment and AsSoma replace runtime type checks on the parent.
type Node interface {
	NodeID() ID
	AsSegment() (*Segment, bool)
	AsSoma() (*Soma, bool)

	// OriginOf returns the global point where the given daughter is attached.
	OriginOf(daughter ID) Vec3

	// UpdateRelative replaces the link to old (parent or daughter) with next.
	UpdateRelative(old, next ID)

	// RemoveDaughter unlinks a daughter. Returns ErrNotDaughter if id is not one.
	RemoveDaughter(id ID) error

	// Center is the point used for neighbor search.
	Center() Vec3
	Diameter() float64
}

// Storage owns every node. New segments are staged and removals marked; the
// owner commits both atomically at the end of a step. Node must resolve staged
// segments so that links created within a step can be followed.
type Storage interface {
	Node(id ID) (Node, bool)
	NewID() ID
	Stage(s *Segment)
	MarkRemoved(id ID)
}

// NeighborQuery visits every node whose center lies within sqrt(squaredRadius)
// of self's center, excluding self. Implementations must be safe for
// concurrent readers.
type NeighborQuery interface {
	ForEachWithinRadius(visit func(Node), self Node, squaredRadius float64)
}

// Random is a uniform random source.
type Random interface {
	Uniform(min, max float64) float64
}

// ForceModel computes the force a neighbor exerts on a segment.
// The returned partition coefficient in [0, 1] is the share of the force
// transmitted to the segment's proximal end; the rest acts on its point mass.
type ForceModel interface {
	Force(self *Segment, neighbor Node) (force Vec3, proximalShare float64)
}
