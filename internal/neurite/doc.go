// Package neurite implements the mechanical core of branching filament growth.
//
// A neurite is a tree of rigid cylindrical segments joined by linear springs.
// Each Segment owns the geometry of one edge: its distal end (the point
// mass), the spring axis pointing from the proximal attachment point to the
// distal end, and a local orthonormal frame whose x axis follows the spring.
// Roots attach to a Soma.
//
// The Engine mutates the tree in response to growth events (extension from a
// soma, bifurcation, side branching, split) and maintains segment length
// bounds through discretization (split and merge), retraction and
// elongation. Forces are computed in two phases: CalculateDisplacement only
// reads committed state and may run concurrently across segments;
// ApplyDisplacement mutates and must run on a single goroutine.
//
// Segments are owned by a Storage arena and referenced by ID. Parent links
// are plain lookups and never control lifetime. New segments are staged and
// removals are marked; the arena commits both at the end of a step.
//
// Precondition violations (bifurcating a non-terminal segment, branching a
// segment whose right daughter is occupied, removing a non-daughter) return
// errors wrapping ErrStructural. They indicate a caller bug and must abort
// the run; the tree is left untouched when they are returned.
package neurite
