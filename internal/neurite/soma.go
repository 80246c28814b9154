package neurite

import (
	"fmt"
	"slices"
)

// Soma is the cell body at the root of a neurite tree. Its own physics are
// out of scope here: it never moves and only serves as a parent and a force
// sink. Attachment points are stored in the soma's local frame.
type Soma struct {
	id       ID
	position Vec3
	diameter float64

	xAxis Vec3
	yAxis Vec3
	zAxis Vec3

	daughters   []ID
	attachments map[ID]Vec3
}

// NewSoma creates a soma with the global Cartesian frame.
func NewSoma(id ID, position Vec3, diameter float64) *Soma {
	return &Soma{
		id:          id,
		position:    position,
		diameter:    diameter,
		xAxis:       Vec3{1, 0, 0},
		yAxis:       Vec3{0, 1, 0},
		zAxis:       Vec3{0, 0, 1},
		attachments: make(map[ID]Vec3),
	}
}

// NodeID implements Node.
func (so *Soma) NodeID() ID { return so.id }

// AsSegment implements Node.
func (so *Soma) AsSegment() (*Segment, bool) { return nil, false }

// AsSoma implements Node.
func (so *Soma) AsSoma() (*Soma, bool) { return so, true }

// Center implements Node.
func (so *Soma) Center() Vec3 { return so.position }

// Diameter implements Node.
func (so *Soma) Diameter() float64 { return so.diameter }

func (so *Soma) Position() Vec3 { return so.position }
func (so *Soma) XAxis() Vec3    { return so.xAxis }
func (so *Soma) YAxis() Vec3    { return so.yAxis }
func (so *Soma) ZAxis() Vec3    { return so.zAxis }

// Daughters returns a copy of the attached root segments in attachment order.
func (so *Soma) Daughters() []ID { return slices.Clone(so.daughters) }

// OriginOf implements Node. Unknown daughters attach at the center.
func (so *Soma) OriginOf(daughter ID) Vec3 {
	local, ok := so.attachments[daughter]
	if !ok {
		return so.position
	}
	return so.localToGlobal(local)
}

// UpdateRelative implements Node. The new daughter inherits the old one's
// attachment point.
func (so *Soma) UpdateRelative(old, next ID) {
	i := slices.Index(so.daughters, old)
	if i < 0 {
		return
	}
	so.daughters[i] = next
	so.attachments[next] = so.attachments[old]
	delete(so.attachments, old)
}

// RemoveDaughter implements Node.
func (so *Soma) RemoveDaughter(id ID) error {
	i := slices.Index(so.daughters, id)
	if i < 0 {
		return opError("remove daughter", so.id, fmt.Errorf("%w: %d", ErrNotDaughter, id))
	}
	so.daughters = slices.Delete(so.daughters, i, i+1)
	delete(so.attachments, id)
	return nil
}

// addDaughter attaches a root segment at the given global point.
func (so *Soma) addDaughter(id ID, at Vec3) {
	so.daughters = append(so.daughters, id)
	so.attachments[id] = so.globalToLocal(at)
}

// directionFromAngles converts spherical angles in the soma frame to a global unit vector.
func (so *Soma) directionFromAngles(phi, theta float64) Vec3 {
	local := sphericalUnit(phi, theta)
	return so.xAxis.Mul(local[0]).Add(so.yAxis.Mul(local[1])).Add(so.zAxis.Mul(local[2]))
}

func (so *Soma) localToGlobal(p Vec3) Vec3 {
	return so.position.
		Add(so.xAxis.Mul(p[0])).
		Add(so.yAxis.Mul(p[1])).
		Add(so.zAxis.Mul(p[2]))
}

func (so *Soma) globalToLocal(p Vec3) Vec3 {
	d := p.Sub(so.position)
	return Vec3{d.Dot(so.xAxis), d.Dot(so.yAxis), d.Dot(so.zAxis)}
}
