package neurite

// EventKind names a growth event.
type EventKind string

const (
	KindExtension     EventKind = "extension"
	KindBifurcation   EventKind = "bifurcation"
	KindSideExtension EventKind = "side_extension"
	KindBranching     EventKind = "branching"
	KindSplit         EventKind = "split"
)

// Event is a growth event. The set of implementations is closed; Engine.Apply
// dispatches on the concrete type.
type Event interface {
	Kind() EventKind
	event()
}

// Extension creates a new root segment on a soma. Phi and Theta are the
// azimuth and polar angle in the soma's frame.
type Extension struct {
	Diameter float64
	Phi      float64
	Theta    float64
}

// Bifurcation turns a terminal segment into a bifurcation point with two new
// terminal daughters.
type Bifurcation struct {
	Length         float64
	DiameterLeft   float64
	DiameterRight  float64
	DirectionLeft  Vec3
	DirectionRight Vec3
}

// SideExtension attaches a new branch as the right daughter of a segment
// that already has a left daughter.
type SideExtension struct {
	Length    float64
	Diameter  float64
	Direction Vec3
}

// Branching splits a segment at DistalPortion and attaches a new side branch
// to the created branch point.
type Branching struct {
	DistalPortion float64
	Length        float64
	Diameter      float64
	Direction     Vec3
}

// Split inserts a new proximal segment covering (1 - DistalPortion) of the
// original length.
type Split struct {
	DistalPortion float64
}

func (Extension) Kind() EventKind     { return KindExtension }
func (Bifurcation) Kind() EventKind   { return KindBifurcation }
func (SideExtension) Kind() EventKind { return KindSideExtension }
func (Branching) Kind() EventKind     { return KindBranching }
func (Split) Kind() EventKind         { return KindSplit }

func (Extension) event()     {}
func (Bifurcation) event()   {}
func (SideExtension) event() {}
func (Branching) event()     {}
func (Split) event()         {}
