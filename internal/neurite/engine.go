package neurite

import (
	"fmt"
	"log/slog"

	"github.com/nvandessel/neurite/internal/constants"
	"github.com/nvandessel/neurite/internal/logging"
)

// Engine applies growth events and mechanics to the segments held in a
// Storage. All collaborators are injected; the engine holds no global state.
//
// Mutating methods must not run concurrently on overlapping parts of the
// tree. CalculateDisplacement is read-only and may run concurrently.
type Engine struct {
	params    Params
	store     Storage
	rnd       Random
	neighbors NeighborQuery
	forces    ForceModel
	logger    *slog.Logger
	events    *logging.EventLogger
}

// Option configures an Engine.
type Option func(*Engine)

// WithNeighbors sets the neighbor query used by CalculateDisplacement.
// Without one, no neighbor forces are applied.
func WithNeighbors(q NeighborQuery) Option {
	return func(e *Engine) { e.neighbors = q }
}

// WithForceModel replaces the default ContactForce model.
func WithForceModel(m ForceModel) Option {
	return func(e *Engine) { e.forces = m }
}

// WithLogger sets the operational logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithEventLogger sets the JSONL growth event trace. A nil logger disables it.
func WithEventLogger(l *logging.EventLogger) Option {
	return func(e *Engine) { e.events = l }
}

// NewEngine creates an engine over the given storage and random source.
func NewEngine(store Storage, rnd Random, params Params, opts ...Option) *Engine {
	e := &Engine{
		params: params,
		store:  store,
		rnd:    rnd,
		forces: ContactForce{Stiffness: constants.DefaultContactStiffness},
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Params returns the engine's parameters.
func (e *Engine) Params() Params { return e.params }

// Storage returns the storage the engine mutates.
func (e *Engine) Storage() Storage { return e.store }

// Apply dispatches a growth event to its target and returns the created segments.
// Extension targets a Soma; every other event targets a Segment.
func (e *Engine) Apply(target Node, ev Event) ([]*Segment, error) {
	if x, ok := ev.(Extension); ok {
		soma, ok := target.AsSoma()
		if !ok {
			return nil, opError(string(ev.Kind()), target.NodeID(), ErrWrongTarget)
		}
		s, err := e.extendNewNeurite(soma, x)
		if err != nil {
			return nil, err
		}
		return []*Segment{s}, nil
	}

	seg, ok := target.AsSegment()
	if !ok {
		return nil, opError(string(ev.Kind()), target.NodeID(), ErrWrongTarget)
	}

	switch x := ev.(type) {
	case Bifurcation:
		pair, err := e.bifurcate(seg, x)
		if err != nil {
			return nil, err
		}
		return pair[:], nil
	case SideExtension:
		b, err := e.extendSide(seg, x)
		if err != nil {
			return nil, err
		}
		return []*Segment{b}, nil
	case Branching:
		proximal, b, err := e.branching(seg, x)
		if err != nil {
			return nil, err
		}
		return []*Segment{proximal, b}, nil
	case Split:
		p, err := e.split(seg, x.DistalPortion)
		if err != nil {
			return nil, err
		}
		return []*Segment{p}, nil
	}
	return nil, opError("apply", target.NodeID(), fmt.Errorf("%w: unhandled event %q", ErrWrongTarget, ev.Kind()))
}

// node resolves an ID, failing with ErrUnknownNode.
func (e *Engine) node(op string, id ID) (Node, error) {
	n, ok := e.store.Node(id)
	if !ok {
		return nil, opError(op, id, ErrUnknownNode)
	}
	return n, nil
}

// parentOf resolves a segment's parent.
func (e *Engine) parentOf(op string, s *Segment) (Node, error) {
	n, ok := e.store.Node(s.parent)
	if !ok {
		return nil, opError(op, s.id, fmt.Errorf("%w: parent %d", ErrUnknownNode, s.parent))
	}
	return n, nil
}

// segment resolves an ID that must be a segment.
func (e *Engine) segment(op string, id ID) (*Segment, error) {
	n, err := e.node(op, id)
	if err != nil {
		return nil, err
	}
	s, ok := n.AsSegment()
	if !ok {
		return nil, opError(op, id, ErrWrongTarget)
	}
	return s, nil
}

// UpdateDependentPhysicalVariables resolves the segment's parent and
// recomputes its dependent state.
func (e *Engine) UpdateDependentPhysicalVariables(s *Segment) error {
	parent, err := e.parentOf("update dependent variables", s)
	if err != nil {
		return err
	}
	s.UpdateDependentPhysicalVariables(parent)
	return nil
}

// UpdateLocalCoordinateAxis re-derives the segment's frame using the engine's random source.
func (e *Engine) UpdateLocalCoordinateAxis(s *Segment) {
	s.UpdateLocalCoordinateAxis(e.rnd)
}

// RemoveDaughter unlinks daughter from parent.
func (e *Engine) RemoveDaughter(parent Node, daughter ID) error {
	return parent.RemoveDaughter(daughter)
}

func (e *Engine) newSegment() *Segment {
	return newSegment(e.store.NewID(), e.params)
}

// record logs a topology mutation to both the operational log and the event trace.
func (e *Engine) record(kind string, attrs ...any) {
	e.logger.Debug(kind, attrs...)
	if e.events == nil {
		return
	}
	entry := map[string]any{"event": kind}
	for i := 0; i+1 < len(attrs); i += 2 {
		if k, ok := attrs[i].(string); ok {
			entry[k] = attrs[i+1]
		}
	}
	e.events.Log(entry)
}
