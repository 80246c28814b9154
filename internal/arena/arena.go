// Package arena owns every node of a simulation and implements the staged
// storage the neurite engine mutates through.
package arena

import (
	"slices"
	"sync"
	"sync/atomic"

	"github.com/nvandessel/neurite/internal/neurite"
)

// Arena stores somas and segments by ID. Segments created during a step are
// staged and removals are marked; Commit applies both at once. Lookups see
// committed and staged nodes but never marked ones.
type Arena struct {
	mu sync.RWMutex

	lastID atomic.Uint64

	nodes    map[neurite.ID]neurite.Node
	order    []neurite.ID
	pending  map[neurite.ID]*neurite.Segment
	staged   []neurite.ID
	removed  map[neurite.ID]struct{}
	somas    []*neurite.Soma
	segCount int
}

// CommitResult reports what a commit changed.
type CommitResult struct {
	Added   int
	Removed int
}

// New creates an empty arena.
func New() *Arena {
	return &Arena{
		nodes:   make(map[neurite.ID]neurite.Node),
		pending: make(map[neurite.ID]*neurite.Segment),
		removed: make(map[neurite.ID]struct{}),
	}
}

// NewID implements neurite.Storage. IDs are never reused.
func (a *Arena) NewID() neurite.ID {
	return neurite.ID(a.lastID.Add(1))
}

// AddSoma creates a soma and commits it immediately.
func (a *Arena) AddSoma(position neurite.Vec3, diameter float64) *neurite.Soma {
	so := neurite.NewSoma(a.NewID(), position, diameter)

	a.mu.Lock()
	defer a.mu.Unlock()

	a.nodes[so.NodeID()] = so
	a.order = append(a.order, so.NodeID())
	a.somas = append(a.somas, so)
	return so
}

// Node implements neurite.Storage.
func (a *Arena) Node(id neurite.ID) (neurite.Node, bool) {
	if id == 0 {
		return nil, false
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	if _, gone := a.removed[id]; gone {
		return nil, false
	}
	if n, ok := a.nodes[id]; ok {
		return n, true
	}
	if s, ok := a.pending[id]; ok {
		return s, true
	}
	return nil, false
}

// Stage implements neurite.Storage.
func (a *Arena) Stage(s *neurite.Segment) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, dup := a.pending[s.ID()]; dup {
		return
	}
	a.pending[s.ID()] = s
	a.staged = append(a.staged, s.ID())
}

// MarkRemoved implements neurite.Storage.
func (a *Arena) MarkRemoved(id neurite.ID) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.removed[id] = struct{}{}
}

// Commit adds staged segments and drops marked nodes. A segment staged and
// removed within the same step never becomes visible.
func (a *Arena) Commit() CommitResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	var res CommitResult
	for _, id := range a.staged {
		if _, gone := a.removed[id]; gone {
			continue
		}
		a.nodes[id] = a.pending[id]
		a.order = append(a.order, id)
		a.segCount++
		res.Added++
	}

	for id := range a.removed {
		n, ok := a.nodes[id]
		if !ok {
			continue
		}
		delete(a.nodes, id)
		if _, isSoma := n.AsSoma(); isSoma {
			a.somas = slices.DeleteFunc(a.somas, func(so *neurite.Soma) bool { return so.NodeID() == id })
		} else {
			a.segCount--
		}
		res.Removed++
	}
	if res.Removed > 0 {
		a.order = slices.DeleteFunc(a.order, func(id neurite.ID) bool {
			_, gone := a.removed[id]
			return gone
		})
	}
	slices.Sort(a.order)

	clear(a.pending)
	clear(a.removed)
	a.staged = a.staged[:0]
	return res
}

// Nodes returns all committed nodes in ID order.
func (a *Arena) Nodes() []neurite.Node {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]neurite.Node, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, a.nodes[id])
	}
	return out
}

// Segments returns the committed segments in ID order.
func (a *Arena) Segments() []*neurite.Segment {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]*neurite.Segment, 0, a.segCount)
	for _, id := range a.order {
		if s, ok := a.nodes[id].AsSegment(); ok {
			out = append(out, s)
		}
	}
	return out
}

// AllSegments returns committed and staged segments that are not marked for
// removal, committed first. It is meant for checks in the middle of a step.
func (a *Arena) AllSegments() []*neurite.Segment {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]*neurite.Segment, 0, a.segCount+len(a.staged))
	for _, id := range a.order {
		if _, gone := a.removed[id]; gone {
			continue
		}
		if s, ok := a.nodes[id].AsSegment(); ok {
			out = append(out, s)
		}
	}
	for _, id := range a.staged {
		if _, gone := a.removed[id]; gone {
			continue
		}
		out = append(out, a.pending[id])
	}
	return out
}

// Somas returns the committed somas in creation order.
func (a *Arena) Somas() []*neurite.Soma {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return slices.Clone(a.somas)
}

// Len returns the number of committed segments.
func (a *Arena) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.segCount
}

// Pending returns the number of staged segments and marked removals.
func (a *Arena) Pending() (staged, removed int) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return len(a.staged), len(a.removed)
}
