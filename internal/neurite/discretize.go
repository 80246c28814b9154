package neurite

import (
	"github.com/nvandessel/neurite/internal/constants"
)

// RunDiscretization keeps a terminal segment's length within
// [MinLength, MaxLength]. A segment that is too long is split. One that is
// too short is merged with its parent when the parent is an unbranched
// segment and the merged segment stays short enough. After a merge the
// check is repeated as allowed by the merge policy. Non-terminal segments
// are left alone.
func (e *Engine) RunDiscretization(s *Segment) error {
	if !s.IsTerminal() {
		return nil
	}

	reentries := e.params.MergePolicy.ReentryLimit(e.params.MaxMergeCascade)
	for pass := 0; pass <= reentries; pass++ {
		if s.actualLength > e.params.MaxLength {
			portion, err := e.SplitPortion(s)
			if err != nil {
				return err
			}
			_, err = e.split(s, portion)
			return err
		}

		ok, err := e.mergeable(s)
		if err != nil || !ok {
			return err
		}
		if err := e.mergeWithParent(s); err != nil {
			return err
		}
	}
	return nil
}

// SplitPortion returns the distal portion discretization uses for s:
// short tips for terminal segments, a short proximal piece for root
// segments, and halves otherwise.
func (e *Engine) SplitPortion(s *Segment) (float64, error) {
	if s.IsTerminal() {
		return constants.TerminalSplitPortion, nil
	}
	parent, err := e.parentOf("split portion", s)
	if err != nil {
		return 0, err
	}
	if _, ok := parent.AsSoma(); ok {
		return constants.SomaSplitPortion, nil
	}
	return constants.DefaultSplitPortion, nil
}

func (e *Engine) mergeable(s *Segment) (bool, error) {
	if s.actualLength >= e.params.MinLength {
		return false, nil
	}
	parent, err := e.parentOf("discretize", s)
	if err != nil {
		return false, err
	}
	p, ok := parent.AsSegment()
	if !ok || p.daughterRight != 0 {
		return false, nil
	}
	return p.restingLength < e.params.MaxLength-s.restingLength-constants.MergeLengthMargin, nil
}

// mergeWithParent removes s's parent from the tree and attaches s to its
// grandparent. s keeps its tension; the resting length follows the new
// actual length. The caller guarantees the parent is a segment whose only
// daughter is s.
func (e *Engine) mergeWithParent(s *Segment) error {
	parent, err := e.segment("merge", s.parent)
	if err != nil {
		return err
	}
	grandparent, err := e.parentOf("merge", parent)
	if err != nil {
		return err
	}

	grandparent.UpdateRelative(parent.id, s.id)
	s.parent = parent.parent

	s.springAxis = s.massLocation.Sub(grandparent.OriginOf(s.id))
	s.actualLength = s.springAxis.Len()
	s.restingLength = s.restingLengthPreservingTension()
	s.UpdateVolume()
	s.UpdateLocalCoordinateAxis(e.rnd)

	e.store.MarkRemoved(parent.id)
	e.record("merge", "segment", s.id, "removed", parent.id)
	return nil
}
