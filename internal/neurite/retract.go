package neurite

import (
	"github.com/nvandessel/neurite/internal/constants"
)

// RetractTerminalEnd shrinks a terminal segment by speed*dt towards its
// parent, keeping its tension. A segment that would become shorter than the
// retraction floor either merges with an unbranched parent segment and
// retries, or disappears when its parent is a soma or has another daughter.
// Merges are bounded by MaxRetractionMerges; once the bound is hit the
// segment is left as it is for this step.
func (e *Engine) RetractTerminalEnd(s *Segment, speed float64) error {
	if !s.IsTerminal() {
		return nil
	}
	step := speed * e.params.TimeStep

	for merges := 0; ; merges++ {
		parent, err := e.parentOf("retract", s)
		if err != nil {
			return err
		}

		if s.actualLength > step+constants.RetractionFloor {
			e.shorten(s, parent, step)
			return nil
		}

		p, isSegment := parent.AsSegment()
		if isSegment && p.daughterRight == 0 {
			if merges >= e.params.MaxRetractionMerges {
				e.logger.Warn("retraction merge bound reached", "segment", s.id, "merges", merges)
				return nil
			}
			if err := e.mergeWithParent(s); err != nil {
				return err
			}
			continue
		}

		if err := parent.RemoveDaughter(s.id); err != nil {
			return err
		}
		e.store.MarkRemoved(s.id)
		e.record("retraction_removal", "segment", s.id, "parent", parent.NodeID())

		if isSegment {
			return e.UpdateDependentPhysicalVariables(p)
		}
		return nil
	}
}

func (e *Engine) shorten(s *Segment, parent Node, step float64) {
	next := s.actualLength - step
	factor := next / s.actualLength
	s.actualLength = next
	s.restingLength = s.restingLengthPreservingTension()
	s.springAxis = s.springAxis.Mul(factor)
	s.massLocation = parent.OriginOf(s.id).Add(s.springAxis)
	s.UpdateVolume()
}
