package simulation

import (
	"github.com/nvandessel/neurite/internal/neurite"
	"github.com/nvandessel/neurite/internal/store"
)

// Stats summarises a set of segments. Step, Added, Removed and Duration are
// left for the caller.
func Stats(somas int, segments []*neurite.Segment) store.StepStats {
	st := store.StepStats{
		Somas:    somas,
		Segments: len(segments),
	}

	var tension float64
	for _, s := range segments {
		if s.IsTerminal() {
			st.Terminals++
		}
		if s.IsBifurcationPoint() {
			st.BifurcationPoints++
		}
		st.TotalLength += s.ActualLength()
		tension += s.Tension()
		st.MaxBranchOrder = max(st.MaxBranchOrder, s.BranchOrder())
	}
	if len(segments) > 0 {
		st.MeanTension = tension / float64(len(segments))
	}
	return st
}
