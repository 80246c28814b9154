package store

import (
	"github.com/nvandessel/neurite/internal/neurite"
)

// RecordOf captures the state of a segment.
func RecordOf(s *neurite.Segment) SegmentRecord {
	return SegmentRecord{
		ID:            uint64(s.ID()),
		Parent:        uint64(s.Parent()),
		DaughterLeft:  uint64(s.DaughterLeft()),
		DaughterRight: uint64(s.DaughterRight()),
		Proximal:      s.ProximalEnd(),
		Distal:        s.DistalEnd(),
		Diameter:      s.Diameter(),
		ActualLength:  s.ActualLength(),
		RestingLength: s.RestingLength(),
		Tension:       s.Tension(),
		BranchOrder:   s.BranchOrder(),
	}
}

// RecordsOf captures a slice of segments.
func RecordsOf(segments []*neurite.Segment) []SegmentRecord {
	out := make([]SegmentRecord, len(segments))
	for i, s := range segments {
		out[i] = RecordOf(s)
	}
	return out
}
