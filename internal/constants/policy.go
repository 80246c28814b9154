package constants

// MergePolicy controls whether a discretization merge re-enters the length
// checks for the newly spliced segment within the same step.
type MergePolicy string

const (
	// MergeDefer performs one merge per step; further checks wait for the next step.
	MergeDefer MergePolicy = "defer"

	// MergeOnce re-enters discretization exactly once after a merge.
	MergeOnce MergePolicy = "once"

	// MergeCascade keeps re-entering until the segment is stable, at most
	// max_merge_cascade times, so one call merges at most max_merge_cascade+1 times.
	MergeCascade MergePolicy = "cascade"
)

// Valid returns true if the policy is a recognized value.
func (p MergePolicy) Valid() bool {
	switch p {
	case MergeDefer, MergeOnce, MergeCascade:
		return true
	}
	return false
}

// String returns the string representation of the policy.
func (p MergePolicy) String() string {
	return string(p)
}

// ReentryLimit returns how many times discretization is re-entered after a
// merge, given the configured cascade bound. A call performs at most
// ReentryLimit+1 merges.
func (p MergePolicy) ReentryLimit(maxCascade int) int {
	switch p {
	case MergeOnce:
		return 1
	case MergeCascade:
		if maxCascade < 1 {
			return 1
		}
		return maxCascade
	}
	return 0
}
