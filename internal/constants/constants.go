// Package constants provides named constants used throughout the neurite codebase.
// This centralizes magic numbers of the mechanical model so they are documented in one place.
package constants

// Numerical tolerances
const (
	// TensionEpsilon is the |actual - resting| length difference below which
	// tension is forced to zero. Prevents rounding noise near equilibrium from
	// being amplified into spurious tension.
	TensionEpsilon = 1e-13

	// FrameDegeneracyEpsilon is the norm of x_new × y_old below which the local
	// frame is re-seeded from a random perpendicular.
	FrameDegeneracyEpsilon = 1e-10

	// PartitionEpsilon is the proximal share of a neighbor force below which
	// the whole force is applied to the point mass.
	PartitionEpsilon = 1e-10
)

// Force solver constants
const (
	// NeuriteInteractionDamping (h/m) scales both neighbor and internal forces
	// when a segment touches another filament segment. Suppresses kinking
	// between parallel filaments.
	NeuriteInteractionDamping = 0.01

	// DefaultContactStiffness is the repulsion per unit of overlap used by the
	// default contact force model.
	DefaultContactStiffness = 2.0
)

// Geometry and growth constants
const (
	// MinVolume is the smallest volume a segment may shrink to. It corresponds
	// to the minimal diameter.
	MinVolume = 5.2359877e-7

	// RetractionFloor is the shortest length a retracting segment keeps before
	// it merges with its parent or disappears. Tension explodes for shorter springs.
	RetractionFloor = 0.1

	// BifurcationAngle is the angle in radians between the two daughters of a
	// randomly oriented bifurcation (60 degrees).
	BifurcationAngle = 1.0471975511965976

	// BranchJitter is the half-width of the uniform noise added to the axis
	// when picking a random side-branch direction.
	BranchJitter = 0.1

	// SideBranchMinAngle and SideBranchMaxAngle bound the accepted angle between
	// a side branch and its parent's axis (45 and 135 degrees).
	SideBranchMinAngle = 0.78
	SideBranchMaxAngle = 2.35
)

// Discretization split portions. The portion is the fraction of the original
// segment kept by the distal (existing) part after a split.
const (
	// TerminalSplitPortion keeps growth tips short relative to mature segments.
	TerminalSplitPortion = 0.1

	// SomaSplitPortion is used for the first segment off a soma.
	SomaSplitPortion = 0.9

	// DefaultSplitPortion is used for every other split, including the split
	// that creates a side-branch point.
	DefaultSplitPortion = 0.5

	// MergeLengthMargin is subtracted from the max length when checking whether
	// two merged segments would still be short enough.
	MergeLengthMargin = 1.0
)

// Iteration bounds for cascades that the original model expressed as recursion.
const (
	// DefaultMaxMergeCascade bounds discretization re-entries after merges.
	DefaultMaxMergeCascade = 8

	// DefaultMaxRetractionMerges bounds merges performed by one retraction call.
	DefaultMaxRetractionMerges = 64
)
