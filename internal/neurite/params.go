package neurite

import "github.com/nvandessel/neurite/internal/constants"

// Params holds the global simulation parameters consumed by the engine.
type Params struct {
	DefaultActualLength   float64
	DefaultDensity        float64
	DefaultDiameter       float64
	DefaultSpringConstant float64
	DefaultAdherence      float64
	DefaultTension        float64

	// MinLength and MaxLength bound terminal segment length during discretization.
	MinLength float64
	MaxLength float64

	// MinBifurcationLength is the length a terminal must exceed before
	// BifurcationPermitted reports true.
	MinBifurcationLength float64

	// TimeStep scales speeds into per-step distances.
	TimeStep float64

	// MaxDisplacement caps the distance a point mass moves in one step.
	MaxDisplacement float64

	MergePolicy         constants.MergePolicy
	MaxMergeCascade     int
	MaxRetractionMerges int
}

// DefaultParams returns the default mechanical parameters.
func DefaultParams() Params {
	return Params{
		DefaultActualLength:   1.0,
		DefaultDensity:        1.0,
		DefaultDiameter:       1.0,
		DefaultSpringConstant: 10.0,
		DefaultAdherence:      0.1,
		DefaultTension:        0.0,
		MinLength:             2.0,
		MaxLength:             15.0,
		MinBifurcationLength:  0.0,
		TimeStep:              0.01,
		MaxDisplacement:       3.0,
		MergePolicy:           constants.MergeOnce,
		MaxMergeCascade:       constants.DefaultMaxMergeCascade,
		MaxRetractionMerges:   constants.DefaultMaxRetractionMerges,
	}
}
