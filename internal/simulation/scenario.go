package simulation

import (
	"github.com/nvandessel/neurite/internal/config"
	"github.com/nvandessel/neurite/internal/store"
)

// Scenario defines a complete simulation experiment.
type Scenario struct {
	Name  string
	Steps int

	// Configure, when non-nil, adjusts the default config before the
	// scheduler is built. Invariant checking is always enabled.
	Configure func(cfg *config.Config)

	// Behavior, when non-nil, replaces the default GrowthCone.
	Behavior Behavior

	// BeforeStep, when non-nil, is called before each step with the number
	// of completed steps. Use it to apply growth events by hand.
	BeforeStep func(step int, s *Scheduler)
}

// SimulationResult captures the per-step statistics and the final tree.
type SimulationResult struct {
	RunID  string
	Status store.RunStatus
	Steps  []store.StepStats

	// Morphology is the final recorded tree.
	Morphology []store.SegmentRecord

	Scheduler *Scheduler
	Store     *store.SQLiteRecorder
}

// Last returns the statistics of the final step, or the zero value.
func (r SimulationResult) Last() store.StepStats {
	if len(r.Steps) == 0 {
		return store.StepStats{}
	}
	return r.Steps[len(r.Steps)-1]
}
