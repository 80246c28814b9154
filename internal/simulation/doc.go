// Package simulation drives neurite growth over time and provides a scenario
// harness for validating the emergent morphology.
//
// A Scheduler owns the arena, the neighbor grid, the engine and a Behavior.
// Each Step computes displacements on a bounded errgroup against the
// committed state, applies them in ID order, runs the behavior on every tip,
// discretizes the tips and commits the arena. Statistics and morphology
// snapshots go to a store.Recorder.
//
// Scenarios run the real scheduler against an isolated SQLite recorder with
// invariant checking enabled; no mocks.
//
// Usage:
//
//	func TestTipsStayShort(t *testing.T) {
//	    r := simulation.NewRunner(t)
//	    result := r.Run(simulation.Scenario{
//	        Name:  "tips-stay-short",
//	        Steps: 200,
//	        Configure: func(cfg *config.Config) {
//	            cfg.Growth.BifurcationProbability = 0.02
//	        },
//	    })
//	    simulation.AssertLengthsBounded(t, result, 15)
//	}
package simulation
