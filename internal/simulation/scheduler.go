package simulation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/nvandessel/neurite/internal/arena"
	"github.com/nvandessel/neurite/internal/config"
	"github.com/nvandessel/neurite/internal/logging"
	"github.com/nvandessel/neurite/internal/neurite"
	"github.com/nvandessel/neurite/internal/random"
	"github.com/nvandessel/neurite/internal/spatial"
	"github.com/nvandessel/neurite/internal/store"
)

// Seeded somas grow their first neurites close to the equatorial plane.
const (
	seedAzimuthJitter = 0.1
	seedPolarJitter   = 0.2
)

// Scheduler advances a simulation one step at a time. Each step computes
// displacements in parallel against the committed state, applies them in
// ID order, runs the behavior on every tip, discretizes, and commits.
type Scheduler struct {
	cfg    *config.Config
	runID  string
	begun  bool
	step   int
	radius float64

	arena    *arena.Arena
	grid     *spatial.Grid
	rnd      *random.Source
	engine   *neurite.Engine
	behavior Behavior
	recorder store.Recorder
	logger   *slog.Logger
	events   *logging.EventLogger

	beforeStep func(step int, s *Scheduler)
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithRecorder sets the run-history recorder. The scheduler does not close it.
func WithRecorder(r store.Recorder) Option {
	return func(s *Scheduler) { s.recorder = r }
}

// WithBehavior replaces the default GrowthCone.
func WithBehavior(b Behavior) Option {
	return func(s *Scheduler) { s.behavior = b }
}

// WithLogger sets the operational logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// WithBeforeStep registers a hook called at the start of every step with
// the number of completed steps. Growth events it applies are committed with
// the step.
func WithBeforeStep(fn func(step int, s *Scheduler)) Option {
	return func(s *Scheduler) { s.beforeStep = fn }
}

// WithRunID fixes the run ID instead of generating one.
func WithRunID(id string) Option {
	return func(s *Scheduler) { s.runID = id }
}

// New validates cfg and builds a scheduler with an empty arena.
func New(cfg *config.Config, opts ...Option) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	s := &Scheduler{
		cfg:    cfg,
		radius: cfg.Simulation.InteractionRadius,
		arena:  arena.New(),
		grid:   spatial.NewGrid(cfg.Simulation.GridCellSize),
		rnd:    random.New(cfg.Simulation.Seed),
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.runID == "" {
		s.runID = uuid.NewString()
	}
	if s.recorder == nil {
		s.recorder = store.NewMemoryRecorder()
	}
	if s.behavior == nil {
		s.behavior = NewGrowthCone(cfg.Growth, s.rnd)
	}
	s.events = logging.NewEventLogger(cfg.Logging.Dir, cfg.Logging.Level, s.runID)

	s.engine = neurite.NewEngine(s.arena, s.rnd, cfg.Params(),
		neurite.WithNeighbors(s.grid),
		neurite.WithLogger(s.logger),
		neurite.WithEventLogger(s.events),
	)
	return s, nil
}

// RunID returns the ID the run is recorded under.
func (s *Scheduler) RunID() string { return s.runID }

// Arena returns the node storage.
func (s *Scheduler) Arena() *arena.Arena { return s.arena }

// Engine returns the growth engine.
func (s *Scheduler) Engine() *neurite.Engine { return s.engine }

// StepCount returns the number of completed steps.
func (s *Scheduler) StepCount() int { return s.step }

// Close flushes and closes the event trace.
func (s *Scheduler) Close() error {
	return s.events.Close()
}

// Seed places the configured somas on the x axis and grows the initial
// neurites out of each, spread evenly in azimuth.
func (s *Scheduler) Seed() error {
	g := s.cfg.Growth
	for i := range g.Somas {
		soma := s.arena.AddSoma(neurite.Vec3{float64(i) * g.SomaSpacing, 0, 0}, g.SomaDiameter)
		for j := range g.NeuritesPerSoma {
			phi := 2*math.Pi*float64(j)/float64(g.NeuritesPerSoma) + s.rnd.Uniform(-seedAzimuthJitter, seedAzimuthJitter)
			theta := math.Pi/2 + s.rnd.Uniform(-seedPolarJitter, seedPolarJitter)
			if _, err := s.engine.ExtendNewNeurite(soma, g.NeuriteDiameter, phi, theta); err != nil {
				return fmt.Errorf("seeding soma %d: %w", soma.NodeID(), err)
			}
		}
	}
	res := s.arena.Commit()
	s.logger.Info("seeded", "somas", g.Somas, "segments", res.Added)
	return nil
}

// beginRun registers the run with the recorder once. steps is the planned
// length, zero when unknown.
func (s *Scheduler) beginRun(ctx context.Context, steps int) error {
	if s.begun {
		return nil
	}
	cfgYAML, err := yaml.Marshal(s.cfg)
	if err != nil {
		return fmt.Errorf("serializing config: %w", err)
	}
	if _, err := s.recorder.BeginRun(ctx, store.RunInfo{
		ID:        s.runID,
		StartedAt: time.Now().UTC(),
		Seed:      s.cfg.Simulation.Seed,
		Steps:     steps,
		Config:    string(cfgYAML),
	}); err != nil {
		return fmt.Errorf("beginning run: %w", err)
	}
	s.begun = true
	return nil
}

// Step runs one simulation step and returns its statistics. The run is
// registered with the recorder on the first step if Run has not done so.
// A structural error leaves the arena uncommitted for the step and must end
// the run.
func (s *Scheduler) Step(ctx context.Context) (store.StepStats, error) {
	if err := s.beginRun(ctx, 0); err != nil {
		return store.StepStats{}, err
	}

	start := time.Now()
	step := s.step + 1
	s.events.SetStep(step)

	if s.beforeStep != nil {
		s.beforeStep(s.step, s)
	}

	segments := s.arena.Segments()
	s.grid.Rebuild(s.arena.Nodes())

	moves, err := s.computeDisplacements(ctx, segments)
	if err != nil {
		return store.StepStats{}, err
	}

	for i, seg := range segments {
		seg.SetForceToTransmitToProximal(moves[i].ProximalForce)
		if moves[i].Move == (neurite.Vec3{}) {
			continue
		}
		if err := s.engine.ApplyDisplacement(seg, moves[i].Move); err != nil {
			return store.StepStats{}, fmt.Errorf("step %d: %w", step, err)
		}
	}

	for _, seg := range segments {
		if !seg.IsTerminal() || !s.alive(seg) {
			continue
		}
		if err := s.behavior.Run(s.engine, seg); err != nil {
			return store.StepStats{}, fmt.Errorf("step %d: behavior: %w", step, err)
		}
	}

	for _, seg := range s.arena.AllSegments() {
		if !seg.IsTerminal() {
			continue
		}
		if err := s.engine.RunDiscretization(seg); err != nil {
			return store.StepStats{}, fmt.Errorf("step %d: discretization: %w", step, err)
		}
	}

	committed := s.arena.Commit()
	s.step = step

	current := s.arena.Segments()
	if s.cfg.Simulation.CheckInvariants {
		if err := neurite.CheckInvariants(current, s.arena.Node); err != nil {
			return store.StepStats{}, fmt.Errorf("step %d: %w", step, err)
		}
	}

	stats := Stats(len(s.arena.Somas()), current)
	stats.Step = step
	stats.Added = committed.Added
	stats.Removed = committed.Removed
	stats.Duration = time.Since(start)

	if err := s.recorder.RecordStep(ctx, s.runID, stats); err != nil {
		return stats, fmt.Errorf("recording step %d: %w", step, err)
	}
	if n := s.cfg.Store.SnapshotInterval; n > 0 && step%n == 0 {
		if err := s.recorder.RecordMorphology(ctx, s.runID, step, store.RecordsOf(current)); err != nil {
			return stats, fmt.Errorf("recording morphology at step %d: %w", step, err)
		}
	}

	if err := s.events.Flush(); err != nil {
		s.logger.Warn("flushing event trace", "error", err)
	}
	s.logger.Debug("step",
		"step", step,
		"segments", stats.Segments,
		"terminals", stats.Terminals,
		"added", stats.Added,
		"removed", stats.Removed,
		"duration", stats.Duration)
	return stats, nil
}

// computeDisplacements evaluates every segment in parallel. Workers only
// read committed state and write their own slot.
func (s *Scheduler) computeDisplacements(ctx context.Context, segments []*neurite.Segment) ([]neurite.Displacement, error) {
	moves := make([]neurite.Displacement, len(segments))
	if len(segments) == 0 {
		return moves, nil
	}

	workers := min(s.cfg.WorkerCount(), len(segments))
	chunk := (len(segments) + workers - 1) / workers
	squaredRadius := s.radius * s.radius

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for lo := 0; lo < len(segments); lo += chunk {
		hi := min(lo+chunk, len(segments))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				moves[i] = s.engine.CalculateDisplacement(segments[i], squaredRadius)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("computing displacements: %w", err)
	}
	return moves, nil
}

func (s *Scheduler) alive(seg *neurite.Segment) bool {
	_, ok := s.arena.Node(seg.ID())
	return ok
}

// Result is the outcome of Run.
type Result struct {
	RunID  string
	Status store.RunStatus
	Steps  int
	Final  store.StepStats
}

// Run registers the run unless Step already did, executes up to steps steps
// and stores the final morphology. Cancelling ctx stops the run between
// steps with status cancelled; a step error ends it as failed.
func (s *Scheduler) Run(ctx context.Context, steps int) (Result, error) {
	res := Result{RunID: s.runID, Status: store.StatusRunning}

	if err := s.beginRun(ctx, steps); err != nil {
		return res, err
	}
	s.logger.Info("run started", "run", s.runID, "steps", steps, "seed", s.cfg.Simulation.Seed)

	var runErr error
	for range steps {
		if err := ctx.Err(); err != nil {
			res.Status = store.StatusCancelled
			break
		}
		stats, err := s.Step(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				res.Status = store.StatusCancelled
			} else {
				res.Status = store.StatusFailed
				runErr = err
			}
			break
		}
		res.Steps++
		res.Final = stats
	}
	if res.Status == store.StatusRunning {
		res.Status = store.StatusCompleted
	}

	// The run is closed even when ctx is done.
	endCtx := context.WithoutCancel(ctx)
	if res.Status != store.StatusFailed && !s.snapshotted(res.Steps) {
		if err := s.recorder.RecordMorphology(endCtx, s.runID, s.step, store.RecordsOf(s.arena.Segments())); err != nil {
			runErr = errors.Join(runErr, fmt.Errorf("recording final morphology: %w", err))
		}
	}
	if err := s.recorder.EndRun(endCtx, s.runID, res.Status); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("ending run: %w", err))
	}
	if err := s.events.Flush(); err != nil {
		s.logger.Warn("flushing event trace", "error", err)
	}

	s.logger.Info("run finished",
		"run", s.runID,
		"status", res.Status,
		"steps", res.Steps,
		"segments", res.Final.Segments)
	return res, runErr
}

// snapshotted reports whether the last step already stored its morphology.
func (s *Scheduler) snapshotted(steps int) bool {
	n := s.cfg.Store.SnapshotInterval
	return steps > 0 && n > 0 && s.step%n == 0
}
