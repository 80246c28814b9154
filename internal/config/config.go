// Package config provides configuration loading for neurite simulations.
// Settings come from defaults, an optional YAML file and NEURITE_*
// environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/nvandessel/neurite/internal/constants"
	"github.com/nvandessel/neurite/internal/logging"
	"github.com/nvandessel/neurite/internal/neurite"
)

// EnvPrefix prefixes every environment variable the config reads.
const EnvPrefix = "NEURITE_"

// Config contains all simulation settings.
type Config struct {
	// Neurite holds the mechanical defaults of new segments and the length bounds.
	Neurite MechanicsConfig `json:"neurite" yaml:"neurite"`

	// Simulation controls the step loop.
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`

	// Discretization controls merge re-entry and retraction bounds.
	Discretization DiscretizationConfig `json:"discretization" yaml:"discretization"`

	// Growth configures the default growth cone behavior.
	Growth GrowthConfig `json:"growth" yaml:"growth"`

	// Store configures the run-history recorder.
	Store StoreConfig `json:"store" yaml:"store"`

	// Logging contains settings for operational and event logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// MechanicsConfig holds the per-segment mechanical defaults.
type MechanicsConfig struct {
	DefaultTension        float64 `json:"default_tension" yaml:"default_tension" env:"DEFAULT_TENSION"`
	DefaultDiameter       float64 `json:"default_diameter" yaml:"default_diameter" env:"DEFAULT_DIAMETER"`
	DefaultActualLength   float64 `json:"default_actual_length" yaml:"default_actual_length" env:"DEFAULT_ACTUAL_LENGTH"`
	DefaultDensity        float64 `json:"default_density" yaml:"default_density" env:"DEFAULT_DENSITY"`
	DefaultSpringConstant float64 `json:"default_spring_constant" yaml:"default_spring_constant" env:"DEFAULT_SPRING_CONSTANT"`
	DefaultAdherence      float64 `json:"default_adherence" yaml:"default_adherence" env:"DEFAULT_ADHERENCE"`

	// MinLength and MaxLength bound terminal segments during discretization.
	MinLength float64 `json:"min_length" yaml:"min_length" env:"MIN_LENGTH"`
	MaxLength float64 `json:"max_length" yaml:"max_length" env:"MAX_LENGTH"`

	MinBifurcationLength float64 `json:"min_bifurcation_length" yaml:"min_bifurcation_length" env:"MIN_BIFURCATION_LENGTH"`
}

// SimulationConfig controls the step loop.
type SimulationConfig struct {
	TimeStep        float64 `json:"time_step" yaml:"time_step" env:"TIME_STEP"`
	MaxDisplacement float64 `json:"max_displacement" yaml:"max_displacement" env:"MAX_DISPLACEMENT"`
	Steps           int     `json:"steps" yaml:"steps" env:"STEPS"`

	// Workers bounds the parallel force computation. Zero means GOMAXPROCS.
	Workers int    `json:"workers" yaml:"workers" env:"WORKERS"`
	Seed    uint64 `json:"seed" yaml:"seed" env:"SEED"`

	// InteractionRadius is the neighbor search radius of the force solver.
	InteractionRadius float64 `json:"interaction_radius" yaml:"interaction_radius" env:"INTERACTION_RADIUS"`
	GridCellSize      float64 `json:"grid_cell_size" yaml:"grid_cell_size" env:"GRID_CELL_SIZE"`

	// CheckInvariants validates the whole tree after every step.
	CheckInvariants bool `json:"check_invariants" yaml:"check_invariants" env:"CHECK_INVARIANTS"`
}

// DiscretizationConfig controls what happens after a merge. MaxMergeCascade
// bounds the re-entries of the cascade policy.
type DiscretizationConfig struct {
	MergePolicy         constants.MergePolicy `json:"merge_policy" yaml:"merge_policy" env:"MERGE_POLICY"`
	MaxMergeCascade     int                   `json:"max_merge_cascade" yaml:"max_merge_cascade" env:"MAX_MERGE_CASCADE"`
	MaxRetractionMerges int                   `json:"max_retraction_merges" yaml:"max_retraction_merges" env:"MAX_RETRACTION_MERGES"`
}

// GrowthConfig configures the seeded cells and the growth cone behavior.
type GrowthConfig struct {
	Somas           int     `json:"somas" yaml:"somas" env:"SOMAS"`
	NeuritesPerSoma int     `json:"neurites_per_soma" yaml:"neurites_per_soma" env:"NEURITES_PER_SOMA"`
	SomaDiameter    float64 `json:"soma_diameter" yaml:"soma_diameter" env:"SOMA_DIAMETER"`
	SomaSpacing     float64 `json:"soma_spacing" yaml:"soma_spacing" env:"SOMA_SPACING"`
	NeuriteDiameter float64 `json:"neurite_diameter" yaml:"neurite_diameter" env:"NEURITE_DIAMETER"`

	// ElongationSpeed is the tip speed in length units per unit time.
	ElongationSpeed float64 `json:"elongation_speed" yaml:"elongation_speed" env:"ELONGATION_SPEED"`

	// Persistence weights the current heading against random jitter.
	Persistence float64 `json:"persistence" yaml:"persistence" env:"PERSISTENCE"`
	Jitter      float64 `json:"jitter" yaml:"jitter" env:"JITTER"`

	// Probabilities are per terminal per step.
	BifurcationProbability float64 `json:"bifurcation_probability" yaml:"bifurcation_probability" env:"BIFURCATION_PROBABILITY"`
	BranchProbability      float64 `json:"branch_probability" yaml:"branch_probability" env:"BRANCH_PROBABILITY"`
	RetractionProbability  float64 `json:"retraction_probability" yaml:"retraction_probability" env:"RETRACTION_PROBABILITY"`
	RetractionSpeed        float64 `json:"retraction_speed" yaml:"retraction_speed" env:"RETRACTION_SPEED"`

	// DiameterTaper is the volume change speed of growing tips; negative thins them.
	DiameterTaper  float64 `json:"diameter_taper" yaml:"diameter_taper" env:"DIAMETER_TAPER"`
	MinDiameter    float64 `json:"min_diameter" yaml:"min_diameter" env:"MIN_DIAMETER"`
	MaxBranchOrder int     `json:"max_branch_order" yaml:"max_branch_order" env:"MAX_BRANCH_ORDER"`
}

// StoreConfig configures the run-history recorder.
type StoreConfig struct {
	// Path is the SQLite database file. Empty keeps history in memory only.
	Path string `json:"path" yaml:"path" env:"STORE_PATH"`

	// SnapshotInterval records the full morphology every N steps; zero
	// records only the final state.
	SnapshotInterval int `json:"snapshot_interval" yaml:"snapshot_interval" env:"SNAPSHOT_INTERVAL"`
}

// LoggingConfig configures logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "warn", "info" (default), "debug" or "trace".
	// "debug" enables the growth event trace in Dir/events.jsonl.
	Level string `json:"level" yaml:"level" env:"LOG_LEVEL"`

	// Dir is the output directory of the event trace.
	Dir string `json:"dir" yaml:"dir" env:"LOG_DIR"`
}

// Default returns a Config with the default mechanical parameters and a
// small two-cell simulation.
func Default() *Config {
	p := neurite.DefaultParams()
	return &Config{
		Neurite: MechanicsConfig{
			DefaultTension:        p.DefaultTension,
			DefaultDiameter:       p.DefaultDiameter,
			DefaultActualLength:   p.DefaultActualLength,
			DefaultDensity:        p.DefaultDensity,
			DefaultSpringConstant: p.DefaultSpringConstant,
			DefaultAdherence:      p.DefaultAdherence,
			MinLength:             p.MinLength,
			MaxLength:             p.MaxLength,
			MinBifurcationLength:  p.MinBifurcationLength,
		},
		Simulation: SimulationConfig{
			TimeStep:          p.TimeStep,
			MaxDisplacement:   p.MaxDisplacement,
			Steps:             500,
			Workers:           0,
			Seed:              1,
			InteractionRadius: 5,
			GridCellSize:      5,
		},
		Discretization: DiscretizationConfig{
			MergePolicy:         p.MergePolicy,
			MaxMergeCascade:     p.MaxMergeCascade,
			MaxRetractionMerges: p.MaxRetractionMerges,
		},
		Growth: GrowthConfig{
			Somas:                  2,
			NeuritesPerSoma:        3,
			SomaDiameter:           10,
			SomaSpacing:            40,
			NeuriteDiameter:        1,
			ElongationSpeed:        100,
			Persistence:            0.9,
			Jitter:                 0.3,
			BifurcationProbability: 0.005,
			BranchProbability:      0.002,
			RetractionProbability:  0,
			RetractionSpeed:        50,
			DiameterTaper:          -0.05,
			MinDiameter:            0.3,
			MaxBranchOrder:         6,
		},
		Store: StoreConfig{
			SnapshotInterval: 0,
		},
		Logging: LoggingConfig{
			Level: "info",
			Dir:   ".neurite",
		},
	}
}

// Load loads configuration from path, or from ~/.neurite/config.yaml when
// path is empty and that file exists, then applies environment overrides.
// Order: defaults -> file -> environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			candidate := filepath.Join(home, ".neurite", "config.yaml")
			if _, statErr := os.Stat(candidate); statErr == nil {
				path = candidate
			}
		}
	}

	if path != "" {
		fileCfg, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
		cfg = fileCfg
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a YAML file. Keys missing from the
// file keep their defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration is usable. All problems are reported.
func (c *Config) Validate() error {
	var errs []error
	positive := func(name string, v float64) {
		if !(v > 0) {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", name, v))
		}
	}
	nonNegative := func(name string, v float64) {
		if v < 0 {
			errs = append(errs, fmt.Errorf("%s must be non-negative, got %v", name, v))
		}
	}
	probability := func(name string, v float64) {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%s must be between 0 and 1, got %v", name, v))
		}
	}

	n := c.Neurite
	positive("neurite.default_diameter", n.DefaultDiameter)
	positive("neurite.default_actual_length", n.DefaultActualLength)
	positive("neurite.default_density", n.DefaultDensity)
	positive("neurite.default_spring_constant", n.DefaultSpringConstant)
	nonNegative("neurite.default_adherence", n.DefaultAdherence)
	if n.DefaultTension <= -n.DefaultSpringConstant {
		errs = append(errs, fmt.Errorf("neurite.default_tension must exceed -default_spring_constant, got %v", n.DefaultTension))
	}
	positive("neurite.min_length", n.MinLength)
	if n.MaxLength <= n.MinLength {
		errs = append(errs, fmt.Errorf("neurite.max_length (%v) must exceed min_length (%v)", n.MaxLength, n.MinLength))
	}
	nonNegative("neurite.min_bifurcation_length", n.MinBifurcationLength)

	s := c.Simulation
	positive("simulation.time_step", s.TimeStep)
	positive("simulation.max_displacement", s.MaxDisplacement)
	nonNegative("simulation.steps", float64(s.Steps))
	nonNegative("simulation.workers", float64(s.Workers))
	nonNegative("simulation.interaction_radius", s.InteractionRadius)
	positive("simulation.grid_cell_size", s.GridCellSize)

	d := c.Discretization
	if !d.MergePolicy.Valid() {
		errs = append(errs, fmt.Errorf("invalid discretization.merge_policy: %q (valid: defer, once, cascade)", d.MergePolicy))
	}
	if d.MergePolicy == constants.MergeCascade && d.MaxMergeCascade < 1 {
		errs = append(errs, fmt.Errorf("discretization.max_merge_cascade must be at least 1 for cascade, got %d", d.MaxMergeCascade))
	}
	nonNegative("discretization.max_retraction_merges", float64(d.MaxRetractionMerges))

	g := c.Growth
	nonNegative("growth.somas", float64(g.Somas))
	nonNegative("growth.neurites_per_soma", float64(g.NeuritesPerSoma))
	positive("growth.soma_diameter", g.SomaDiameter)
	positive("growth.neurite_diameter", g.NeuriteDiameter)
	nonNegative("growth.elongation_speed", g.ElongationSpeed)
	probability("growth.persistence", g.Persistence)
	nonNegative("growth.jitter", g.Jitter)
	probability("growth.bifurcation_probability", g.BifurcationProbability)
	probability("growth.branch_probability", g.BranchProbability)
	probability("growth.retraction_probability", g.RetractionProbability)
	nonNegative("growth.retraction_speed", g.RetractionSpeed)
	nonNegative("growth.min_diameter", g.MinDiameter)
	nonNegative("growth.max_branch_order", float64(g.MaxBranchOrder))

	nonNegative("store.snapshot_interval", float64(c.Store.SnapshotInterval))

	if !logging.ValidLevel(c.Logging.Level) {
		errs = append(errs, fmt.Errorf("invalid log level: %s (valid: warn, info, debug, trace, or empty for default)", c.Logging.Level))
	}

	return errors.Join(errs...)
}

// WorkerCount resolves the configured worker count.
func (c *Config) WorkerCount() int {
	if c.Simulation.Workers > 0 {
		return c.Simulation.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Params maps the configuration onto the engine parameters.
func (c *Config) Params() neurite.Params {
	return neurite.Params{
		DefaultActualLength:   c.Neurite.DefaultActualLength,
		DefaultDensity:        c.Neurite.DefaultDensity,
		DefaultDiameter:       c.Neurite.DefaultDiameter,
		DefaultSpringConstant: c.Neurite.DefaultSpringConstant,
		DefaultAdherence:      c.Neurite.DefaultAdherence,
		DefaultTension:        c.Neurite.DefaultTension,
		MinLength:             c.Neurite.MinLength,
		MaxLength:             c.Neurite.MaxLength,
		MinBifurcationLength:  c.Neurite.MinBifurcationLength,
		TimeStep:              c.Simulation.TimeStep,
		MaxDisplacement:       c.Simulation.MaxDisplacement,
		MergePolicy:           c.Discretization.MergePolicy,
		MaxMergeCascade:       c.Discretization.MaxMergeCascade,
		MaxRetractionMerges:   c.Discretization.MaxRetractionMerges,
	}
}

// applyEnvOverrides overlays NEURITE_* environment variables. Unset
// variables keep the current values.
func applyEnvOverrides(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
