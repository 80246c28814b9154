package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nvandessel/neurite/internal/config"
	"github.com/nvandessel/neurite/internal/logging"
	"github.com/nvandessel/neurite/internal/simulation"
	"github.com/nvandessel/neurite/internal/store"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a growth simulation",
		Long: `Seed the configured somas and grow them for a number of steps.

Per-step statistics and morphology snapshots go to the run history
database when store.path or --db is set, otherwise they are kept in memory
and only the summary is printed. Ctrl-C stops the run after the current
step and records it as cancelled.

Examples:
  neurite run                          # Defaults, 500 steps
  neurite run --steps 1000 --seed 7    # Longer run, fixed seed
  neurite run --config sim.yaml --db runs.db
  neurite run --log-level debug        # Also write .neurite/events.jsonl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := applyRunFlags(cmd, cfg); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			return runSimulation(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, jsonOut)
		},
	}

	cmd.Flags().Int("steps", 0, "Number of steps (default simulation.steps)")
	cmd.Flags().Uint64("seed", 0, "Random seed (default simulation.seed)")
	cmd.Flags().Int("workers", 0, "Force computation workers (default simulation.workers)")
	cmd.Flags().String("log-level", "", "Log level: warn, info, debug or trace")

	return cmd
}

// applyRunFlags overlays the flags the user set on top of the loaded config.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("steps") {
		steps, _ := flags.GetInt("steps")
		if steps <= 0 {
			return fmt.Errorf("--steps must be positive, got %d", steps)
		}
		cfg.Simulation.Steps = steps
	}
	if flags.Changed("seed") {
		cfg.Simulation.Seed, _ = flags.GetUint64("seed")
	}
	if flags.Changed("workers") {
		cfg.Simulation.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level, _ = flags.GetString("log-level")
	}
	return nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	notifySignals(sigCh)

	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigCh)
		cancel()
	}
}

// runSummary is the --json output of the run command.
type runSummary struct {
	RunID    string          `json:"run_id"`
	Status   store.RunStatus `json:"status"`
	Steps    int             `json:"steps"`
	Final    store.StepStats `json:"final"`
	Elapsed  string          `json:"elapsed"`
	Database string          `json:"database,omitempty"`
	Error    string          `json:"error,omitempty"`
}

func runSimulation(ctx context.Context, out, errOut io.Writer, cfg *config.Config, jsonOut bool) error {
	logger := logging.NewLogger(cfg.Logging.Level, errOut)

	var recorder store.Recorder = store.NewMemoryRecorder()
	if cfg.Store.Path != "" {
		sqlite, err := store.NewSQLiteRecorder(cfg.Store.Path)
		if err != nil {
			return fmt.Errorf("failed to open run history: %w", err)
		}
		defer sqlite.Close()
		recorder = sqlite
	}

	sched, err := simulation.New(cfg,
		simulation.WithRecorder(recorder),
		simulation.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	defer sched.Close()

	if err := sched.Seed(); err != nil {
		return fmt.Errorf("seeding: %w", err)
	}

	start := time.Now()
	res, runErr := sched.Run(ctx, cfg.Simulation.Steps)
	elapsed := time.Since(start).Round(time.Millisecond)

	if jsonOut {
		summary := runSummary{
			RunID:    res.RunID,
			Status:   res.Status,
			Steps:    res.Steps,
			Final:    res.Final,
			Elapsed:  elapsed.String(),
			Database: cfg.Store.Path,
		}
		if runErr != nil {
			summary.Error = runErr.Error()
		}
		if err := writeJSON(out, summary); err != nil {
			return err
		}
	} else {
		printRunSummary(out, res, elapsed, cfg.Store.Path)
	}

	switch {
	case runErr != nil:
		return fmt.Errorf("run %s %s: %w", res.RunID, res.Status, runErr)
	case res.Status == store.StatusCancelled:
		return fmt.Errorf("run %s cancelled after %d steps", res.RunID, res.Steps)
	}
	return nil
}

func printRunSummary(w io.Writer, res simulation.Result, elapsed time.Duration, dbPath string) {
	f := res.Final
	fmt.Fprintf(w, "Run %s %s after %s steps in %s\n",
		res.RunID, res.Status, humanize.Comma(int64(res.Steps)), elapsed)
	fmt.Fprintf(w, "  segments:           %s\n", humanize.Comma(int64(f.Segments)))
	fmt.Fprintf(w, "  terminals:          %s\n", humanize.Comma(int64(f.Terminals)))
	fmt.Fprintf(w, "  bifurcation points: %s\n", humanize.Comma(int64(f.BifurcationPoints)))
	fmt.Fprintf(w, "  max branch order:   %d\n", f.MaxBranchOrder)
	fmt.Fprintf(w, "  total length:       %s\n", humanize.CommafWithDigits(f.TotalLength, 1))
	fmt.Fprintf(w, "  mean tension:       %.4f\n", f.MeanTension)
	if dbPath != "" {
		fmt.Fprintf(w, "History written to %s\n", dbPath)
	}
}
