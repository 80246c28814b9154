package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nvandessel/neurite/internal/store"
)

// openHistory opens the run history database of the resolved config. It
// refuses to create a new database.
func openHistory(cmd *cobra.Command) (*store.SQLiteRecorder, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if cfg.Store.Path == "" {
		return nil, errors.New("no run history database: set store.path or pass --db")
	}
	if _, err := os.Stat(cfg.Store.Path); err != nil {
		return nil, fmt.Errorf("run history database: %w", err)
	}
	return store.NewSQLiteRecorder(cfg.Store.Path)
}

func newRunsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs",
		Long: `List the runs recorded in the history database, newest first.

Examples:
  neurite runs --db runs.db
  neurite runs --db runs.db --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			h, err := openHistory(cmd)
			if err != nil {
				return err
			}
			defer h.Close()

			runs, err := h.ListRuns(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				if runs == nil {
					runs = []store.Run{}
				}
				return writeJSON(out, map[string]any{"runs": runs, "count": len(runs)})
			}

			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded.")
				return nil
			}
			fmt.Fprintf(out, "%-36s  %-9s  %8s  %8s  %s\n", "RUN", "STATUS", "STEPS", "SEED", "STARTED")
			for _, r := range runs {
				fmt.Fprintf(out, "%-36s  %-9s  %8s  %8d  %s\n",
					r.ID, r.Status,
					fmt.Sprintf("%d/%d", r.Recorded, r.Steps),
					r.Seed, humanize.Time(r.StartedAt))
			}
			return nil
		},
	}
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <run-id>",
		Short: "Show per-step statistics of a run",
		Long: `Print the statistics recorded after each step of a run.

Examples:
  neurite history 3f0c... --db runs.db
  neurite history 3f0c... --db runs.db --every 10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			every, _ := cmd.Flags().GetInt("every")
			if every <= 0 {
				every = 1
			}

			h, err := openHistory(cmd)
			if err != nil {
				return err
			}
			defer h.Close()

			steps, err := h.StepHistory(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			var shown []store.StepStats
			for i, st := range steps {
				if i%every == 0 || i == len(steps)-1 {
					shown = append(shown, st)
				}
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				if shown == nil {
					shown = []store.StepStats{}
				}
				return writeJSON(out, map[string]any{"run_id": args[0], "steps": shown})
			}

			fmt.Fprintf(out, "%6s  %8s  %9s  %6s  %5s  %12s  %10s\n",
				"STEP", "SEGMENTS", "TERMINALS", "BIFURC", "ORDER", "LENGTH", "TENSION")
			for _, st := range shown {
				fmt.Fprintf(out, "%6d  %8s  %9s  %6d  %5d  %12s  %10.4f\n",
					st.Step,
					humanize.Comma(int64(st.Segments)),
					humanize.Comma(int64(st.Terminals)),
					st.BifurcationPoints,
					st.MaxBranchOrder,
					humanize.CommafWithDigits(st.TotalLength, 1),
					st.MeanTension)
			}
			return nil
		},
	}

	cmd.Flags().Int("every", 1, "Show every Nth step (the last step is always shown)")

	return cmd
}

func newMorphologyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "morphology <run-id>",
		Short: "Dump a recorded morphology snapshot as JSON",
		Long: `Print the segments recorded for a run at one step as JSON.

Without --step the latest snapshot is printed, which is the final state
of the run.

Examples:
  neurite morphology 3f0c... --db runs.db
  neurite morphology 3f0c... --db runs.db --step 100`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			step, _ := cmd.Flags().GetInt("step")

			h, err := openHistory(cmd)
			if err != nil {
				return err
			}
			defer h.Close()

			segments, at, err := h.Morphology(cmd.Context(), args[0], step)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"run_id":   args[0],
				"step":     at,
				"segments": segments,
			})
		},
	}

	cmd.Flags().Int("step", -1, "Snapshot step (negative for the latest)")

	return cmd
}
