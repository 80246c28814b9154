package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nvandessel/neurite/internal/config"
)

var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "neurite",
		Short: "Mechanical neurite growth simulator",
		Long: `neurite grows neuronal trees made of spring-connected cylinder
segments and records the run history to SQLite.

Each step computes spring and contact forces, moves point masses, lets the
growth cones elongate, branch or retract, and re-discretizes segments that
became too long or too short.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.neurite/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "Run history database (overrides store.path)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newValidateCmd(),
		newRunsCmd(),
		newHistoryCmd(),
		newMorphologyCmd(),
	)
	return rootCmd
}

// loadConfig resolves the config for a command: defaults, the --config file
// or ~/.neurite/config.yaml, NEURITE_* variables, then --db.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.Store.Path = db
	}
	return cfg, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
