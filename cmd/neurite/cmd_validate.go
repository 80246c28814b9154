package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the simulation config",
		Long: `Load the config the run command would use and report every problem.

Examples:
  neurite validate                     # Defaults and ~/.neurite/config.yaml
  neurite validate --config sim.yaml   # A specific file
  neurite validate --show              # Print the effective config`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			show, _ := cmd.Flags().GetBool("show")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			verr := cfg.Validate()

			out := cmd.OutOrStdout()
			if jsonOut {
				result := map[string]any{"valid": verr == nil}
				if verr != nil {
					result["error"] = verr.Error()
				}
				if show {
					result["config"] = cfg
				}
				if err := writeJSON(out, result); err != nil {
					return err
				}
			} else {
				if show {
					data, err := yaml.Marshal(cfg)
					if err != nil {
						return fmt.Errorf("failed to serialize config: %w", err)
					}
					fmt.Fprint(out, string(data))
				}
				if verr == nil {
					fmt.Fprintln(out, "Config is valid")
				}
			}

			if verr != nil {
				return fmt.Errorf("invalid config: %w", verr)
			}
			return nil
		},
	}

	cmd.Flags().Bool("show", false, "Print the effective config")

	return cmd
}
