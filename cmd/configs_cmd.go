package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/dictaflow/internal/provider"
	"github.com/nextlevelbuilder/dictaflow/internal/validation"
)

func configsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "configs",
		Short: "List and validate provider configurations",
	}
	cmd.AddCommand(configsListCmd())
	cmd.AddCommand(configsValidateCmd())
	cmd.AddCommand(configsUseCmd())
	return cmd
}

func configsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configurations with their current validity",
		Run: func(cmd *cobra.Command, args []string) {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				fatalf("startup: %s", err)
			}
			defer rt.close()

			settings := rt.settings.Get()
			if len(settings.Configurations) == 0 {
				fmt.Println("No configurations.")
				return
			}

			for _, cfg := range settings.Configurations {
				marker := " "
				if cfg.ID == settings.ActiveConfigID {
					marker = "*"
				}
				validity := provider.CheckConfiguration(cmd.Context(), cfg, rt.secrets, rt.resolver)
				state := "valid"
				if !validity.Valid {
					state = "invalid: " + validity.Reason
				}
				fmt.Printf("%s %-20s %-12s %-40s %s\n", marker, cfg.ID, cfg.Provider, cfg.Model, state)
			}
		},
	}
}

func configsValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <id>",
		Short: "Probe a configuration against its provider",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				fatalf("startup: %s", err)
			}
			defer rt.close()
			cfg, ok := rt.settings.ConfigurationByID(args[0])
			if !ok {
				fatalf("unknown configuration %q", args[0])
			}

			if verr := rt.validator.ValidateOnce(cmd.Context(), cfg); verr != nil {
				fmt.Fprintf(os.Stderr, "FAILED: %s\n%s\n", verr, verr.Recovery())
				os.Exit(1)
			}
			fmt.Printf("Configuration %q is reachable.\n", cfg.Name)
		},
	}
}

func configsUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <id>",
		Short: "Validate a configuration and make it active",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				fatalf("startup: %s", err)
			}
			defer rt.close()

			rt.validator.SwitchTo(cmd.Context(), args[0])
			status := waitForOutcome(rt.validator)
			if status.Err != nil {
				fmt.Fprintf(os.Stderr, "FAILED: %s\n%s\n", status.Err, status.Err.Recovery())
				os.Exit(1)
			}
			fmt.Printf("Configuration %q is now active.\n", args[0])
		},
	}
}

// waitForOutcome polls the validator until the in-flight attempt settles.
func waitForOutcome(v *validation.Service) validation.Status {
	for {
		status := v.Status()
		if status.State == validation.StateIdle {
			return status
		}
		time.Sleep(50 * time.Millisecond)
	}
}
