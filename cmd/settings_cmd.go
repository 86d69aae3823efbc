package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/dictaflow/internal/config"
)

func settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "View settings",
	}
	cmd.AddCommand(settingsPathCmd())
	cmd.AddCommand(settingsShowCmd())
	return cmd
}

func settingsPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the settings file path",
		Run: func(cmd *cobra.Command, args []string) {
			path, err := config.DefaultPath()
			if err != nil {
				fatalf("%s", err)
			}
			fmt.Println(path)
		},
	}
}

func settingsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current settings (secrets redacted)",
		Run: func(cmd *cobra.Command, args []string) {
			path, err := config.DefaultPath()
			if err != nil {
				fatalf("%s", err)
			}
			settings, err := config.Load(path)
			if err != nil {
				fatalf("load settings: %s", err)
			}

			if settings.LegacyAPIKey != "" {
				settings.LegacyAPIKey = "[REDACTED]"
			}
			data, _ := json.MarshalIndent(settings, "", "  ")
			fmt.Println(string(data))
		},
	}
}
