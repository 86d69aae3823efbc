package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/dictaflow/internal/awscred"
)

func profilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List AWS credential profiles available for the signing provider",
		Run: func(cmd *cobra.Command, args []string) {
			resolver := awscred.NewResolver()
			names, err := resolver.ListProfiles()
			if err != nil {
				fatalf("list profiles: %s", err)
			}
			if len(names) == 0 {
				fmt.Println("No AWS credential profiles found.")
				return
			}
			for _, name := range names {
				creds, err := resolver.GetCredentials(name)
				switch {
				case err != nil:
					fmt.Printf("%-24s (unusable: %s)\n", name, err)
				case creds.Region != "":
					fmt.Printf("%-24s region=%s\n", name, creds.Region)
				default:
					fmt.Println(name)
				}
			}
		},
	}
}
