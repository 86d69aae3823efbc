package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/dictaflow/internal/enhance"
)

func enhanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enhance [text]",
		Short: "Run text through the AI enhancement pipeline",
		Long:  "Enhances the given text (or stdin when no argument is passed) using the active provider configuration.",
		Run: func(cmd *cobra.Command, args []string) {
			text := strings.Join(args, " ")
			if text == "" {
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					fatalf("read stdin: %s", err)
				}
				text = string(data)
			}

			rt, err := newRuntime(cmd.Context())
			if err != nil {
				fatalf("startup: %s", err)
			}
			defer rt.close()

			result, err := rt.pipeline.Enhance(cmd.Context(), text)
			if err != nil {
				if errors.Is(err, enhance.ErrNotConfigured) {
					fatalf("No provider configured. Add a configuration and run 'dictaflow configs use <id>'.")
				}
				fatalf("enhancement failed: %s", err)
			}

			fmt.Println(result.Text)
			fmt.Fprintf(os.Stderr, "(%s via prompt %q)\n", result.Elapsed.Round(time.Millisecond), result.PromptName)
		},
	}
}
