package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"majin/pkg/types"
)

func newGenerateCmd(g *globals) *cobra.Command {
	var models []string
	cmd := &cobra.Command{
		Use:     "generate -m NAME [-m NAME...] PROMPT",
		Short:   "Send a prompt to one or more models and print the completions",
		Example: "  majin generate -m gpt-4o -m gemini-1.5-pro \"Write a haiku about the ocean\"",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(models) == 0 {
				return fmt.Errorf("at least one --model is required")
			}
			a, _, err := g.openApp(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			resp, err := a.Generate(cmd.Context(), types.GenerateRequest{
				Prompt: strings.Join(args, " "),
				Models: models,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if resp.Truncated {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: prompt truncated")
			}
			failed := 0
			for _, r := range resp.Results {
				fmt.Fprintf(out, "== %s ==\n", r.ModelName)
				if r.Error != "" {
					failed++
					fmt.Fprintf(out, "error (%s): %s\n\n", r.Kind, r.Error)
					continue
				}
				fmt.Fprintf(out, "%s\n\n", r.Completion)
			}
			if failed == len(resp.Results) {
				return fmt.Errorf("all %d models failed", failed)
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&models, "model", "m", nil, "Model name (repeatable)")
	return cmd
}
