package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"majin/internal/httpapi"
	"majin/pkg/types"
)

func newModelsCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Manage model configurations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("models requires a subcommand: list|add|update|rm")
		},
	}
	cmd.AddCommand(newModelsListCmd(g), newModelsAddCmd(g), newModelsUpdateCmd(g), newModelsRmCmd(g))
	return cmd
}

func newModelsListCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List every model config with masked keys",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := g.openApp(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())
			models, err := a.ListModels(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tPROVIDER\tTYPE\tACTIVE\tAPI KEY")
			for _, m := range models {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%s\n", m.ID, m.Name, m.Provider, m.ContentType, m.Active, httpapi.MaskKey(m.APIKey))
			}
			return tw.Flush()
		},
	}
}

// patchFlags registers the model fields as flags and returns a builder that
// only includes the flags the user set.
func patchFlags(cmd *cobra.Command) func() types.ModelPatch {
	var (
		name, provider, apiKey, contentType, description string
		active                                           bool
	)
	f := cmd.Flags()
	f.StringVar(&name, "name", "", "Model name used by clients")
	f.StringVar(&provider, "provider", "", "Provider tag: openai|gemini|deepseek|anthropic|grok")
	f.StringVar(&apiKey, "api-key", "", "Provider API key")
	f.StringVar(&contentType, "content-type", "", "Content type: text|image|video|audio|3d")
	f.StringVar(&description, "description", "", "Free-form description")
	f.BoolVar(&active, "active", true, "Whether the model can be selected")
	return func() types.ModelPatch {
		var p types.ModelPatch
		if f.Changed("name") {
			p.Name = &name
		}
		if f.Changed("provider") {
			p.Provider = &provider
		}
		if f.Changed("api-key") {
			p.APIKey = &apiKey
		}
		if f.Changed("content-type") {
			ct := types.ContentType(contentType)
			p.ContentType = &ct
		}
		if f.Changed("description") {
			p.Description = &description
		}
		if f.Changed("active") {
			p.Active = &active
		}
		return p
	}
}

func newModelsAddCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Add a model config",
		Example: "  majin models add --name gpt-4o --provider openai --api-key $OPENAI_API_KEY --content-type text",
		Args:    cobra.NoArgs,
	}
	build := patchFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		patch := build()
		if patch.ContentType == nil {
			ct := types.ContentText
			patch.ContentType = &ct
		}
		a, _, err := g.openApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer a.Close(cmd.Context())
		id, err := a.CreateModel(cmd.Context(), patch)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	}
	return cmd
}

func newModelsUpdateCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "update <id>",
		Short:   "Update fields of a model config",
		Example: "  majin models update 665f1c2e9b1d4a0012345678 --active=false",
		Args:    cobra.ExactArgs(1),
	}
	build := patchFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		a, _, err := g.openApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer a.Close(cmd.Context())
		if err := a.UpdateModel(cmd.Context(), args[0], build()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Model updated successfully")
		return nil
	}
	return cmd
}

func newModelsRmCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a model config",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := g.openApp(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())
			if err := a.DeleteModel(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Model deleted successfully")
			return nil
		},
	}
}
