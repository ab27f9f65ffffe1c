package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"majin/internal/app"
	"majin/internal/config"
)

// globals are the persistent flags shared by every subcommand.
type globals struct {
	configPath string
	logLevel   string
	logFormat  string
	registry   string
	mongoURI   string
	seed       string
}

func buildRootCmd(g *globals) *cobra.Command {
	root := &cobra.Command{
		Use:           "majin",
		Short:         "Multi-provider text generation gateway",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "Config file (.yaml, .yml, .json, .toml)")
	pf.StringVar(&g.logLevel, "log-level", "", "Log level: debug|info|warn|error|off (defaults MAJIN_LOG_LEVEL or info)")
	pf.StringVar(&g.logFormat, "log-format", "json", "Log format: json|console")
	pf.StringVar(&g.registry, "registry", "", "Model registry backend: mongo|memory")
	pf.StringVar(&g.mongoURI, "mongo-uri", "", "MongoDB connection string")
	pf.StringVar(&g.seed, "seed", "", "YAML or JSON file of models for the memory registry")

	serve := newServeCmd(g)
	root.AddCommand(serve, newModelsCmd(g), newGenerateCmd(g))
	// Bare `majin` serves.
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())

	completionCmd := &cobra.Command{Use: "completion", Short: "Generate the autocompletion script for the specified shell"}
	completionCmd.AddCommand(&cobra.Command{Use: "bash", Short: "Bash completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenBashCompletion(cmd.OutOrStdout()) }})
	completionCmd.AddCommand(&cobra.Command{Use: "zsh", Short: "Zsh completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenZshCompletion(cmd.OutOrStdout()) }})
	completionCmd.AddCommand(&cobra.Command{Use: "fish", Short: "Fish completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenFishCompletion(cmd.OutOrStdout(), true) }})
	root.AddCommand(completionCmd)

	return root
}

// resolve builds the effective configuration: defaults, file, environment,
// then any persistent flag the user set.
func (g *globals) resolve() (config.Config, error) {
	cfg, err := config.Resolve(g.configPath)
	if err != nil {
		return cfg, err
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	if g.registry != "" {
		cfg.Registry = g.registry
	}
	if g.mongoURI != "" {
		cfg.Mongo.URI = g.mongoURI
	}
	if g.seed != "" {
		cfg.SeedPath = g.seed
	}
	return cfg, nil
}

// logger builds the root logger for cfg.LogLevel.
func (g *globals) logger(w io.Writer, level string) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	if strings.EqualFold(g.logFormat, "console") {
		w = zerolog.ConsoleWriter{Out: w}
	}
	lvl := zerolog.InfoLevel
	switch strings.ToLower(level) {
	case "off", "disabled":
		lvl = zerolog.Disabled
	case "":
	default:
		if l, err := zerolog.ParseLevel(strings.ToLower(level)); err == nil {
			lvl = l
		}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// openApp builds an App for a one-shot command. Settings stay in memory and
// dispatch metrics are not registered.
func (g *globals) openApp(ctx context.Context, cmd *cobra.Command) (*app.App, config.Config, error) {
	cfg, err := g.resolve()
	if err != nil {
		return nil, cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, cfg, err
	}
	log := g.logger(cmd.ErrOrStderr(), cfg.LogLevel)
	a, err := app.Build(ctx, cfg, log, app.BuildOptions{SkipSettings: true})
	return a, cfg, err
}
