package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"majin/internal/config"
	"majin/internal/dispatch"
	"majin/internal/llm"
	"majin/internal/registry"
	"majin/internal/results"
	"majin/internal/settings"
	"majin/pkg/types"
)

// BuildOptions tune Build beyond what Config carries.
type BuildOptions struct {
	// Registerer receives dispatch metrics. Nil skips registration.
	Registerer prometheus.Registerer
	// HTTPClient overrides the client shared by the provider adapters.
	HTTPClient *http.Client
	// SkipSettings leaves settings in memory instead of opening the file.
	SkipSettings bool
}

// Build wires an App from cfg: it connects to MongoDB (or seeds the memory
// registry), opens the settings file and builds the dispatcher. Call Close
// on every exit path.
func Build(ctx context.Context, cfg config.Config, log zerolog.Logger, bo BuildOptions) (*App, error) {
	a := &App{}
	fail := func(err error) (*App, error) {
		_ = a.Close(context.Background())
		return nil, err
	}

	var (
		reg  registry.Store
		hist results.Store
	)
	switch cfg.Registry {
	case config.RegistryMemory:
		var seed []types.ModelConfig
		if cfg.SeedPath != "" {
			var err error
			if seed, err = registry.LoadSeed(cfg.SeedPath); err != nil {
				return fail(err)
			}
		}
		mem, err := registry.NewMemory(seed...)
		if err != nil {
			return fail(err)
		}
		reg, hist = mem, results.NewMemory()
	default:
		client, err := connectMongo(ctx, cfg.Mongo)
		if err != nil {
			return fail(err)
		}
		a.closers = append(a.closers, client.Disconnect)
		m, err := registry.NewMongo(ctx, client, registry.MongoOptions{
			Database:   cfg.Mongo.Database,
			Collection: cfg.Mongo.ModelsCollection,
			OpTimeout:  cfg.Mongo.OpTimeout.Std(),
		})
		if err != nil {
			return fail(err)
		}
		reg = m
		hist = results.NewMongo(client, cfg.Mongo.Database, cfg.Mongo.ResultsCollection, cfg.Mongo.OpTimeout.Std())
	}

	var st settings.Store = settings.NewMemory()
	if !bo.SkipSettings && cfg.SettingsPath != "" {
		b, err := settings.OpenBolt(cfg.SettingsPath)
		if err != nil {
			return fail(err)
		}
		a.closers = append(a.closers, func(context.Context) error { return b.Close() })
		st = b
	}

	var metrics *dispatch.Metrics
	if bo.Registerer != nil {
		metrics = dispatch.NewMetrics(bo.Registerer)
	}
	dlog := log.With().Str("component", "dispatch").Logger()
	d := dispatch.New(dispatch.Config{
		Registry:  reg,
		Providers: llm.NewSet(ProviderOptions(cfg, bo.HTTPClient)),
		Logger:    &dlog,
		Metrics:   metrics,
	})

	closers := a.closers
	*a = *New(Options{
		Registry:          reg,
		Results:           hist,
		Settings:          st,
		Dispatcher:        d,
		Logger:            log,
		MaxModels:         cfg.MaxModels,
		FanoutConcurrency: cfg.FanoutConcurrency,
		MaxPromptChars:    cfg.MaxPromptChars,
	})
	a.closers = closers
	return a, nil
}

// ProviderOptions maps the provider section of cfg onto adapter options.
func ProviderOptions(cfg config.Config, hc *http.Client) llm.Options {
	p := cfg.Providers
	return llm.Options{
		HTTPClient:         hc,
		Timeout:            cfg.RequestTimeout.Std(),
		OpenAIBaseURL:      p.OpenAI.BaseURL,
		GeminiBaseURL:      p.Gemini.BaseURL,
		DeepSeekBaseURL:    p.DeepSeek.BaseURL,
		AnthropicBaseURL:   p.Anthropic.BaseURL,
		GrokBaseURL:        p.Grok.BaseURL,
		AnthropicMaxTokens: p.Anthropic.MaxTokens,
		GeminiFallbackKey:  p.Gemini.FallbackAPIKey,
	}
}

func connectMongo(ctx context.Context, mc config.MongoConfig) (*mongo.Client, error) {
	timeout := mc.OpTimeout.Std()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mc.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	return client, nil
}
