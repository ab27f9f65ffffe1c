package dispatch

import (
	"context"

	"github.com/rs/zerolog"

	"majin/internal/llm"
	"majin/pkg/types"
)

// Finder is the read side of the model registry the dispatcher depends on.
// FindActive returns registry.ErrNotFound when no active config has name.
type Finder interface {
	FindActive(ctx context.Context, name string) (types.ModelConfig, error)
}

// Config encapsulates all collaborators of a Dispatcher.
type Config struct {
	Registry  Finder
	Providers *llm.Set
	// Logger defaults to a disabled logger.
	Logger *zerolog.Logger
	// Metrics is optional; nil disables dispatch metrics.
	Metrics *Metrics
}

// New constructs a Dispatcher from cfg.
func New(cfg Config) *Dispatcher {
	d := &Dispatcher{
		registry:  cfg.Registry,
		providers: cfg.Providers,
		metrics:   cfg.Metrics,
	}
	if cfg.Logger != nil {
		d.log = *cfg.Logger
	} else {
		d.log = zerolog.Nop()
	}
	if d.providers == nil {
		d.providers = llm.NewSetOf()
	}
	return d
}
