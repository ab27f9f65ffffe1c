package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"majin/internal/llm"
	"majin/internal/registry"
)

// Dispatcher routes a generation request to the provider named by the stored
// model configuration.
type Dispatcher struct {
	registry  Finder
	providers *llm.Set
	log       zerolog.Logger
	metrics   *Metrics
}

// Dispatch resolves modelName to an active config and returns the provider's
// completion text unmodified. Every failure is an *Error.
func (d *Dispatcher) Dispatch(ctx context.Context, modelName, prompt string) (text string, err error) {
	ctx, span := startSpan(ctx, "dispatch", attribute.String("majin.model", modelName))
	var provider string
	var upstream time.Duration
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = string(KindOf(err))
		}
		d.metrics.observe(provider, outcome, upstream)
		endSpan(span, err)
	}()

	if modelName == "" || prompt == "" {
		return "", &Error{Kind: KindInvalidRequest, Message: "modelName and prompt are required"}
	}

	cfg, err := d.registry.FindActive(ctx, modelName)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return "", &Error{Kind: KindNotFound, Message: "model not found: " + modelName, Err: err}
		}
		d.log.Error().Err(err).Str("model", modelName).Msg("registry lookup failed")
		return "", &Error{Kind: KindInternal, Message: "failed to look up model", Err: err}
	}

	p, known := d.providers.Lookup(cfg.Provider)
	if cfg.APIKey == "" {
		fb, ok := p.(llm.CredentialFallback)
		if !known || !ok || fb.FallbackKey() == "" {
			return "", &Error{Kind: KindMissingCredential, Message: "API key is missing for model: " + modelName}
		}
		cfg.APIKey = fb.FallbackKey()
	}
	if !known {
		return "", &Error{Kind: KindUnsupportedProvider, Message: fmt.Sprintf("unsupported provider: %s", cfg.Provider)}
	}
	provider = p.Name()
	span.SetAttributes(attribute.String("majin.provider", provider))

	done := d.metrics.begin(provider)
	start := time.Now()
	text, err = p.Generate(ctx, cfg, prompt)
	upstream = time.Since(start)
	done()
	if err != nil {
		msg := scrub(err.Error(), cfg.APIKey)
		d.log.Warn().Str("model", modelName).Str("provider", provider).Dur("elapsed", upstream).Str("error", msg).Msg("provider call failed")
		return "", &Error{Kind: KindProviderError, Message: msg, Err: err}
	}
	if text == "" {
		return "", &Error{Kind: KindEmptyCompletion, Message: "no completion returned by " + provider}
	}
	d.log.Debug().Str("model", modelName).Str("provider", provider).Dur("elapsed", upstream).Int("chars", len(text)).Msg("dispatch ok")
	return text, nil
}

// scrub removes every occurrence of key from msg.
func scrub(msg, key string) string {
	if key == "" {
		return msg
	}
	return strings.ReplaceAll(msg, key, "[redacted]")
}
