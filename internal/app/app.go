// Package app holds the application state shared by the HTTP server and the
// CLI: the stores, the dispatcher and the request limits.
package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"majin/internal/dispatch"
	"majin/internal/registry"
	"majin/internal/results"
	"majin/internal/settings"
	"majin/pkg/types"
)

// Defaults applied when corresponding Options fields are unset.
const (
	defaultMaxModels      = 5
	defaultMaxPromptChars = 20000
)

// Options configures an App.
type Options struct {
	Registry registry.Store
	// Results is optional; nil disables history.
	Results results.Store
	// Settings defaults to an in-memory store.
	Settings   settings.Store
	Dispatcher dispatch.Generator
	Logger     zerolog.Logger

	MaxModels         int
	FanoutConcurrency int
	MaxPromptChars    int
}

// App is the explicit application state. It is safe for concurrent use.
type App struct {
	registry   registry.Store
	results    results.Store
	settings   settings.Store
	dispatcher dispatch.Generator
	log        zerolog.Logger

	maxModels         int
	fanoutConcurrency int
	maxPromptChars    int

	closers []func(context.Context) error
}

// New constructs an App from opts.
func New(opts Options) *App {
	a := &App{
		registry:          opts.Registry,
		results:           opts.Results,
		settings:          opts.Settings,
		dispatcher:        opts.Dispatcher,
		log:               opts.Logger,
		maxModels:         opts.MaxModels,
		fanoutConcurrency: opts.FanoutConcurrency,
		maxPromptChars:    opts.MaxPromptChars,
	}
	if a.maxModels <= 0 {
		a.maxModels = defaultMaxModels
	}
	if a.maxPromptChars <= 0 {
		a.maxPromptChars = defaultMaxPromptChars
	}
	if a.settings == nil {
		a.settings = settings.NewMemory()
	}
	return a
}

// RequestError is a caller mistake detected before any dispatch.
type RequestError struct {
	Status int
	Msg    string
}

func (e *RequestError) Error() string   { return e.Msg }
func (e *RequestError) StatusCode() int { return e.Status }

func badRequest(format string, args ...any) error {
	return &RequestError{Status: http.StatusBadRequest, Msg: fmt.Sprintf(format, args...)}
}

// GenerateText performs a single dispatch.
func (a *App) GenerateText(ctx context.Context, req types.GenerateTextRequest) (types.GenerateTextResponse, error) {
	text, err := a.dispatcher.Dispatch(ctx, req.ModelName, req.Prompt)
	if err != nil {
		return types.GenerateTextResponse{}, err
	}
	return types.GenerateTextResponse{Completion: text}, nil
}

// Generate fans req.Prompt out to every requested model and records the batch.
// Per-model failures are reported in the results, never as the call's error.
func (a *App) Generate(ctx context.Context, req types.GenerateRequest) (types.GenerateResponse, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return types.GenerateResponse{}, badRequest("prompt is required")
	}
	if len(req.Models) == 0 {
		return types.GenerateResponse{}, badRequest("at least one model is required")
	}
	if len(req.Models) > a.maxModels {
		return types.GenerateResponse{}, badRequest("at most %d models can be selected, got %d", a.maxModels, len(req.Models))
	}
	ct := req.ContentType
	if ct == "" {
		ct = types.ContentText
	}
	if !ct.Valid() {
		return types.GenerateResponse{}, badRequest("unknown content type %q", ct)
	}
	if ct != types.ContentText {
		return types.GenerateResponse{}, &RequestError{Status: http.StatusNotImplemented, Msg: fmt.Sprintf("%s generation is not supported", ct)}
	}

	prompt, truncated := truncate(req.Prompt, a.maxPromptChars)
	out := dispatch.FanOut(ctx, a.dispatcher, prompt, req.Models, a.fanoutConcurrency)

	resp := types.GenerateResponse{
		ID:        uuid.NewString(),
		Results:   make([]types.ModelResult, len(out)),
		Truncated: truncated,
	}
	for i, r := range out {
		mr := types.ModelResult{ModelName: r.ModelName, Completion: r.Text}
		if r.Err != nil {
			mr.Error = r.Err.Error()
			mr.Kind = string(dispatch.KindOf(r.Err))
		}
		resp.Results[i] = mr
	}
	a.saveBatch(ctx, types.ResultBatch{
		ID:          resp.ID,
		Prompt:      prompt,
		ContentType: ct,
		CreatedAt:   time.Now().UTC(),
		Results:     resp.Results,
	})
	return resp, nil
}

// saveBatch records a finished run. Failures are logged only; the caller has
// its results either way.
func (a *App) saveBatch(ctx context.Context, b types.ResultBatch) {
	if a.results == nil {
		return
	}
	if _, err := a.results.Save(context.WithoutCancel(ctx), b); err != nil {
		a.log.Warn().Err(err).Str("batch", b.ID).Msg("save results failed")
	}
}

// truncate cuts s to at most max runes.
func truncate(s string, max int) (string, bool) {
	if utf8.RuneCountInString(s) <= max {
		return s, false
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i], true
		}
		n++
	}
	return s, false
}

// ListModels returns every stored model, keys included.
func (a *App) ListModels(ctx context.Context) ([]types.ModelConfig, error) {
	return a.registry.List(ctx)
}

// CreateModel stores a new model. Active defaults to true.
func (a *App) CreateModel(ctx context.Context, in types.ModelPatch) (string, error) {
	return a.registry.Insert(ctx, in.Apply(types.ModelConfig{Active: true}))
}

// UpdateModel applies a partial update to the model with id.
func (a *App) UpdateModel(ctx context.Context, id string, patch types.ModelPatch) error {
	if patch.Empty() {
		return fmt.Errorf("%w: no fields to update", registry.ErrInvalid)
	}
	return a.registry.Update(ctx, id, patch)
}

// DeleteModel removes the model with id.
func (a *App) DeleteModel(ctx context.Context, id string) error {
	return a.registry.Delete(ctx, id)
}

// ListResults returns recent batches, newest first.
func (a *App) ListResults(ctx context.Context, limit int) ([]types.ResultBatch, error) {
	if a.results == nil {
		return []types.ResultBatch{}, nil
	}
	return a.results.List(ctx, limit)
}

// SaveResults stores a batch sent by a client.
func (a *App) SaveResults(ctx context.Context, b types.ResultBatch) (string, error) {
	if a.results == nil {
		return "", &RequestError{Status: http.StatusNotImplemented, Msg: "result history is disabled"}
	}
	return a.results.Save(ctx, b)
}

func (a *App) GetSettings(ctx context.Context) (types.Settings, error) {
	return a.settings.Get(ctx)
}

func (a *App) UpdateSettings(ctx context.Context, s types.Settings) (types.Settings, error) {
	return a.settings.Update(ctx, s)
}

// Ready reports whether the registry answers.
func (a *App) Ready(ctx context.Context) bool {
	return a.registry.Ping(ctx) == nil
}

// Close releases resources acquired by Build, newest first.
func (a *App) Close(ctx context.Context) error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
