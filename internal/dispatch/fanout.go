package dispatch

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome of one dispatch within a fan-out.
type Result struct {
	ModelName string
	Text      string
	Err       error
}

// Generator is anything that can serve a single dispatch. *Dispatcher
// implements it.
type Generator interface {
	Dispatch(ctx context.Context, modelName, prompt string) (string, error)
}

// FanOut dispatches prompt to every name with at most limit calls in flight
// and returns one Result per name in input order. A failing dispatch never
// cancels the others. limit <= 0 runs all names at once.
func FanOut(ctx context.Context, g Generator, prompt string, names []string, limit int) []Result {
	ctx, span := startSpan(ctx, "fanout", attribute.Int("majin.models", len(names)))
	defer span.End()

	results := make([]Result, len(names))
	if len(names) == 0 {
		return results
	}
	if limit <= 0 || limit > len(names) {
		limit = len(names)
	}

	// Errors travel in results; the group itself never fails.
	var eg errgroup.Group
	eg.SetLimit(limit)
	for i, name := range names {
		eg.Go(func() error {
			text, err := g.Dispatch(ctx, name, prompt)
			results[i] = Result{ModelName: name, Text: text, Err: err}
			return nil
		})
	}
	_ = eg.Wait()
	return results
}
