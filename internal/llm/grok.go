package llm

import (
	"context"
	"net/http"

	"majin/pkg/types"
)

// DefaultGrokURL is the xAI chat completions endpoint.
const DefaultGrokURL = "https://api.x.ai/v1/chat/completions"

var _ Provider = (*GrokProvider)(nil)

// GrokProvider calls xAI's OpenAI-compatible REST endpoint. Besides
// choices[0].message.content it accepts a top-level "completion" field.
type GrokProvider struct {
	c *compatClient
}

// NewGrok returns the Grok adapter. url overrides the full endpoint.
func NewGrok(hc *http.Client, url string) *GrokProvider {
	if url == "" {
		url = DefaultGrokURL
	}
	c := newCompatClient(hc, url, "Grok", "Failed to parse error response from Grok API")
	c.completionField = true
	return &GrokProvider{c: c}
}

func (p *GrokProvider) Name() string { return Grok }

// Generate implements Provider.
func (p *GrokProvider) Generate(ctx context.Context, cfg types.ModelConfig, prompt string) (string, error) {
	return p.c.generate(ctx, cfg, prompt)
}
