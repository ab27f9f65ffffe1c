package llm

import (
	"context"
	"net/http"

	"majin/pkg/types"
)

// DefaultDeepSeekURL is the DeepSeek chat completions endpoint.
const DefaultDeepSeekURL = "https://api.deepseek.com/chat/completions"

var _ Provider = (*DeepSeekProvider)(nil)

// DeepSeekProvider calls DeepSeek's OpenAI-compatible REST endpoint.
type DeepSeekProvider struct {
	c *compatClient
}

// NewDeepSeek returns the DeepSeek adapter. url overrides the full endpoint.
func NewDeepSeek(hc *http.Client, url string) *DeepSeekProvider {
	if url == "" {
		url = DefaultDeepSeekURL
	}
	return &DeepSeekProvider{c: newCompatClient(hc, url, "DeepSeek", unknownError)}
}

func (p *DeepSeekProvider) Name() string { return DeepSeek }

// Generate implements Provider.
func (p *DeepSeekProvider) Generate(ctx context.Context, cfg types.ModelConfig, prompt string) (string, error) {
	return p.c.generate(ctx, cfg, prompt)
}
