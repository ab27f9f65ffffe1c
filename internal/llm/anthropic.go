package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"majin/pkg/types"
)

const defaultAnthropicMaxTokens int64 = 1024

var _ Provider = (*AnthropicProvider)(nil)

// AnthropicProvider calls the Anthropic messages API through the official SDK.
type AnthropicProvider struct {
	httpClient *http.Client
	baseURL    string
	maxTokens  int64
}

// NewAnthropic returns the Anthropic adapter. maxTokens <= 0 uses 1024.
func NewAnthropic(hc *http.Client, baseURL string, maxTokens int64) *AnthropicProvider {
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}
	return &AnthropicProvider{httpClient: hc, baseURL: baseURL, maxTokens: maxTokens}
}

func (p *AnthropicProvider) Name() string { return Anthropic }

func (p *AnthropicProvider) client(apiKey string) anthropic.Client {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if p.httpClient != nil {
		opts = append(opts, option.WithHTTPClient(p.httpClient))
	}
	if p.baseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimSuffix(strings.TrimRight(p.baseURL, "/"), "/v1")))
	}
	return anthropic.NewClient(opts...)
}

// Generate implements Provider. Only a leading text block counts as a
// completion; any other first block yields an empty result.
func (p *AnthropicProvider) Generate(ctx context.Context, cfg types.ModelConfig, prompt string) (string, error) {
	c := p.client(cfg.APIKey)
	msg, err := c.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(cfg.Name),
		MaxTokens: p.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", &ProviderError{
				Provider:   "Anthropic",
				StatusCode: apiErr.StatusCode,
				Message:    anthropicMessage(apiErr),
				Err:        err,
			}
		}
		return "", transportError("Anthropic", err)
	}
	if msg == nil || len(msg.Content) == 0 {
		return "", nil
	}
	switch block := msg.Content[0].AsAny().(type) {
	case anthropic.TextBlock:
		return block.Text, nil
	default:
		return "", nil
	}
}

// anthropicMessage pulls error.message out of the raw error body, falling back
// to a generic message when the body is not the documented JSON envelope.
func anthropicMessage(e *anthropic.Error) string {
	if m, _ := jsonErrorMessage([]byte(e.RawJSON())); m != "" {
		return m
	}
	return unknownError
}
