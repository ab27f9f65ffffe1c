package llm

import (
	"context"
	"errors"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"majin/pkg/types"
)

var _ Provider = (*OpenAIProvider)(nil)

// OpenAIProvider calls the OpenAI chat completions API through the official SDK.
type OpenAIProvider struct {
	httpClient *http.Client
	baseURL    string
}

// NewOpenAI returns the OpenAI adapter. An empty baseURL uses the SDK default.
func NewOpenAI(hc *http.Client, baseURL string) *OpenAIProvider {
	return &OpenAIProvider{httpClient: hc, baseURL: baseURL}
}

func (p *OpenAIProvider) Name() string { return OpenAI }

func (p *OpenAIProvider) client(apiKey string) openai.Client {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if p.httpClient != nil {
		opts = append(opts, option.WithHTTPClient(p.httpClient))
	}
	if p.baseURL != "" {
		opts = append(opts, option.WithBaseURL(p.baseURL))
	}
	return openai.NewClient(opts...)
}

// Generate implements Provider.
func (p *OpenAIProvider) Generate(ctx context.Context, cfg types.ModelConfig, prompt string) (string, error) {
	c := p.client(cfg.APIKey)
	resp, err := c.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: cfg.Name,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			msg := apiErr.Message
			if msg == "" {
				msg = "Unknown error"
			}
			return "", &ProviderError{Provider: "OpenAI", StatusCode: apiErr.StatusCode, Message: msg, Err: err}
		}
		return "", transportError("OpenAI", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
