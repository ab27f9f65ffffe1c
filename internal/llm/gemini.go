package llm

import (
	"context"
	"errors"
	"net/http"

	"google.golang.org/genai"

	"majin/pkg/types"
)

var (
	_ Provider           = (*GeminiProvider)(nil)
	_ CredentialFallback = (*GeminiProvider)(nil)
)

// geminiSafety blocks medium-and-above harassment, hate speech, sexually
// explicit and dangerous content.
var geminiSafety = []*genai.SafetySetting{
	{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
	{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
	{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
	{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
}

// GeminiProvider calls the Gemini API through the genai SDK.
type GeminiProvider struct {
	httpClient  *http.Client
	baseURL     string
	fallbackKey string
}

// NewGemini returns the Gemini adapter. fallbackKey, when set, is used for
// configs that carry no key of their own.
func NewGemini(hc *http.Client, baseURL, fallbackKey string) *GeminiProvider {
	return &GeminiProvider{httpClient: hc, baseURL: baseURL, fallbackKey: fallbackKey}
}

func (p *GeminiProvider) Name() string { return Gemini }

// FallbackKey implements CredentialFallback.
func (p *GeminiProvider) FallbackKey() string { return p.fallbackKey }

func (p *GeminiProvider) client(ctx context.Context, apiKey string) (*genai.Client, error) {
	cc := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: p.httpClient,
	}
	if p.baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: p.baseURL}
	}
	return genai.NewClient(ctx, cc)
}

// Generate implements Provider.
func (p *GeminiProvider) Generate(ctx context.Context, cfg types.ModelConfig, prompt string) (string, error) {
	c, err := p.client(ctx, cfg.APIKey)
	if err != nil {
		return "", transportError("Gemini", err)
	}
	resp, err := c.Models.GenerateContent(ctx, cfg.Name,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{SafetySettings: geminiSafety},
	)
	if err != nil {
		if ae, ok := asGeminiError(err); ok {
			msg := ae.Message
			if msg == "" {
				msg = unknownError
			}
			return "", &ProviderError{Provider: "Gemini", StatusCode: ae.Code, Message: msg, Err: err}
		}
		return "", transportError("Gemini", err)
	}
	if resp == nil {
		return "", nil
	}
	return resp.Text(), nil
}

func asGeminiError(err error) (genai.APIError, bool) {
	var v genai.APIError
	if errors.As(err, &v) {
		return v, true
	}
	var pv *genai.APIError
	if errors.As(err, &pv) && pv != nil {
		return *pv, true
	}
	return genai.APIError{}, false
}
