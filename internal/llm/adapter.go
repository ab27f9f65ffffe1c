// Package llm holds the provider adapters the dispatcher selects between.
// The set is closed: OpenAI, Gemini, DeepSeek, Anthropic and Grok. Each adapter
// performs exactly one upstream call per Generate and extracts a single text
// field from the response.
package llm

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"majin/pkg/types"
)

// Provider tags understood by the dispatcher.
const (
	OpenAI    = "openai"
	Gemini    = "gemini"
	DeepSeek  = "deepseek"
	Anthropic = "anthropic"
	Grok      = "grok"
)

// ErrNoContent is returned by adapters when the upstream response carried no
// usable text.
var ErrNoContent = errors.New("no content")

// Provider is one upstream LLM vendor.
type Provider interface {
	// Name is the lower-case tag this provider is registered under.
	Name() string
	// Generate sends prompt as a single user message using cfg's credential and
	// returns the first completion's text.
	Generate(ctx context.Context, cfg types.ModelConfig, prompt string) (string, error)
}

// CredentialFallback is implemented by providers that can fall back to an
// operator-configured key when a config carries none.
type CredentialFallback interface {
	FallbackKey() string
}

// Options configures the adapter set.
type Options struct {
	// HTTPClient is shared by every adapter. A client with Timeout is built
	// when nil.
	HTTPClient *http.Client
	// Timeout applies to the default HTTP client.
	Timeout time.Duration

	OpenAIBaseURL    string
	GeminiBaseURL    string
	DeepSeekBaseURL  string
	AnthropicBaseURL string
	GrokBaseURL      string

	// AnthropicMaxTokens bounds Anthropic completions (1024 when zero).
	AnthropicMaxTokens int64
	// GeminiFallbackKey is used when a Gemini config has no key.
	GeminiFallbackKey string
}

// Set is a lookup table over a closed set of providers.
type Set struct {
	byName map[string]Provider
}

// NewSet builds the five standard adapters.
func NewSet(opts Options) *Set {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	return NewSetOf(
		NewOpenAI(hc, opts.OpenAIBaseURL),
		NewGemini(hc, opts.GeminiBaseURL, opts.GeminiFallbackKey),
		NewDeepSeek(hc, opts.DeepSeekBaseURL),
		NewAnthropic(hc, opts.AnthropicBaseURL, opts.AnthropicMaxTokens),
		NewGrok(hc, opts.GrokBaseURL),
	)
}

// NewSetOf builds a Set from arbitrary providers, keyed by their Name.
// Later providers with the same name replace earlier ones.
func NewSetOf(providers ...Provider) *Set {
	s := &Set{byName: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		s.byName[strings.ToLower(p.Name())] = p
	}
	return s
}

// Lookup lower-cases tag and returns the exact match, if any.
func (s *Set) Lookup(tag string) (Provider, bool) {
	p, ok := s.byName[strings.ToLower(tag)]
	return p, ok
}

// Names returns the registered tags sorted.
func (s *Set) Names() []string {
	out := make([]string, 0, len(s.byName))
	for k := range s.byName {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
