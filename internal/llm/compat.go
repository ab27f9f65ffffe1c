package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"majin/pkg/types"
)

// chatMessage is one OpenAI-style chat message.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	// Completion is a legacy top-level field some endpoints return instead of choices.
	Completion string `json:"completion"`
}

// compatClient speaks the OpenAI-compatible chat completions protocol over
// plain REST. DeepSeek and Grok both use it.
type compatClient struct {
	http *resty.Client
	url  string
	// label is the vendor name used in error messages.
	label string
	// fallbackError is reported when an error body cannot be parsed.
	fallbackError string
	// completionField enables the top-level "completion" fallback.
	completionField bool
}

func newCompatClient(hc *http.Client, url, label, fallbackError string) *compatClient {
	var rc *resty.Client
	if hc != nil {
		rc = resty.NewWithClient(hc)
	} else {
		rc = resty.New()
	}
	rc.SetHeader("Content-Type", "application/json")
	return &compatClient{http: rc, url: url, label: label, fallbackError: fallbackError}
}

func (c *compatClient) generate(ctx context.Context, cfg types.ModelConfig, prompt string) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(cfg.APIKey).
		SetBody(chatRequest{
			Model:    cfg.Name,
			Messages: []chatMessage{{Role: "user", Content: prompt}},
		}).
		Post(c.url)
	if err != nil {
		return "", transportError(c.label, err)
	}
	if resp.IsError() {
		msg, parsed := jsonErrorMessage(resp.Body())
		switch {
		case !parsed:
			msg = c.fallbackError
		case msg == "":
			msg = unknownError
		}
		return "", &ProviderError{Provider: c.label, StatusCode: resp.StatusCode(), Message: msg}
	}
	var out chatResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		// An unexpected envelope is an empty completion, not a parse failure.
		return "", nil
	}
	if len(out.Choices) > 0 && out.Choices[0].Message.Content != "" {
		return out.Choices[0].Message.Content, nil
	}
	if c.completionField {
		return out.Completion, nil
	}
	return "", nil
}

// unknownError is reported for JSON error bodies that carry no message.
const unknownError = "Unknown error"

// jsonErrorMessage returns error.message (or a string-valued error) from a
// JSON error body. parsed is false when the body is not JSON.
func jsonErrorMessage(body []byte) (msg string, parsed bool) {
	var env struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return "", false
	}
	if len(env.Error) > 0 {
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(env.Error, &nested); err == nil && nested.Message != "" {
			return nested.Message, true
		}
		var s string
		if err := json.Unmarshal(env.Error, &s); err == nil {
			return strings.TrimSpace(s), true
		}
	}
	return env.Message, true
}
