package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"majin/internal/app"
	"majin/internal/config"
	"majin/internal/httpapi"
)

// upstream fakes every provider on one server: OpenAI and Anthropic by their
// SDK paths, DeepSeek and Grok on their own paths.
type upstream struct {
	srv      *httptest.Server
	delay    time.Duration
	inflight atomic.Int32
	peak     atomic.Int32
	calls    atomic.Int32
}

func newUpstream(t *testing.T, delay time.Duration) *upstream {
	t.Helper()
	u := &upstream{delay: delay}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat/completions", u.wrap(func(w http.ResponseWriter, body map[string]any) {
		writeBody(w, http.StatusOK, `{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"openai says `+lastUser(body)+`"}}]}`)
	}))
	mux.HandleFunc("/v1/messages", u.wrap(func(w http.ResponseWriter, body map[string]any) {
		writeBody(w, http.StatusOK, `{"id":"msg_1","type":"message","role":"assistant","model":"claude-3",
			"content":[{"type":"text","text":"claude says `+lastUser(body)+`"}],"stop_reason":"end_turn",
			"usage":{"input_tokens":1,"output_tokens":1}}`)
	}))
	mux.HandleFunc("/deepseek", u.wrap(func(w http.ResponseWriter, body map[string]any) {
		writeBody(w, http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"deepseek says `+lastUser(body)+`"}}]}`)
	}))
	mux.HandleFunc("/grok", u.wrap(func(w http.ResponseWriter, _ map[string]any) {
		writeBody(w, http.StatusUnauthorized, `{"error":"Incorrect API key provided"}`)
	}))
	u.srv = httptest.NewServer(mux)
	t.Cleanup(u.srv.Close)
	return u
}

func (u *upstream) wrap(h func(http.ResponseWriter, map[string]any)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u.calls.Add(1)
		n := u.inflight.Add(1)
		defer u.inflight.Add(-1)
		for {
			p := u.peak.Load()
			if n <= p || u.peak.CompareAndSwap(p, n) {
				break
			}
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if u.delay > 0 {
			select {
			case <-time.After(u.delay):
			case <-r.Context().Done():
				return
			}
		}
		h(w, body)
	}
}

func writeBody(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

// lastUser returns the content of the single user message, JSON-safe enough
// for the short ASCII prompts used here.
func lastUser(body map[string]any) string {
	msgs, _ := body["messages"].([]any)
	if len(msgs) == 0 {
		return ""
	}
	m, _ := msgs[len(msgs)-1].(map[string]any)
	switch c := m["content"].(type) {
	case string:
		return c
	case []any:
		if len(c) > 0 {
			if part, ok := c[0].(map[string]any); ok {
				s, _ := part["text"].(string)
				return s
			}
		}
	}
	return ""
}

// newServer wires a memory-backed App against the fake upstream.
func newServer(t *testing.T, u *upstream, mutate func(*config.Config)) *httptest.Server {
	t.Helper()
	cfg := config.Defaults()
	cfg.Registry = config.RegistryMemory
	cfg.SettingsPath = ""
	cfg.Providers.OpenAI.BaseURL = u.srv.URL + "/v1/"
	cfg.Providers.Anthropic.BaseURL = u.srv.URL
	cfg.Providers.DeepSeek.BaseURL = u.srv.URL + "/deepseek"
	cfg.Providers.Grok.BaseURL = u.srv.URL + "/grok"
	if mutate != nil {
		mutate(&cfg)
	}
	a, err := app.Build(context.Background(), cfg, zerolog.Nop(), app.BuildOptions{HTTPClient: u.srv.Client(), SkipSettings: true})
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	srv := httptest.NewServer(httpapi.NewMux(a))
	t.Cleanup(srv.Close)
	return srv
}

func httpDo(t *testing.T, method, url string, payload string) (*http.Response, []byte) {
	t.Helper()
	var body io.Reader
	if payload != "" {
		body = strings.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, url, body)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	if payload != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	b, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, b
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	return httpDo(t, http.MethodGet, url, "")
}

func httpPostJSON(t *testing.T, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	return httpDo(t, http.MethodPost, url, string(bytes.TrimSpace(payload)))
}
