package httpapi

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestGenerateLogsWithZerologInfo(t *testing.T) {
	var sb strings.Builder
	SetLogger(zerolog.New(&sb))
	defer SetLogger(zerolog.Nop())

	rec := do(t, NewMux(&mockService{}), http.MethodPost, "/api/generate-text?log=info", `{"modelName":"m","prompt":"hi"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with info logging, got %d", rec.Code)
	}
	if !strings.Contains(sb.String(), `"op":"generate-text"`) {
		t.Fatalf("missing log line: %q", sb.String())
	}
	if strings.Contains(sb.String(), "hi") && strings.Contains(sb.String(), "prompt") {
		t.Fatalf("prompt must not be logged: %q", sb.String())
	}
}

func TestLogOffIsSilent(t *testing.T) {
	var sb strings.Builder
	SetLogger(zerolog.New(&sb))
	defer SetLogger(zerolog.Nop())
	_ = do(t, NewMux(&mockService{}), http.MethodPost, "/api/generate-text?log=off", `{"modelName":"m","prompt":"hi"}`)
	if sb.Len() != 0 {
		t.Fatalf("expected no logs, got %q", sb.String())
	}
}

func TestCORSAndSecurityHeaders(t *testing.T) {
	SetCORSOptions(true, []string{"*"}, []string{"GET", "POST", "OPTIONS"}, []string{"Content-Type"})
	defer SetCORSOptions(false, nil, nil, nil)

	h := NewMux(&mockService{ready: true})
	req := httptest.NewRequest(http.MethodGet, "/api/models", nil)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("expected X-Content-Type-Options=nosniff, got %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got == "" {
		t.Fatalf("expected CORS header Access-Control-Allow-Origin to be set, got empty")
	}
}

func TestGenerateTimeoutReturns500(t *testing.T) {
	SetGenerateTimeout(50 * time.Millisecond)
	defer SetGenerateTimeout(0)

	rec := do(t, NewMux(&mockService{block: true}), http.MethodPost, "/api/generate-text", `{"modelName":"m","prompt":"x"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 on timeout, got %d", rec.Code)
	}
}

func TestContentTypeCaseInsensitive(t *testing.T) {
	h := NewMux(&mockService{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/generate-text", strings.NewReader(`{"modelName":"m","prompt":"hi"}`))
	req.Header.Set("Content-Type", "Application/JSON; charset=utf-8")
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with mixed-case content-type, got %d", rec.Code)
	}
	_, _ = io.Copy(io.Discard, rec.Body)
}
