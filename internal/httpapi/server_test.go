package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"majin/internal/dispatch"
	"majin/internal/registry"
	"majin/pkg/types"
)

type mockService struct {
	models   []types.ModelConfig
	ready    bool
	genErr   error
	modelErr error
	lastID   string
	lastIn   types.ModelPatch
	limit    int
	settings types.Settings
	block    bool
	// started is closed when a blocking generation begins waiting.
	started chan struct{}
}

func (m *mockService) GenerateText(ctx context.Context, req types.GenerateTextRequest) (types.GenerateTextResponse, error) {
	if m.block {
		if m.started != nil {
			close(m.started)
		}
		<-ctx.Done()
		return types.GenerateTextResponse{}, &dispatch.Error{Kind: dispatch.KindProviderError, Message: ctx.Err().Error(), Err: ctx.Err()}
	}
	if m.genErr != nil {
		return types.GenerateTextResponse{}, m.genErr
	}
	return types.GenerateTextResponse{Completion: "echo: " + req.Prompt}, nil
}

func (m *mockService) Generate(_ context.Context, req types.GenerateRequest) (types.GenerateResponse, error) {
	if m.genErr != nil {
		return types.GenerateResponse{}, m.genErr
	}
	resp := types.GenerateResponse{ID: "batch-1"}
	for _, n := range req.Models {
		resp.Results = append(resp.Results, types.ModelResult{ModelName: n, Completion: n + " says hi"})
	}
	return resp, nil
}

func (m *mockService) ListModels(context.Context) ([]types.ModelConfig, error) {
	return append([]types.ModelConfig(nil), m.models...), m.modelErr
}

func (m *mockService) CreateModel(_ context.Context, in types.ModelPatch) (string, error) {
	m.lastIn = in
	return "new-id", m.modelErr
}

func (m *mockService) UpdateModel(_ context.Context, id string, patch types.ModelPatch) error {
	m.lastID, m.lastIn = id, patch
	return m.modelErr
}

func (m *mockService) DeleteModel(_ context.Context, id string) error {
	m.lastID = id
	return m.modelErr
}

func (m *mockService) ListResults(_ context.Context, limit int) ([]types.ResultBatch, error) {
	m.limit = limit
	return []types.ResultBatch{}, nil
}

func (m *mockService) SaveResults(context.Context, types.ResultBatch) (string, error) {
	return "saved-id", m.modelErr
}

func (m *mockService) GetSettings(context.Context) (types.Settings, error) { return m.settings, nil }

func (m *mockService) UpdateSettings(_ context.Context, s types.Settings) (types.Settings, error) {
	if s.Theme != "" {
		m.settings.Theme = s.Theme
	}
	return m.settings, nil
}

func (m *mockService) Ready(context.Context) bool { return m.ready }

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) types.ErrorResponse {
	t.Helper()
	var e types.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &e); err != nil {
		t.Fatalf("json: %v body=%q", err, rec.Body.String())
	}
	return e
}

func TestGenerateTextOK(t *testing.T) {
	h := NewMux(&mockService{})
	rec := do(t, h, http.MethodPost, "/api/generate-text", `{"modelName":"gpt-4","prompt":"hi"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var body types.GenerateTextResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.Completion != "echo: hi" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestGenerateTextErrorMapping(t *testing.T) {
	cases := []struct {
		kind dispatch.Kind
		want int
	}{
		{dispatch.KindInvalidRequest, http.StatusBadRequest},
		{dispatch.KindNotFound, http.StatusNotFound},
		{dispatch.KindMissingCredential, http.StatusInternalServerError},
		{dispatch.KindUnsupportedProvider, http.StatusNotImplemented},
		{dispatch.KindProviderError, http.StatusInternalServerError},
		{dispatch.KindEmptyCompletion, http.StatusInternalServerError},
		{dispatch.KindInternal, http.StatusInternalServerError},
	}
	for _, c := range cases {
		svc := &mockService{genErr: &dispatch.Error{Kind: c.kind, Message: string(c.kind) + " happened"}}
		rec := do(t, NewMux(svc), http.MethodPost, "/api/generate-text", `{"modelName":"m","prompt":"p"}`)
		if rec.Code != c.want {
			t.Fatalf("%s: status=%d want %d", c.kind, rec.Code, c.want)
		}
		e := decodeError(t, rec)
		if e.Code != c.want || e.Error != string(c.kind)+" happened" {
			t.Fatalf("%s: unexpected error body %+v", c.kind, e)
		}
	}
}

func TestGenerateTextRejectsBadBodies(t *testing.T) {
	h := NewMux(&mockService{})
	req := httptest.NewRequest(http.MethodPost, "/api/generate-text", strings.NewReader(`{"prompt":"x"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("missing content type: status=%d", rec.Code)
	}

	rec = do(t, h, http.MethodPost, "/api/generate-text", `{"prompt":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad json: status=%d", rec.Code)
	}
}

func TestBodyLimit(t *testing.T) {
	SetMaxBodyBytes(16)
	defer SetMaxBodyBytes(0)
	rec := do(t, NewMux(&mockService{}), http.MethodPost, "/api/generate-text", `{"modelName":"m","prompt":"`+strings.Repeat("x", 64)+`"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for oversized body, got %d", rec.Code)
	}
}

func TestGenerateFanOut(t *testing.T) {
	rec := do(t, NewMux(&mockService{}), http.MethodPost, "/api/generate", `{"prompt":"hi","models":["a","b"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	var body types.GenerateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.ID != "batch-1" || len(body.Results) != 2 || body.Results[1].ModelName != "b" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestListModelsMasksKeys(t *testing.T) {
	svc := &mockService{models: []types.ModelConfig{
		{ID: "1", Name: "gpt-4", Provider: "openai", APIKey: "sk-abcdefghijklmnop", ContentType: types.ContentText, Active: true},
		{ID: "2", Name: "short", Provider: "grok", APIKey: "abc", ContentType: types.ContentText},
	}}
	rec := do(t, NewMux(svc), http.MethodGet, "/api/models", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("content-type=%s", ct)
	}
	var body []types.ModelConfig
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(body) != 2 || body[0].APIKey != "****mnop" || body[1].APIKey != "********" {
		t.Fatalf("unexpected body: %+v", body)
	}
	if strings.Contains(rec.Body.String(), "sk-abcdefghijklmnop") {
		t.Fatalf("raw key leaked")
	}
}

func TestListModelsRevealReturnsRawKeys(t *testing.T) {
	svc := &mockService{models: []types.ModelConfig{
		{ID: "1", Name: "gpt-4", Provider: "openai", APIKey: "sk-abcdefghijklmnop", ContentType: types.ContentText, Active: true},
	}}
	h := NewMux(svc)
	for _, q := range []string{"1", "true"} {
		rec := do(t, h, http.MethodGet, "/api/models?reveal="+q, "")
		var body []types.ModelConfig
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("json: %v", err)
		}
		if rec.Code != http.StatusOK || len(body) != 1 || body[0].APIKey != "sk-abcdefghijklmnop" {
			t.Fatalf("reveal=%s: status=%d body=%+v", q, rec.Code, body)
		}
	}
	rec := do(t, h, http.MethodGet, "/api/models?reveal=0", "")
	if strings.Contains(rec.Body.String(), "sk-abcdefghijklmnop") {
		t.Fatalf("reveal=0 must mask keys")
	}
}

func TestCreateModel(t *testing.T) {
	svc := &mockService{}
	rec := do(t, NewMux(svc), http.MethodPost, "/api/models", `{"name":"gpt-4","provider":"openai","apiKey":"k","contentType":"text"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status=%d", rec.Code)
	}
	var body types.CreatedResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body.ID != "new-id" || body.Message != "Model added successfully" {
		t.Fatalf("unexpected body: %+v", body)
	}
	if svc.lastIn.Name == nil || *svc.lastIn.Name != "gpt-4" || svc.lastIn.Active != nil {
		t.Fatalf("unexpected input: %+v", svc.lastIn)
	}
}

func TestModelErrorsMapToStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{registry.ErrNotFound, http.StatusNotFound},
		{registry.ErrDuplicateName, http.StatusConflict},
		{registry.ErrInvalid, http.StatusBadRequest},
	}
	for _, c := range cases {
		svc := &mockService{modelErr: c.err}
		rec := do(t, NewMux(svc), http.MethodPut, "/api/models/abc", `{"active":false}`)
		if rec.Code != c.want {
			t.Fatalf("%v: status=%d want %d", c.err, rec.Code, c.want)
		}
	}
}

func TestUpdateModelUsesPathID(t *testing.T) {
	svc := &mockService{}
	rec := do(t, NewMux(svc), http.MethodPut, "/api/models/665f1c2e9b1d4a0012345678", `{"_id":"other","id":"other","active":false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	if svc.lastID != "665f1c2e9b1d4a0012345678" {
		t.Fatalf("id=%q", svc.lastID)
	}
	if svc.lastIn.Active == nil || *svc.lastIn.Active {
		t.Fatalf("patch=%+v", svc.lastIn)
	}
}

func TestDeleteModel(t *testing.T) {
	svc := &mockService{}
	rec := do(t, NewMux(svc), http.MethodDelete, "/api/models/xyz", "")
	if rec.Code != http.StatusOK || svc.lastID != "xyz" {
		t.Fatalf("status=%d id=%q", rec.Code, svc.lastID)
	}
}

func TestResultsEndpoints(t *testing.T) {
	svc := &mockService{}
	h := NewMux(svc)
	rec := do(t, h, http.MethodGet, "/api/results?limit=7", "")
	if rec.Code != http.StatusOK || svc.limit != 7 {
		t.Fatalf("status=%d limit=%d", rec.Code, svc.limit)
	}
	rec = do(t, h, http.MethodGet, "/api/results?limit=-1", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("negative limit: status=%d", rec.Code)
	}
	rec = do(t, h, http.MethodPost, "/api/results", `{"prompt":"p","results":[{"modelName":"m","completion":"c"}]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("save: status=%d", rec.Code)
	}
}

func TestSettingsEndpoints(t *testing.T) {
	svc := &mockService{settings: types.Settings{Theme: types.ThemeSystem}}
	h := NewMux(svc)
	rec := do(t, h, http.MethodPut, "/api/settings", `{"theme":"dark"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	rec = do(t, h, http.MethodGet, "/api/settings", "")
	var s types.Settings
	_ = json.Unmarshal(rec.Body.Bytes(), &s)
	if s.Theme != types.ThemeDark {
		t.Fatalf("theme=%q", s.Theme)
	}
}

func TestUnknownErrorIsGeneric(t *testing.T) {
	svc := &mockService{modelErr: context.DeadlineExceeded}
	rec := do(t, NewMux(svc), http.MethodGet, "/api/models", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", rec.Code)
	}
	if e := decodeError(t, rec); e.Error != "internal server error" {
		t.Fatalf("leaked detail: %+v", e)
	}
}

func TestHealthzAndReadyz(t *testing.T) {
	rec := do(t, NewMux(&mockService{}), http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthz: %d %q", rec.Code, rec.Body.String())
	}
	rec = do(t, NewMux(&mockService{ready: true}), http.MethodGet, "/readyz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("readyz: %d", rec.Code)
	}
	rec = do(t, NewMux(&mockService{ready: false}), http.MethodGet, "/readyz", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz not ready: %d", rec.Code)
	}
}

func TestMaskKey(t *testing.T) {
	if MaskKey("") != "" || MaskKey("12345678") != "********" || MaskKey("123456789") != "****6789" {
		t.Fatalf("unexpected masks")
	}
}
