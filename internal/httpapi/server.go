// Package httpapi exposes the service over JSON/HTTP using chi.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"majin/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	GenerateText(ctx context.Context, req types.GenerateTextRequest) (types.GenerateTextResponse, error)
	Generate(ctx context.Context, req types.GenerateRequest) (types.GenerateResponse, error)

	ListModels(ctx context.Context) ([]types.ModelConfig, error)
	CreateModel(ctx context.Context, in types.ModelPatch) (string, error)
	UpdateModel(ctx context.Context, id string, patch types.ModelPatch) error
	DeleteModel(ctx context.Context, id string) error

	ListResults(ctx context.Context, limit int) ([]types.ResultBatch, error)
	SaveResults(ctx context.Context, b types.ResultBatch) (string, error)

	GetSettings(ctx context.Context) (types.Settings, error)
	UpdateSettings(ctx context.Context, s types.Settings) (types.Settings, error)

	Ready(ctx context.Context) bool
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(middleware.Compress(5))
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			MaxAge:         300,
		}))
	}

	h := &handlers{svc: svc}
	r.Route("/api", func(r chi.Router) {
		r.Post("/generate-text", h.generateText)
		r.Post("/generate", h.generate)

		r.Get("/models", h.listModels)
		r.Post("/models", h.createModel)
		r.Put("/models/{id}", h.updateModel)
		r.Delete("/models/{id}", h.deleteModel)

		r.Get("/results", h.listResults)
		r.Post("/results", h.saveResults)

		r.Get("/settings", h.getSettings)
		r.Put("/settings", h.updateSettings)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready(r.Context()) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("registry unavailable"))
	})

	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	MountSwagger(r)

	return r
}

// decodeJSON enforces a JSON content type and the body limit, then decodes
// into v. It writes the error response and returns false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zlog.Debug().Err(err).Msg("encode response")
	}
}
