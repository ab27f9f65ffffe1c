package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"majin/pkg/types"
)

type handlers struct {
	svc Service
}

// fail maps err, writes the error response and logs the outcome.
func (h *handlers) fail(w http.ResponseWriter, r *http.Request, op string, start time.Time, err error) {
	status, msg := statusFor(err)
	writeJSONError(w, status, msg)
	logOutcome(r, op, status, start, err)
}

// generateText godoc
// @Summary      Generate text with one model
// @Description  Resolves modelName to an active model config and returns the provider's completion.
// @Tags         generate
// @Accept       json
// @Produce      json
// @Param        request  body      types.GenerateTextRequest  true  "Model and prompt"
// @Success      200      {object}  types.GenerateTextResponse
// @Failure      400      {object}  types.ErrorResponse
// @Failure      404      {object}  types.ErrorResponse
// @Failure      500      {object}  types.ErrorResponse
// @Failure      501      {object}  types.ErrorResponse
// @Router       /api/generate-text [post]
func (h *handlers) generateText(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req types.GenerateTextRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := generationContext(r)
	defer cancel()
	resp, err := h.svc.GenerateText(ctx, req)
	if err != nil {
		// Client went away or the server is shutting down: nobody to answer.
		if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
			return
		}
		h.fail(w, r, "generate-text", start, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
	logOutcome(r, "generate-text", http.StatusOK, start, nil)
}

// generate godoc
// @Summary      Fan a prompt out to several models
// @Description  Sends one prompt to up to max_models models in parallel and returns every result in request order.
// @Tags         generate
// @Accept       json
// @Produce      json
// @Param        request  body      types.GenerateRequest  true  "Prompt and model names"
// @Success      200      {object}  types.GenerateResponse
// @Failure      400      {object}  types.ErrorResponse
// @Failure      501      {object}  types.ErrorResponse
// @Router       /api/generate [post]
func (h *handlers) generate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req types.GenerateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := generationContext(r)
	defer cancel()
	resp, err := h.svc.Generate(ctx, req)
	if err != nil {
		if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
			return
		}
		h.fail(w, r, "generate", start, err)
		return
	}
	kinds := make([]string, len(resp.Results))
	for i, res := range resp.Results {
		kinds[i] = res.Kind
	}
	countModelResults(kinds...)
	writeJSON(w, http.StatusOK, resp)
	logOutcome(r, "generate", http.StatusOK, start, nil)
}

// listModels godoc
// @Summary      List model configs
// @Description  Returns every stored model config. API keys are masked unless reveal is set.
// @Tags         models
// @Produce      json
// @Param        reveal  query     bool  false  "Return API keys unmasked"
// @Success      200  {array}   types.ModelConfig
// @Failure      500  {object}  types.ErrorResponse
// @Router       /api/models [get]
func (h *handlers) listModels(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	models, err := h.svc.ListModels(r.Context())
	if err != nil {
		h.fail(w, r, "list-models", start, err)
		return
	}
	if reveal, _ := strconv.ParseBool(r.URL.Query().Get("reveal")); reveal {
		writeJSON(w, http.StatusOK, models)
		return
	}
	out := make([]types.ModelConfig, len(models))
	for i, m := range models {
		m.APIKey = MaskKey(m.APIKey)
		out[i] = m
	}
	writeJSON(w, http.StatusOK, out)
}

// createModel godoc
// @Summary      Add a model config
// @Tags         models
// @Accept       json
// @Produce      json
// @Param        model  body      types.ModelConfig  true  "name, provider, apiKey and contentType are required; active defaults to true"
// @Success      201    {object}  types.CreatedResponse
// @Failure      400    {object}  types.ErrorResponse
// @Failure      409    {object}  types.ErrorResponse
// @Router       /api/models [post]
func (h *handlers) createModel(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var in types.ModelPatch
	if !decodeJSON(w, r, &in) {
		return
	}
	id, err := h.svc.CreateModel(r.Context(), in)
	if err != nil {
		h.fail(w, r, "create-model", start, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.CreatedResponse{Message: "Model added successfully", ID: id})
	logOutcome(r, "create-model", http.StatusCreated, start, nil)
}

// updateModel godoc
// @Summary      Update a model config
// @Description  Applies the supplied fields. The id in the path is authoritative; ids in the body are ignored.
// @Tags         models
// @Accept       json
// @Produce      json
// @Param        id     path      string             true  "Model id"
// @Param        model  body      types.ModelConfig  true  "Fields to change"
// @Success      200    {object}  types.MessageResponse
// @Failure      400    {object}  types.ErrorResponse
// @Failure      404    {object}  types.ErrorResponse
// @Failure      409    {object}  types.ErrorResponse
// @Router       /api/models/{id} [put]
func (h *handlers) updateModel(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var patch types.ModelPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	if err := h.svc.UpdateModel(r.Context(), chi.URLParam(r, "id"), patch); err != nil {
		h.fail(w, r, "update-model", start, err)
		return
	}
	writeJSON(w, http.StatusOK, types.MessageResponse{Message: "Model updated successfully"})
	logOutcome(r, "update-model", http.StatusOK, start, nil)
}

// deleteModel godoc
// @Summary      Delete a model config
// @Tags         models
// @Produce      json
// @Param        id   path      string  true  "Model id"
// @Success      200  {object}  types.MessageResponse
// @Failure      404  {object}  types.ErrorResponse
// @Router       /api/models/{id} [delete]
func (h *handlers) deleteModel(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if err := h.svc.DeleteModel(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "delete-model", start, err)
		return
	}
	writeJSON(w, http.StatusOK, types.MessageResponse{Message: "Model deleted successfully"})
	logOutcome(r, "delete-model", http.StatusOK, start, nil)
}

// listResults godoc
// @Summary      List saved fan-out results
// @Tags         results
// @Produce      json
// @Param        limit  query     int  false  "Maximum batches to return"
// @Success      200    {object}  types.ResultsResponse
// @Failure      400    {object}  types.ErrorResponse
// @Router       /api/results [get]
func (h *handlers) listResults(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSONError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	batches, err := h.svc.ListResults(r.Context(), limit)
	if err != nil {
		h.fail(w, r, "list-results", start, err)
		return
	}
	writeJSON(w, http.StatusOK, types.ResultsResponse{Results: batches})
}

// saveResults godoc
// @Summary      Save a fan-out result batch
// @Tags         results
// @Accept       json
// @Produce      json
// @Param        batch  body      types.ResultBatch  true  "Batch to store"
// @Success      201    {object}  types.CreatedResponse
// @Failure      400    {object}  types.ErrorResponse
// @Router       /api/results [post]
func (h *handlers) saveResults(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var b types.ResultBatch
	if !decodeJSON(w, r, &b) {
		return
	}
	id, err := h.svc.SaveResults(r.Context(), b)
	if err != nil {
		h.fail(w, r, "save-results", start, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.CreatedResponse{Message: "Results saved successfully", ID: id})
	logOutcome(r, "save-results", http.StatusCreated, start, nil)
}

// getSettings godoc
// @Summary      Read profile and theme
// @Tags         settings
// @Produce      json
// @Success      200  {object}  types.Settings
// @Router       /api/settings [get]
func (h *handlers) getSettings(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s, err := h.svc.GetSettings(r.Context())
	if err != nil {
		h.fail(w, r, "get-settings", start, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// updateSettings godoc
// @Summary      Update profile and/or theme
// @Description  A missing profile or theme leaves the stored value unchanged.
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        settings  body      types.Settings  true  "Settings"
// @Success      200       {object}  types.Settings
// @Failure      400       {object}  types.ErrorResponse
// @Router       /api/settings [put]
func (h *handlers) updateSettings(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var in types.Settings
	if !decodeJSON(w, r, &in) {
		return
	}
	s, err := h.svc.UpdateSettings(r.Context(), in)
	if err != nil {
		h.fail(w, r, "update-settings", start, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
	logOutcome(r, "update-settings", http.StatusOK, start, nil)
}

// MaskKey hides all but the last four characters of an API key.
func MaskKey(k string) string {
	if len(k) <= 8 {
		if k == "" {
			return ""
		}
		return "********"
	}
	return "****" + k[len(k)-4:]
}
