package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"majin/internal/registry"
	"majin/internal/results"
	"majin/internal/settings"
	"majin/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

// statusFor maps a service error to a status code and client-safe message.
// Unclassified errors become a generic 500.
func statusFor(err error) (int, string) {
	var he HTTPError
	switch {
	case errors.As(err, &he):
		return he.StatusCode(), he.Error()
	case registry.IsNotFound(err):
		return http.StatusNotFound, err.Error()
	case registry.IsDuplicateName(err):
		return http.StatusConflict, err.Error()
	case registry.IsInvalid(err),
		errors.Is(err, settings.ErrInvalid),
		errors.Is(err, results.ErrInvalid):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
