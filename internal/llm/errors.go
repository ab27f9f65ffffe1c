package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// ProviderError describes a failed upstream call.
type ProviderError struct {
	Provider string
	// StatusCode is the upstream HTTP status, zero for transport failures.
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s API request failed: %d %s - %s", e.Provider, e.StatusCode, http.StatusText(e.StatusCode), e.Message)
	}
	return fmt.Sprintf("%s API request failed: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// AsProviderError extracts a *ProviderError from err.
func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

func transportError(provider string, err error) error {
	return &ProviderError{Provider: provider, Message: err.Error(), Err: err}
}
