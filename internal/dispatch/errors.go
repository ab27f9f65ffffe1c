package dispatch

import (
	"errors"
	"net/http"
)

// Kind classifies dispatch failures.
type Kind string

const (
	KindInvalidRequest      Kind = "invalid_request"
	KindNotFound            Kind = "not_found"
	KindMissingCredential   Kind = "missing_credential"
	KindUnsupportedProvider Kind = "unsupported_provider"
	KindProviderError       Kind = "provider_error"
	KindEmptyCompletion     Kind = "empty_completion"
	KindInternal            Kind = "internal"
)

// Error is returned by Dispatch for every failure.
type Error struct {
	Kind    Kind
	Message string
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// StatusCode maps the kind to an HTTP status.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindInvalidRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnsupportedProvider:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// KindOf returns the Kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

func is(err error, k Kind) bool {
	var de *Error
	return errors.As(err, &de) && de.Kind == k
}

// IsInvalidRequest reports whether err is a missing modelName or prompt.
func IsInvalidRequest(err error) bool { return is(err, KindInvalidRequest) }

// IsNotFound reports whether no active config matched the model name.
func IsNotFound(err error) bool { return is(err, KindNotFound) }

// IsMissingCredential reports whether the matched config had no API key.
func IsMissingCredential(err error) bool { return is(err, KindMissingCredential) }

// IsUnsupportedProvider reports whether the provider tag has no adapter.
func IsUnsupportedProvider(err error) bool { return is(err, KindUnsupportedProvider) }

// IsProviderError reports whether the upstream call failed.
func IsProviderError(err error) bool { return is(err, KindProviderError) }

// IsEmptyCompletion reports whether the upstream returned no usable text.
func IsEmptyCompletion(err error) bool { return is(err, KindEmptyCompletion) }

// IsInternal reports an unclassified failure such as a registry outage.
func IsInternal(err error) bool { return is(err, KindInternal) }
