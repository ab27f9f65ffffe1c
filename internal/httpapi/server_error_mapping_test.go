package httpapi

import (
	"fmt"
	"net/http"
	"testing"

	"majin/internal/dispatch"
	"majin/internal/registry"
	"majin/internal/results"
	"majin/internal/settings"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("wrapped: %w", registry.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", registry.ErrDuplicateName), http.StatusConflict},
		{fmt.Errorf("%w: missing name", registry.ErrInvalid), http.StatusBadRequest},
		{fmt.Errorf("%w: theme", settings.ErrInvalid), http.StatusBadRequest},
		{fmt.Errorf("%w: prompt", results.ErrInvalid), http.StatusBadRequest},
		{&dispatch.Error{Kind: dispatch.KindUnsupportedProvider, Message: "unsupported provider: x"}, http.StatusNotImplemented},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got, _ := statusFor(c.err); got != c.want {
			t.Fatalf("%v: got %d want %d", c.err, got, c.want)
		}
	}
}
