package httpapi

import (
	"net/http"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func containsLine(body, prefix string) bool {
	for _, l := range strings.Split(body, "\n") {
		if strings.HasPrefix(l, prefix) {
			return true
		}
	}
	return false
}

// Requests to /api/models/{id} must share one series regardless of the id.
func TestMetricsUseRoutePatternForModelIDs(t *testing.T) {
	h := NewMux(&mockService{})
	counter := httpRequestsTotal.WithLabelValues("/api/models/{id}", http.MethodDelete, "200")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"a1", "b2", "c3"} {
		if rec := do(t, h, http.MethodDelete, "/api/models/"+id, ""); rec.Code != http.StatusOK {
			t.Fatalf("delete %s: status=%d", id, rec.Code)
		}
	}

	if got := testutil.ToFloat64(counter) - before; got != 3 {
		t.Fatalf("pattern series delta=%v, want 3", got)
	}
	if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/api/models/a1", http.MethodDelete, "200")); got != 0 {
		t.Fatalf("raw path leaked into labels: %v", got)
	}
}

func TestRoutePatternFallsBackToPath(t *testing.T) {
	r, _ := http.NewRequest(http.MethodGet, "/no/router", nil)
	if got := routePatternOrPath(r); got != "/no/router" {
		t.Fatalf("got %q", got)
	}
}
