package httpapi

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountModelResults_LabelsByKind(t *testing.T) {
	okBefore := testutil.ToFloat64(modelResultsTotal.WithLabelValues("ok"))
	nfBefore := testutil.ToFloat64(modelResultsTotal.WithLabelValues("not_found"))

	countModelResults("", "not_found", "")

	if got := testutil.ToFloat64(modelResultsTotal.WithLabelValues("ok")) - okBefore; got != 2 {
		t.Fatalf("ok delta=%v, want 2", got)
	}
	if got := testutil.ToFloat64(modelResultsTotal.WithLabelValues("not_found")) - nfBefore; got != 1 {
		t.Fatalf("not_found delta=%v, want 1", got)
	}
}
