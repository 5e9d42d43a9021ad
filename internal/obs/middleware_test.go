package obs_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/qualclamps/storefront/internal/obs"
)

func TestHTTPMetricsLabels(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := obs.NewHTTPMetrics("storefront", []float64{1, 10}, registry)
	handler := obs.HTTPObs{Metrics: metrics}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req = req.WithContext(obs.WithRoutePattern(req.Context(), "/cart"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", rec.Code)
	}
	count := testutil.CollectAndCount(metrics.ReqTotal)
	if count == 0 {
		t.Fatal("expected request counter to record a sample")
	}
}

func TestRoutePatternContext(t *testing.T) {
	ctx := obs.WithRoutePattern(nil, "/categories/{folder}")
	if got := obs.RoutePatternFromContext(ctx); got != "/categories/{folder}" {
		t.Fatalf("unexpected pattern %q", got)
	}
}
