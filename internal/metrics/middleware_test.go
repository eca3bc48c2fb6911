package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Post("/v1/chat", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"reply":"ok"}`))
	})
	r.Get("/v1/size", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	})
	r.Get("/v1/pages/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

func serve(r http.Handler, method, path string) int {
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(method, path, http.NoBody))
	return rr.Code
}

func TestMiddleware_LabelsByStatus(t *testing.T) {
	r := newRouter()

	tests := []struct {
		method, path, route, status string
	}{
		{http.MethodPost, "/v1/chat", "/v1/chat", "200"},
		{http.MethodGet, "/v1/size", "/v1/size", "422"},
	}
	for _, tc := range tests {
		t.Run(tc.route, func(t *testing.T) {
			before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(tc.method, tc.route, tc.status))
			serve(r, tc.method, tc.path)
			after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(tc.method, tc.route, tc.status))
			if after-before != 1 {
				t.Errorf("expected one request counted for %s %s, got %f", tc.route, tc.status, after-before)
			}
		})
	}

	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected duration observations")
	}
}

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	r := newRouter()

	serve(r, http.MethodGet, "/v1/pages/a1")
	serve(r, http.MethodGet, "/v1/pages/b2")

	if v := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/v1/pages/{id}", "204")); v < 2 {
		t.Errorf("expected both pages under one route label, got %f", v)
	}
}

func TestMiddleware_UnmatchedRoute(t *testing.T) {
	r := newRouter()

	if code := serve(r, http.MethodGet, "/wp-login.php"); code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
	if v := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", unmatchedRoute, "404")); v < 1 {
		t.Errorf("expected unmatched label, got %f", v)
	}
}

func TestMiddleware_InFlight(t *testing.T) {
	var during float64
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/slow", func(w http.ResponseWriter, _ *http.Request) {
		during = testutil.ToFloat64(httpRequestsInFlight)
		w.WriteHeader(http.StatusOK)
	})

	serve(r, http.MethodGet, "/slow")

	if during != 1 {
		t.Errorf("expected 1 request in flight while serving, got %f", during)
	}
	if v := testutil.ToFloat64(httpRequestsInFlight); v != 0 {
		t.Errorf("expected 0 in flight after serving, got %f", v)
	}
}
