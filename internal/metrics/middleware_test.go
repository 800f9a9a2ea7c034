package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/results", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("cards"))
	})
	r.Post("/search", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/results", http.StatusSeeOther)
	})
	r.Get("/boom", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	return r
}

func TestMiddleware_RecordsByRoutePattern(t *testing.T) {
	r := newTestRouter()

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/results", "200"))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/results", http.NoBody))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/results", "200"))
	if after-before != 1 {
		t.Errorf("expected one recorded request, got %f", after-before)
	}
	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected duration observations")
	}
}

func TestMiddleware_StatusCodes(t *testing.T) {
	r := newTestRouter()

	tests := []struct {
		method string
		path   string
		status string
	}{
		{http.MethodPost, "/search", "303"},
		{http.MethodGet, "/boom", "500"},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(tc.method, tc.path, http.NoBody))

			if v := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(tc.method, tc.path, tc.status)); v < 1 {
				t.Errorf("expected %s %s -> %s recorded, got %f", tc.method, tc.path, tc.status, v)
			}
		})
	}
}

func TestMiddleware_UnmatchedRoute(t *testing.T) {
	r := newTestRouter()
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope/123", http.NoBody))

	if v := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "unmatched", "404")); v < 1 {
		t.Errorf("expected unmatched 404 recorded, got %f", v)
	}
}

func TestRouteLabel(t *testing.T) {
	if got := routeLabel(""); got != "unmatched" {
		t.Errorf("routeLabel(\"\") = %q", got)
	}
	if got := routeLabel("/api/v1/results"); got != "/api/v1/results" {
		t.Errorf("routeLabel = %q", got)
	}
}

func TestRegisterSearchMetrics_Idempotent(t *testing.T) {
	RegisterSearchMetrics()
	RegisterSearchMetrics()

	NotificationsTotal.WithLabelValues("No file selected").Inc()
	if v := testutil.ToFloat64(NotificationsTotal.WithLabelValues("No file selected")); v < 1 {
		t.Errorf("expected notification counter >= 1, got %f", v)
	}
}
