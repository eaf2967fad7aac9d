package landing

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/solarly/landing-api/internal/landing/signups"
)

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	RegisterRoutes(mux, &Deps{
		Config: &Config{
			SiteURL:             "https://solarly.ai",
			StripeWebhookSecret: "whsec_test",
			StripeAPIKey:        "sk_test",
		},
		Store:   signups.New("", "", "solarly_signups"),
		Version: "test",
	})
	return mux
}

func TestRoutes_Probes(t *testing.T) {
	mux := newTestMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("/healthz status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("/readyz status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"version":"test"`) {
		t.Errorf("/readyz body = %q, want version", rec.Body.String())
	}
}

func TestRoutes_Metrics(t *testing.T) {
	mux := newTestMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want 200", rec.Code)
	}
}

func TestRoutes_MethodDispatch(t *testing.T) {
	mux := newTestMux(t)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/api/lead", http.StatusMethodNotAllowed},
		{http.MethodDelete, "/api/checkout", http.StatusMethodNotAllowed},
		{http.MethodPost, "/api/heartbeat", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/stripe/webhook", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		if rec.Code != tt.want {
			t.Errorf("%s %s status = %d, want %d", tt.method, tt.path, rec.Code, tt.want)
		}
	}
}

func TestRoutes_RequestIDHeader(t *testing.T) {
	mux := newTestMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/heartbeat", nil))
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID not stamped on response")
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/heartbeat", nil)
	req.Header.Set("X-Request-ID", "caller-supplied-id")
	mux.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "caller-supplied-id" {
		t.Errorf("X-Request-ID = %q, want caller-supplied-id", got)
	}
}
