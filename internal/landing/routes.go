package landing

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/solarly/landing-api/internal/landing/email"
	"github.com/solarly/landing-api/internal/landing/signups"
	"github.com/solarly/landing-api/internal/landing/stripehook"
	"github.com/solarly/landing-api/internal/logging"
)

// Deps holds shared dependencies injected into HTTP handlers.
type Deps struct {
	Config   *Config
	Store    *signups.Store
	Notifier *email.Notifier
	Version  string
}

// RegisterRoutes wires all HTTP handlers onto the given ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps *Deps) {
	// Liveness/readiness probes.
	mux.HandleFunc("/healthz", HandleHealthz)
	mux.HandleFunc("/readyz", HandleReadyz(deps.Version))

	mux.Handle("/metrics", promhttp.Handler())

	leadHandlers := NewLeadHandlers(deps.Store, deps.Notifier)
	leadLimiter := NewRateLimiter(60, time.Minute)
	mux.Handle("/api/lead", requestID(leadLimiter.Middleware(http.HandlerFunc(leadHandlers.HandleLead))))
	mux.Handle("/api/heartbeat", requestID(http.HandlerFunc(leadHandlers.HandleHeartbeat)))

	checkoutHandlers := NewCheckoutHandlers(deps.Config)
	mux.Handle("/api/checkout", requestID(http.HandlerFunc(checkoutHandlers.HandleCheckout)))

	// Stripe webhook (signature-authenticated)
	webhookHandler := stripehook.New(deps.Config.StripeWebhookSecret, deps.Config.StripeAPIKey)
	webhookLimiter := NewRateLimiter(120, time.Minute)
	mux.Handle("/api/stripe/webhook", webhookLimiter.Middleware(webhookHandler))
}

// requestID stamps a request ID onto the context and echoes it back in the
// X-Request-ID response header.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, id := logging.WithRequestID(r.Context(), r.Header.Get("X-Request-ID"))
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
