package landing

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/solarly/landing-api/internal/landing/metrics"
	stripe "github.com/stripe/stripe-go/v82"
	stripesession "github.com/stripe/stripe-go/v82/checkout/session"
)

const (
	checkoutRequestBodyLimit = 64 * 1024
	checkoutTrialDays        = 7
	planAdvisorJournal       = "advisor_journal"

	stripeCheckoutSessionIDPlaceholder = "{CHECKOUT_SESSION_ID}"
)

// CheckoutHandlers creates Stripe Checkout sessions for the advisor journal
// subscription: a recurring monthly price plus a one-time trial fee, with a
// 7-day trial.
type CheckoutHandlers struct {
	cfg                   *Config
	createCheckoutSession func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// NewCheckoutHandlers creates the checkout session handlers.
func NewCheckoutHandlers(cfg *Config) *CheckoutHandlers {
	return &CheckoutHandlers{
		cfg:                   cfg,
		createCheckoutSession: stripesession.New,
	}
}

type checkoutRequest struct {
	Email  string `json:"email"`
	Origin string `json:"origin"`
}

// HandleCheckout validates the request and answers 200 {url} with the
// hosted Stripe redirect target. All session state lives with the payments
// provider; nothing is persisted locally.
func (h *CheckoutHandlers) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, checkoutRequestBodyLimit)
	var req checkoutRequest
	if err := decodeLenientJSON(r.Body, &req); err != nil {
		metrics.CheckoutSessionsTotal.WithLabelValues("invalid").Inc()
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Email) == "" {
		metrics.CheckoutSessionsTotal.WithLabelValues("invalid").Inc()
		writeError(w, http.StatusBadRequest, "missing email")
		return
	}
	cleanEmail, ok := normalizeEmail(req.Email)
	if !ok {
		metrics.CheckoutSessionsTotal.WithLabelValues("invalid").Inc()
		writeError(w, http.StatusBadRequest, "invalid email")
		return
	}

	if !h.cfg.CheckoutConfigured() {
		log.Error().Msg("checkout: Stripe key or price IDs not configured")
		metrics.CheckoutSessionsTotal.WithLabelValues("misconfigured").Inc()
		writeError(w, http.StatusInternalServerError, "server misconfigured")
		return
	}

	baseURL := h.redirectBase(req.Origin)
	stripe.Key = h.cfg.StripeAPIKey

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		CustomerEmail: stripe.String(cleanEmail),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(h.cfg.PriceMonthlyID),
				Quantity: stripe.Int64(1),
			},
			{
				Price:    stripe.String(h.cfg.PriceTrialFeeID),
				Quantity: stripe.Int64(1),
			},
		},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			TrialPeriodDays: stripe.Int64(checkoutTrialDays),
			Metadata: map[string]string{
				"solarly_plan": planAdvisorJournal,
			},
		},
		Metadata: map[string]string{
			"solarly_plan":  planAdvisorJournal,
			"solarly_email": cleanEmail,
		},
		SuccessURL:          stripe.String(baseURL + "/thanks?session_id=" + stripeCheckoutSessionIDPlaceholder),
		CancelURL:           stripe.String(baseURL + "#pricing"),
		AllowPromotionCodes: stripe.Bool(false),
	}

	session, err := h.createCheckoutSession(params)
	if err != nil || session == nil || strings.TrimSpace(session.URL) == "" {
		log.Error().Err(err).Str("email", cleanEmail).Msg("checkout session creation failed")
		metrics.CheckoutSessionsTotal.WithLabelValues("provider_error").Inc()
		writeError(w, http.StatusInternalServerError, "failed to create checkout session")
		return
	}

	metrics.CheckoutSessionsTotal.WithLabelValues("created").Inc()
	writeJSON(w, http.StatusOK, map[string]string{"url": session.URL})
}

// redirectBase picks the base URL for success/cancel redirects: the
// caller-supplied origin when it is a sane absolute URL, else the
// configured site URL.
func (h *CheckoutHandlers) redirectBase(origin string) string {
	if isValidOrigin(origin) {
		return strings.TrimRight(strings.TrimSpace(origin), "/")
	}
	base := strings.TrimSpace(h.cfg.SiteURL)
	if base == "" {
		base = defaultSiteURL
	}
	return strings.TrimRight(base, "/")
}
