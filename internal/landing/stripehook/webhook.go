// Package stripehook receives signed Stripe webhook events for the landing
// API: verify first, then dispatch on event type. Signature verification is
// the authentication mechanism for this endpoint.
package stripehook

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/solarly/landing-api/internal/landing/metrics"
	stripelib "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/webhook"
)

const webhookBodyLimit = 1024 * 1024 // 1 MiB

const defaultPlan = "advisor_journal"

// Handler handles incoming Stripe webhook events.
type Handler struct {
	secret      string
	apiKey      string
	getCustomer func(id string, params *stripelib.CustomerParams) (*stripelib.Customer, error)
}

type errorResponse struct {
	Error string `json:"error"`
}

type receivedResponse struct {
	Received bool `json:"received"`
}

// New creates a Stripe webhook HTTP handler.
func New(secret, apiKey string) *Handler {
	return &Handler{
		secret:      secret,
		apiKey:      apiKey,
		getCustomer: customer.Get,
	}
}

// ServeHTTP verifies the Stripe signature and dispatches the event. The raw
// verified bytes are the only basis for reconstructing the event. Any 2xx
// tells Stripe the event is accepted; a 5xx asks it to redeliver later, so
// dispatch errors map to 500 and everything else (including duplicate
// deliveries) maps to 200.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	eventType := "unknown"
	status := http.StatusOK
	defer func() {
		metrics.WebhookRequestsTotal.WithLabelValues(eventType, strconv.Itoa(status)).Inc()
		metrics.WebhookDuration.WithLabelValues(eventType).Observe(time.Since(start).Seconds())
	}()

	if r.Method != http.MethodPost {
		status = http.StatusMethodNotAllowed
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, status, errorResponse{Error: "method not allowed"})
		return
	}
	if strings.TrimSpace(h.secret) == "" {
		status = http.StatusBadRequest
		writeJSON(w, status, errorResponse{Error: "webhook not configured"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, webhookBodyLimit)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		status = http.StatusBadRequest
		writeJSON(w, status, errorResponse{Error: "failed to read request body"})
		return
	}

	sigHeader := r.Header.Get("Stripe-Signature")
	if strings.TrimSpace(sigHeader) == "" {
		status = http.StatusBadRequest
		writeJSON(w, status, errorResponse{Error: "missing Stripe signature"})
		return
	}

	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, h.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		status = http.StatusBadRequest
		writeJSON(w, status, errorResponse{Error: "invalid Stripe signature"})
		return
	}
	eventType = string(event.Type)

	if err := h.handleEvent(&event); err != nil {
		log.Error().Err(err).
			Str("event_id", event.ID).
			Str("type", string(event.Type)).
			Msg("Stripe webhook processing failed")
		status = http.StatusInternalServerError
		writeJSON(w, status, errorResponse{Error: "processing failed"})
		return
	}

	status = http.StatusOK
	writeJSON(w, status, receivedResponse{Received: true})
}

func (h *Handler) handleEvent(event *stripelib.Event) error {
	switch event.Type {
	case "checkout.session.completed":
		var session CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return fmt.Errorf("decode checkout.session: %w", err)
		}
		return h.handleCheckoutCompleted(session)

	case "customer.subscription.created", "customer.subscription.updated":
		var sub Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("decode subscription: %w", err)
		}
		return h.handleSubscriptionChanged(string(event.Type), sub)

	default:
		log.Info().
			Str("type", string(event.Type)).
			Str("event_id", event.ID).
			Msg("Stripe webhook ignored (unhandled type)")
		return nil
	}
}

// handleCheckoutCompleted marks the point where a trial durably starts.
// The account system that would record had_trial / tier=trialing lives
// outside this service, so for now the transition is only logged.
func (h *Handler) handleCheckoutCompleted(session CheckoutSession) error {
	email := session.Email()
	plan := strings.TrimSpace(session.Metadata["solarly_plan"])
	if plan == "" {
		plan = defaultPlan
	}

	log.Info().
		Str("session_id", session.ID).
		Str("email", email).
		Str("plan", plan).
		Msg("checkout session completed; trial started")
	return nil
}

// handleSubscriptionChanged resolves the subscription's owning customer to
// an email and logs the status transition (trialing, active, canceled, ...).
// A failed customer lookup is returned as an error so Stripe redelivers.
func (h *Handler) handleSubscriptionChanged(eventType string, sub Subscription) error {
	email := ""
	customerID := strings.TrimSpace(sub.Customer)
	if customerID != "" {
		stripelib.Key = h.apiKey
		cust, err := h.getCustomer(customerID, nil)
		if err != nil {
			return fmt.Errorf("lookup customer %s: %w", customerID, err)
		}
		if cust != nil {
			email = strings.TrimSpace(cust.Email)
		}
	}

	log.Info().
		Str("type", eventType).
		Str("subscription_id", sub.ID).
		Str("customer", customerID).
		Str("email", email).
		Str("status", sub.Status).
		Str("plan", sub.Metadata["solarly_plan"]).
		Msg("subscription status changed")
	return nil
}

// CheckoutSession is a minimal representation of a Stripe checkout.session
// event payload.
type CheckoutSession struct {
	ID              string `json:"id"`
	Mode            string `json:"mode"`
	Customer        string `json:"customer"`
	Subscription    string `json:"subscription"`
	CustomerEmail   string `json:"customer_email"`
	CustomerDetails struct {
		Email string `json:"email"`
	} `json:"customer_details"`
	Metadata map[string]string `json:"metadata"`
}

// Email returns the best available address for the session: the collected
// customer details first, then the metadata echo, then the prefill.
func (s *CheckoutSession) Email() string {
	if email := strings.TrimSpace(s.CustomerDetails.Email); email != "" {
		return email
	}
	if email := strings.TrimSpace(s.Metadata["solarly_email"]); email != "" {
		return email
	}
	return strings.TrimSpace(s.CustomerEmail)
}

// Subscription is a minimal representation of a Stripe subscription event
// payload.
type Subscription struct {
	ID                string `json:"id"`
	Customer          string `json:"customer"`
	Status            string `json:"status"`
	CancelAtPeriodEnd bool   `json:"cancel_at_period_end"`
	Items             struct {
		Data []struct {
			Price struct {
				ID       string            `json:"id"`
				Metadata map[string]string `json:"metadata"`
			} `json:"price"`
		} `json:"data"`
	} `json:"items"`
	Metadata map[string]string `json:"metadata"`
}

// FirstPriceID returns the price ID from the first subscription item.
func (s *Subscription) FirstPriceID() string {
	for _, item := range s.Items.Data {
		if priceID := strings.TrimSpace(item.Price.ID); priceID != "" {
			return priceID
		}
	}
	return ""
}

func writeJSON[T any](w http.ResponseWriter, status int, v T) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Int("status", status).Msg("stripehook: encode webhook response")
	}
}
