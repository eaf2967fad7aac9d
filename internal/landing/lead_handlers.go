package landing

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/solarly/landing-api/internal/landing/email"
	"github.com/solarly/landing-api/internal/landing/metrics"
	"github.com/solarly/landing-api/internal/landing/signups"
)

const leadRequestBodyLimit = 64 * 1024

// signupStore is the slice of signups.Store the lead handlers need.
type signupStore interface {
	Configured() bool
	Insert(ctx context.Context, signup signups.Signup) error
	Ping(ctx context.Context) error
}

// signupNotifier dispatches best-effort notifications for a recorded lead.
type signupNotifier interface {
	NotifySignup(ctx context.Context, sig email.SignupNotification)
}

// LeadHandlers captures hero-form leads into the signups store and fires
// best-effort notifications.
type LeadHandlers struct {
	store    signupStore
	notifier signupNotifier
	now      func() time.Time
}

// NewLeadHandlers creates the lead intake handlers.
func NewLeadHandlers(store signupStore, notifier signupNotifier) *LeadHandlers {
	return &LeadHandlers{
		store:    store,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type leadRequest struct {
	Email  string `json:"email"`
	Tier   string `json:"tier"`
	Source string `json:"source"`
}

// HandleLead accepts a landing-page lead, writes one row to the signups
// store and answers 200 {ok:true}. The insert is the primary operation: a
// store failure fails the whole request, while notification failures are
// absorbed because the lead is already durably recorded.
func (h *LeadHandlers) HandleLead(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, leadRequestBodyLimit)
	var req leadRequest
	if err := decodeLenientJSON(r.Body, &req); err != nil {
		metrics.LeadsTotal.WithLabelValues("invalid").Inc()
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cleanEmail, ok := normalizeEmail(req.Email)
	if !ok {
		metrics.LeadsTotal.WithLabelValues("invalid").Inc()
		writeError(w, http.StatusBadRequest, "invalid email")
		return
	}

	tier := strings.ToLower(strings.TrimSpace(req.Tier))
	if tier == "" {
		tier = "unknown"
	}
	source := strings.ToLower(strings.TrimSpace(req.Source))
	if source == "" {
		source = "hero_form"
	}

	// Fold the tier into the source so leads can be segmented in one column.
	segment := source
	if tier != "unknown" {
		segment = source + "_" + tier
	}

	if !h.store.Configured() {
		log.Error().Msg("lead intake: signups store not configured")
		metrics.LeadsTotal.WithLabelValues("misconfigured").Inc()
		writeError(w, http.StatusInternalServerError, "server misconfigured")
		return
	}

	signup := signups.Signup{
		Email:     cleanEmail,
		Source:    segment,
		CreatedAt: h.now(),
	}
	if err := h.store.Insert(r.Context(), signup); err != nil {
		log.Error().Err(err).Str("email", cleanEmail).Msg("lead intake: signups insert failed")
		metrics.LeadsTotal.WithLabelValues("store_error").Inc()
		writeError(w, http.StatusInternalServerError, "failed to save lead")
		return
	}

	log.Info().Str("email", cleanEmail).Str("source", segment).Msg("lead saved")
	metrics.LeadsTotal.WithLabelValues("saved").Inc()

	if h.notifier != nil {
		h.notifier.NotifySignup(r.Context(), email.SignupNotification{
			Email:   cleanEmail,
			Segment: segment,
		})
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// HandleHeartbeat issues a lightweight read against the signups store.
// Called on a schedule by an external pinger so the hosted database counts
// activity without taking writes.
func (h *LeadHandlers) HandleHeartbeat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	if !h.store.Configured() {
		writeError(w, http.StatusInternalServerError, "server misconfigured")
		return
	}

	if err := h.store.Ping(r.Context()); err != nil {
		log.Error().Err(err).Msg("heartbeat: signups ping failed")
		writeError(w, http.StatusInternalServerError, "heartbeat failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"ts": h.now().Format(time.RFC3339),
	})
}
