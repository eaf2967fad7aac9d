// Package metrics exposes Prometheus collectors for the landing API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LeadsTotal counts lead intake requests by outcome.
	LeadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "solarly",
		Subsystem: "landing",
		Name:      "leads_total",
		Help:      "Total lead intake requests by outcome.",
	}, []string{"outcome"})

	// NotificationsTotal counts best-effort notification sends by kind and outcome.
	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "solarly",
		Subsystem: "landing",
		Name:      "notifications_total",
		Help:      "Best-effort notification email sends by kind and outcome.",
	}, []string{"kind", "outcome"})

	// CheckoutSessionsTotal counts checkout session creation attempts by outcome.
	CheckoutSessionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "solarly",
		Subsystem: "landing",
		Name:      "checkout_sessions_total",
		Help:      "Checkout session creation attempts by outcome.",
	}, []string{"outcome"})

	// WebhookRequestsTotal counts Stripe webhook requests by event type and status.
	WebhookRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "solarly",
		Subsystem: "landing",
		Name:      "webhook_requests_total",
		Help:      "Total Stripe webhook requests by event type and HTTP status.",
	}, []string{"event_type", "status"})

	// WebhookDuration tracks Stripe webhook processing latency.
	WebhookDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "solarly",
		Subsystem: "landing",
		Name:      "webhook_duration_seconds",
		Help:      "Stripe webhook processing duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"event_type"})
)
