package email

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/solarly/landing-api/internal/landing/metrics"
)

// SignupNotification carries the normalized lead data the notifier needs.
type SignupNotification struct {
	Email   string
	Segment string
}

// Notifier sends best-effort signup notifications: a welcome email to the
// lead and an internal alert to the operator address. Both sends are
// dispatched concurrently and awaited jointly; a failed send is logged and
// counted, never surfaced to the caller — by the time notifications run the
// lead is already durably recorded.
type Notifier struct {
	sender  Sender
	from    string
	alertTo string
}

// NewNotifier creates a signup notifier. sender may be nil, in which case
// every notification is skipped with a log line.
func NewNotifier(sender Sender, from, alertTo string) *Notifier {
	return &Notifier{
		sender:  sender,
		from:    strings.TrimSpace(from),
		alertTo: strings.TrimSpace(alertTo),
	}
}

type sendTask struct {
	kind string
	run  func(ctx context.Context) error
}

// NotifySignup dispatches the welcome and operator-alert emails in parallel
// and blocks until both settle. It never returns an error.
func (n *Notifier) NotifySignup(ctx context.Context, sig SignupNotification) {
	if n == nil || n.sender == nil || n.from == "" {
		log.Info().
			Str("email", sig.Email).
			Msg("signup notifications skipped (email sender not configured)")
		metrics.NotificationsTotal.WithLabelValues("welcome", "skipped").Inc()
		metrics.NotificationsTotal.WithLabelValues("alert", "skipped").Inc()
		return
	}

	tasks := []sendTask{
		{kind: "welcome", run: func(ctx context.Context) error {
			return n.sendWelcome(ctx, sig)
		}},
	}
	if n.alertTo != "" {
		tasks = append(tasks, sendTask{kind: "alert", run: func(ctx context.Context) error {
			return n.sendAlert(ctx, sig)
		}})
	} else {
		log.Info().Str("email", sig.Email).Msg("operator alert skipped (ALERT_EMAIL not set)")
		metrics.NotificationsTotal.WithLabelValues("alert", "skipped").Inc()
	}

	for _, settled := range settleAll(ctx, tasks) {
		if settled.err != nil {
			log.Warn().Err(settled.err).
				Str("kind", settled.kind).
				Str("email", sig.Email).
				Msg("signup notification failed (lead already recorded)")
			metrics.NotificationsTotal.WithLabelValues(settled.kind, "error").Inc()
			continue
		}
		metrics.NotificationsTotal.WithLabelValues(settled.kind, "sent").Inc()
	}
}

func (n *Notifier) sendWelcome(ctx context.Context, sig SignupNotification) error {
	htmlBody, textBody, err := RenderWelcomeEmail(WelcomeData{Name: FriendlyName(sig.Email)})
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, Message{
		From:    n.from,
		To:      sig.Email,
		Subject: "Welcome to Solarly",
		HTML:    htmlBody,
		Text:    textBody,
	})
}

func (n *Notifier) sendAlert(ctx context.Context, sig SignupNotification) error {
	htmlBody, textBody, err := RenderAlertEmail(AlertData{Email: sig.Email, Segment: sig.Segment})
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, Message{
		From:    n.from,
		To:      n.alertTo,
		Subject: "New Solarly signup",
		HTML:    htmlBody,
		Text:    textBody,
	})
}

type settledTask struct {
	kind string
	err  error
}

// settleAll runs every task concurrently and waits for all of them to
// settle. A failing task never cancels its siblings.
func settleAll(ctx context.Context, tasks []sendTask) []settledTask {
	results := make([]settledTask, len(tasks))
	var wg sync.WaitGroup
	for i, t := range tasks {
		wg.Add(1)
		go func(i int, t sendTask) {
			defer wg.Done()
			results[i] = settledTask{kind: t.kind, err: t.run(ctx)}
		}(i, t)
	}
	wg.Wait()
	return results
}
