package push

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/civicprep/civicprep/internal/remote"
)

// SubscriptionStore is what the Notifier reads and prunes.
type SubscriptionStore interface {
	DueCountsByUser(ctx context.Context, now time.Time) (map[string]int, error)
	Subscriptions(ctx context.Context, userID string) ([]remote.Subscription, error)
	SubscriptionsByFrequency(ctx context.Context, frequency string) ([]remote.Subscription, error)
	DeleteSubscription(ctx context.Context, userID string) error
}

// Report counts delivered and failed notifications.
type Report struct {
	Notified int `json:"notified"`
	Errors   int `json:"errors"`
}

// SendReport counts a targeted send.
type SendReport struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// Notifier finds who needs a reminder and sends it.
type Notifier struct {
	store  SubscriptionStore
	sender Sender
	dedupe Deduper
	logger *slog.Logger
	rng    *rand.Rand
}

// NewNotifier creates a Notifier. dedupe may be nil to send every time.
func NewNotifier(store SubscriptionStore, sender Sender, dedupe Deduper, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		store:  store,
		sender: sender,
		dedupe: dedupe,
		logger: logger,
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// WithRand sets the source used to pick message templates.
func (n *Notifier) WithRand(r *rand.Rand) *Notifier {
	n.rng = r
	return n
}

// RemindDue notifies every user with cards due at now. A user whose
// subscription lookup fails counts as one error; each failed send counts
// as one error.
func (n *Notifier) RemindDue(ctx context.Context, now time.Time) (Report, error) {
	counts, err := n.store.DueCountsByUser(ctx, now)
	if err != nil {
		return Report{}, fmt.Errorf("load due counts: %w", err)
	}

	users := make([]string, 0, len(counts))
	for u, c := range counts {
		if c > 0 {
			users = append(users, u)
		}
	}
	sort.Strings(users)

	var rep Report
	for _, userID := range users {
		if err := ctx.Err(); err != nil {
			return rep, err
		}

		subs, err := n.store.Subscriptions(ctx, userID)
		if err != nil {
			n.logger.Warn("load subscriptions", "user", userID, "error", err)
			rep.Errors++
			continue
		}
		if len(subs) == 0 {
			continue
		}

		if n.dedupe != nil {
			key := "srs-reminder:" + userID
			ok, err := n.dedupe.Claim(ctx, key, ReminderWindow)
			if err != nil {
				n.logger.Warn("reminder dedupe unavailable, sending anyway", "user", userID, "error", err)
			} else if !ok {
				n.logger.Debug("reminder already sent in window", "user", userID)
				continue
			}
		}

		sent, failed := n.deliver(ctx, subs, SRSReminder(counts[userID]))
		rep.Notified += sent
		rep.Errors += failed
	}

	n.logger.Info("srs reminders sent", "users", len(users), "notified", rep.Notified, "errors", rep.Errors)
	return rep, nil
}

// NudgeWeakArea sends one weak-area nudge to userID. days < 0 means unknown.
func (n *Notifier) NudgeWeakArea(ctx context.Context, userID, category string, days int) (SendReport, error) {
	subs, err := n.store.Subscriptions(ctx, userID)
	if err != nil {
		return SendReport{}, fmt.Errorf("load subscriptions: %w", err)
	}
	if len(subs) == 0 {
		return SendReport{}, nil
	}
	p := WeakAreaNudge(category, days, n.rng.IntN(NumWeakAreaTemplates))
	sent, failed := n.deliver(ctx, subs, p)
	return SendReport{Sent: sent, Failed: failed}, nil
}

// SendStudyReminder sends one randomly picked study reminder to every
// subscription with the given frequency.
func (n *Notifier) SendStudyReminder(ctx context.Context, frequency string) (SendReport, error) {
	subs, err := n.store.SubscriptionsByFrequency(ctx, frequency)
	if err != nil {
		return SendReport{}, fmt.Errorf("load subscriptions: %w", err)
	}
	p := StudyReminder(n.rng.IntN(NumStudyTemplates))
	sent, failed := n.deliver(ctx, subs, p)
	return SendReport{Sent: sent, Failed: failed}, nil
}

// deliver sends p to each subscription, pruning the ones that are gone.
func (n *Notifier) deliver(ctx context.Context, subs []remote.Subscription, p Payload) (sent, failed int) {
	for _, sub := range subs {
		err := n.sender.Send(ctx, sub, p)
		if err == nil {
			sent++
			continue
		}
		failed++
		n.logger.Warn("push send failed", "user", sub.UserID, "tag", p.Tag, "error", err)
		if IsGone(err) {
			if derr := n.store.DeleteSubscription(ctx, sub.UserID); derr != nil {
				n.logger.Warn("delete expired subscription", "user", sub.UserID, "error", derr)
			} else {
				n.logger.Info("expired subscription removed", "user", sub.UserID)
			}
		}
	}
	return sent, failed
}
