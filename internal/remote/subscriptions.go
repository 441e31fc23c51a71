package remote

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

// SubscriptionKeys are the browser's push encryption keys.
type SubscriptionKeys struct {
	P256dh string `json:"p256dh" validate:"required"`
	Auth   string `json:"auth" validate:"required"`
}

// Subscription is one Web Push endpoint registered by a user.
type Subscription struct {
	UserID            string           `json:"userId"`
	Endpoint          string           `json:"endpoint"`
	Keys              SubscriptionKeys `json:"keys"`
	ReminderFrequency string           `json:"reminderFrequency"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}

const selectSubscription = `
	SELECT user_id, endpoint, keys, reminder_frequency, updated_at
	FROM push_subscriptions`

func scanSubscription(row pgx.CollectableRow) (Subscription, error) {
	var sub Subscription
	err := row.Scan(&sub.UserID, &sub.Endpoint, &sub.Keys, &sub.ReminderFrequency, &sub.UpdatedAt)
	return sub, err
}

// Subscriptions returns the subscriptions registered by userID.
func (s *Store) Subscriptions(ctx context.Context, userID string) ([]Subscription, error) {
	rows, err := s.db.Query(ctx, selectSubscription+` WHERE user_id = $1`, userID)
	if err != nil {
		return nil, classify("query subscriptions", err)
	}
	subs, err := pgx.CollectRows(rows, scanSubscription)
	if err != nil {
		return nil, classify("scan subscriptions", err)
	}
	return subs, nil
}

// SubscriptionsByFrequency returns every subscription with the given
// reminder frequency.
func (s *Store) SubscriptionsByFrequency(ctx context.Context, frequency string) ([]Subscription, error) {
	rows, err := s.db.Query(ctx, selectSubscription+` WHERE reminder_frequency = $1 ORDER BY user_id`, frequency)
	if err != nil {
		return nil, classify("query subscriptions by frequency", err)
	}
	subs, err := pgx.CollectRows(rows, scanSubscription)
	if err != nil {
		return nil, classify("scan subscriptions", err)
	}
	return subs, nil
}

// UpsertSubscription registers sub, replacing the user's previous one.
func (s *Store) UpsertSubscription(ctx context.Context, sub Subscription) error {
	if sub.ReminderFrequency == "" {
		sub.ReminderFrequency = "daily"
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO push_subscriptions (user_id, endpoint, keys, reminder_frequency, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			endpoint = EXCLUDED.endpoint,
			keys = EXCLUDED.keys,
			reminder_frequency = EXCLUDED.reminder_frequency,
			updated_at = NOW()`,
		sub.UserID, sub.Endpoint, sub.Keys, sub.ReminderFrequency)
	if err != nil {
		return classify("upsert subscription", err)
	}
	return nil
}

// DeleteSubscription removes the user's subscription.
func (s *Store) DeleteSubscription(ctx context.Context, userID string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM push_subscriptions WHERE user_id = $1`, userID); err != nil {
		return classify("delete subscription", err)
	}
	return nil
}
