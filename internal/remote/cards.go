package remote

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/civicprep/civicprep/internal/spacedrep"
)

const upsertCardSQL = `
	INSERT INTO srs_cards (user_id, question_id, due, stability, difficulty, elapsed_days,
	                       scheduled_days, reps, lapses, state, last_review, added_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
	ON CONFLICT (user_id, question_id) DO UPDATE SET
		due = EXCLUDED.due,
		stability = EXCLUDED.stability,
		difficulty = EXCLUDED.difficulty,
		elapsed_days = EXCLUDED.elapsed_days,
		scheduled_days = EXCLUDED.scheduled_days,
		reps = EXCLUDED.reps,
		lapses = EXCLUDED.lapses,
		state = EXCLUDED.state,
		last_review = EXCLUDED.last_review,
		updated_at = NOW()`

// UpsertCards writes a user's cards in a single batch.
func (s *Store) UpsertCards(ctx context.Context, userID string, cards []spacedrep.Card) error {
	if len(cards) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, c := range cards {
		var lastReview *time.Time
		if c.HasReview() {
			lr := c.LastReview
			lastReview = &lr
		}
		batch.Queue(upsertCardSQL,
			userID, c.QuestionID, c.Due, c.Stability, c.Difficulty, c.ElapsedDays,
			c.ScheduledDays, c.Reps, c.Lapses, int16(c.State), lastReview, c.AddedAt,
		)
	}

	br := s.db.SendBatch(ctx, batch)
	for range cards {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return classify("upsert srs card", err)
		}
	}
	if err := br.Close(); err != nil {
		return classify("upsert srs cards", err)
	}
	return nil
}

// PullCards returns every card stored for userID.
func (s *Store) PullCards(ctx context.Context, userID string) ([]spacedrep.Card, error) {
	rows, err := s.db.Query(ctx, `
		SELECT question_id, due, stability, difficulty, elapsed_days, scheduled_days,
		       reps, lapses, state, last_review, added_at
		FROM srs_cards
		WHERE user_id = $1
		ORDER BY question_id`, userID)
	if err != nil {
		return nil, classify("query srs cards", err)
	}
	cards, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (spacedrep.Card, error) {
		var (
			c          spacedrep.Card
			state      int16
			lastReview *time.Time
		)
		err := row.Scan(&c.QuestionID, &c.Due, &c.Stability, &c.Difficulty, &c.ElapsedDays,
			&c.ScheduledDays, &c.Reps, &c.Lapses, &state, &lastReview, &c.AddedAt)
		c.State = spacedrep.State(state)
		if lastReview != nil {
			c.LastReview = *lastReview
		}
		return c, err
	})
	if err != nil {
		return nil, classify("scan srs cards", err)
	}
	return cards, nil
}

// DeleteCard removes one card. Deleting a missing card is not an error.
func (s *Store) DeleteCard(ctx context.Context, userID, questionID string) error {
	_, err := s.db.Exec(ctx,
		`DELETE FROM srs_cards WHERE user_id = $1 AND question_id = $2`,
		userID, questionID)
	if err != nil {
		return classify("delete srs card", err)
	}
	return nil
}

// DueCountsByUser returns, per user, how many cards are due at now.
func (s *Store) DueCountsByUser(ctx context.Context, now time.Time) (map[string]int, error) {
	rows, err := s.db.Query(ctx, `
		SELECT user_id, COUNT(*)
		FROM srs_cards
		WHERE due <= $1
		GROUP BY user_id`, now)
	if err != nil {
		return nil, classify("query due counts", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			userID string
			n      int
		)
		if err := rows.Scan(&userID, &n); err != nil {
			return nil, classify("scan due count", err)
		}
		counts[userID] = n
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate due counts", err)
	}
	return counts, nil
}
