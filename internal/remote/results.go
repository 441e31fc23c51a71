package remote

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/civicprep/civicprep/internal/store"
)

// InsertResult stores a finished test and its responses in one transaction.
// Results are keyed on their client ID, so re-sending one is a no-op.
func (s *Store) InsertResult(ctx context.Context, r store.PendingResult) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return classify("begin result insert", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var testID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO mock_tests (client_id, user_id, score, total_questions, duration_seconds, passed, end_reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (client_id) DO NOTHING
		RETURNING id`,
		r.ID, r.UserID, r.Score, r.TotalQuestions, r.DurationSeconds, r.Passed, r.EndReason, r.CreatedAt,
	).Scan(&testID)
	if errors.Is(err, pgx.ErrNoRows) {
		s.logger.Debug("result already synced", "id", r.ID)
		return nil
	}
	if err != nil {
		return classify("insert mock test", err)
	}

	if len(r.Responses) > 0 {
		rows := make([][]any, len(r.Responses))
		for i, resp := range r.Responses {
			rows[i] = []any{
				testID, resp.QuestionID, resp.Category, resp.SelectedAnswer,
				resp.CorrectAnswer, resp.IsCorrect, resp.TimeSpentSeconds,
			}
		}
		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"mock_test_responses"},
			[]string{"mock_test_id", "question_id", "category", "selected_answer", "correct_answer", "is_correct", "time_spent_seconds"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return classify("insert test responses", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return classify("commit result insert", err)
	}
	s.logger.Info("result synced", "id", r.ID, "remote_id", testID, "responses", len(r.Responses))
	return nil
}

// TestSummary is one stored mock test without its responses.
type TestSummary struct {
	ID              int64     `json:"id"`
	ClientID        string    `json:"clientId"`
	Score           int       `json:"score"`
	TotalQuestions  int       `json:"totalQuestions"`
	DurationSeconds int       `json:"durationSeconds"`
	Passed          bool      `json:"passed"`
	EndReason       string    `json:"endReason"`
	CreatedAt       time.Time `json:"createdAt"`
}

// RecentResults returns a user's latest tests, newest first.
func (s *Store) RecentResults(ctx context.Context, userID string, limit int) ([]TestSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, client_id, score, total_questions, duration_seconds, passed, end_reason, created_at
		FROM mock_tests
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, classify("query recent results", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (TestSummary, error) {
		var t TestSummary
		err := row.Scan(&t.ID, &t.ClientID, &t.Score, &t.TotalQuestions, &t.DurationSeconds, &t.Passed, &t.EndReason, &t.CreatedAt)
		return t, err
	})
	if err != nil {
		return nil, classify("scan recent results", err)
	}
	return out, nil
}
