package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// sqlite builds dialect-aware queries for the local tables.
var sqlite = entsql.Dialect(dialect.SQLite)

type answerRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *answerRepo) Append(ctx context.Context, a StoredAnswer) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := sqlite.Insert(tableAnswers).
		Columns(colSequence, colQuestionID, colIsCorrect, colSessionType, colAnsweredAt).
		Values(seqNum, a.QuestionID, a.IsCorrect, string(a.SessionType), millis(a.Timestamp)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save answer: %w", err)
	}
	return nil
}

func (r *answerRepo) History(ctx context.Context) ([]StoredAnswer, error) {
	query, args := sqlite.Select(colQuestionID, colIsCorrect, colSessionType, colAnsweredAt).
		From(entsql.Table(tableAnswers)).
		OrderBy(colSequence).
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	defer rows.Close()

	out := []StoredAnswer{}
	for rows.Next() {
		var (
			a        StoredAnswer
			st       string
			answered int64
		)
		if err := rows.Scan(&a.QuestionID, &a.IsCorrect, &st, &answered); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		a.SessionType = SessionType(st)
		a.Timestamp = fromMillis(answered)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate answers: %w", err)
	}
	return out, nil
}

// HistoryReader reads the answer history for scoring. Storage failures are
// logged and read as an empty history, so callers never see an error.
type HistoryReader struct {
	repo   AnswerRepo
	logger *slog.Logger
}

// NewHistoryReader wraps repo. A nil logger uses slog.Default().
func NewHistoryReader(repo AnswerRepo, logger *slog.Logger) *HistoryReader {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryReader{repo: repo, logger: logger}
}

// GetAnswerHistory returns the full history, or an empty slice on failure.
func (h *HistoryReader) GetAnswerHistory(ctx context.Context) []StoredAnswer {
	hist, err := h.repo.History(ctx)
	if err != nil {
		h.logger.Warn("read answer history failed", "error", err)
		return []StoredAnswer{}
	}
	return hist
}
