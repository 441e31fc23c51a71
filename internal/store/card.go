package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/civicprep/civicprep/internal/spacedrep"
)

var cardSelectColumns = []string{
	colQuestionID, colDue, colLastReview, colStability, colDifficulty,
	colElapsedDays, colScheduledDays, colReps, colLapses, colState, colAddedAt,
}

type cardRepo struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (spacedrep.Card, error) {
	var (
		c                      spacedrep.Card
		due, lastReview, added int64
		state                  int
	)
	err := row.Scan(&c.QuestionID, &due, &lastReview, &c.Stability, &c.Difficulty,
		&c.ElapsedDays, &c.ScheduledDays, &c.Reps, &c.Lapses, &state, &added)
	if err != nil {
		return spacedrep.Card{}, err
	}
	c.Due = fromMillis(due)
	c.LastReview = fromMillis(lastReview)
	c.AddedAt = fromMillis(added)
	c.State = spacedrep.State(state)
	return c, nil
}

func (r *cardRepo) GetCard(ctx context.Context, questionID string) (spacedrep.Card, error) {
	query, args := sqlite.Select(cardSelectColumns...).
		From(entsql.Table(tableCards)).
		Where(entsql.EQ(colQuestionID, questionID)).
		Query()
	c, err := scanCard(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return spacedrep.Card{}, spacedrep.ErrCardNotFound
	}
	if err != nil {
		return spacedrep.Card{}, fmt.Errorf("query card %s: %w", questionID, err)
	}
	return c, nil
}

func (r *cardRepo) PutCard(ctx context.Context, c spacedrep.Card) error {
	query, args := sqlite.Insert(tableCards).
		Columns(cardSelectColumns...).
		Values(c.QuestionID, millis(c.Due), millis(c.LastReview), c.Stability, c.Difficulty,
			c.ElapsedDays, c.ScheduledDays, c.Reps, c.Lapses, int(c.State), millis(c.AddedAt)).
		OnConflict(entsql.ConflictColumns(colQuestionID), entsql.ResolveWithNewValues()).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save card %s: %w", c.QuestionID, err)
	}
	return nil
}

func (r *cardRepo) DeleteCard(ctx context.Context, questionID string) error {
	query, args := sqlite.Delete(tableCards).
		Where(entsql.EQ(colQuestionID, questionID)).
		Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete card %s: %w", questionID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return spacedrep.ErrCardNotFound
	}
	return nil
}

func (r *cardRepo) ListCards(ctx context.Context) ([]spacedrep.Card, error) {
	query, args := sqlite.Select(cardSelectColumns...).
		From(entsql.Table(tableCards)).
		OrderBy(colDue, colQuestionID).
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query cards: %w", err)
	}
	defer rows.Close()

	out := []spacedrep.Card{}
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cards: %w", err)
	}
	return out, nil
}
