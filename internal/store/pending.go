package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

type pendingRepo struct {
	db *sql.DB
}

func (r *pendingRepo) Enqueue(ctx context.Context, p PendingResult) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal pending result: %w", err)
	}
	query, args := sqlite.Insert(tablePending).
		Columns(colID, colUserID, colPayload, colAttempts, colCreatedAt).
		Values(p.ID, p.UserID, string(payload), p.Attempts, millis(p.CreatedAt)).
		OnConflict(entsql.ConflictColumns(colID), entsql.ResolveWithNewValues()).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save pending result: %w", err)
	}
	return nil
}

// List returns pending results oldest first.
func (r *pendingRepo) List(ctx context.Context) ([]PendingResult, error) {
	query, args := sqlite.Select(colPayload, colAttempts).
		From(entsql.Table(tablePending)).
		OrderBy(colCreatedAt, colID).
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query pending results: %w", err)
	}
	defer rows.Close()

	out := []PendingResult{}
	for rows.Next() {
		var (
			payload  string
			attempts int
		)
		if err := rows.Scan(&payload, &attempts); err != nil {
			return nil, fmt.Errorf("scan pending result: %w", err)
		}
		var p PendingResult
		if err := json.Unmarshal([]byte(payload), &p); err != nil {
			return nil, fmt.Errorf("unmarshal pending result: %w", err)
		}
		p.Attempts = attempts
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending results: %w", err)
	}
	return out, nil
}

func (r *pendingRepo) Remove(ctx context.Context, id string) error {
	query, args := sqlite.Delete(tablePending).
		Where(entsql.EQ(colID, id)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("remove pending result %s: %w", id, err)
	}
	return nil
}

func (r *pendingRepo) RecordAttempt(ctx context.Context, id string, lastErr string) error {
	query, args := sqlite.Update(tablePending).
		Add(colAttempts, 1).
		Set(colLastError, lastErr).
		Where(entsql.EQ(colID, id)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("record attempt %s: %w", id, err)
	}
	return nil
}

func (r *pendingRepo) Count(ctx context.Context) (int, error) {
	query, args := sqlite.Select(entsql.Count("*")).
		From(entsql.Table(tablePending)).
		Query()
	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count pending results: %w", err)
	}
	return n, nil
}
