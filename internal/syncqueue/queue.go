// Package syncqueue holds finished test results locally until the remote
// store accepts them.
package syncqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/civicprep/civicprep/internal/retry"
	"github.com/civicprep/civicprep/internal/store"
)

// MaxAttempts is how many times Flush tries a single result per run.
const MaxAttempts = 5

// ErrFlushInProgress is returned when Flush is called while another flush runs.
var ErrFlushInProgress = errors.New("sync already in progress")

// Uploader sends one result to the remote store.
type Uploader interface {
	InsertResult(ctx context.Context, r store.PendingResult) error
}

// Status is the phase reported through Progress.
type Status string

const (
	StatusSyncing Status = "syncing"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Progress is reported after each result is processed.
type Progress struct {
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Status  Status `json:"status"`
}

// SyncResult counts the outcome of a flush.
type SyncResult struct {
	Synced int `json:"synced"`
	Failed int `json:"failed"`
}

// Queue persists pending results and pushes them to an Uploader.
type Queue struct {
	repo     store.PendingRepo
	uploader Uploader
	retry    retry.Config
	logger   *slog.Logger
	now      func() time.Time

	flushing sync.Mutex
}

// Option customises a Queue.
type Option func(*Queue)

// WithLogger sets the logger. Nil keeps slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(q *Queue) {
		if l != nil {
			q.logger = l
		}
	}
}

// WithRetry overrides the per-result backoff schedule.
func WithRetry(cfg retry.Config) Option {
	return func(q *Queue) { q.retry = cfg }
}

// WithClock sets the clock used to stamp enqueued results.
func WithClock(now func() time.Time) Option {
	return func(q *Queue) { q.now = now }
}

// New creates a Queue. uploader may be nil when no remote is configured,
// in which case Flush fails and everything stays queued.
func New(repo store.PendingRepo, uploader Uploader, opts ...Option) *Queue {
	q := &Queue{
		repo:     repo,
		uploader: uploader,
		retry: retry.Config{
			MaxAttempts: MaxAttempts,
			InitialWait: time.Second,
			MaxWait:     time.Minute,
			Multiplier:  2,
			Jitter:      0.2,
		},
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(q)
	}
	return q
}

// Enqueue stores r for a later flush, assigning an ID and timestamp if missing.
func (q *Queue) Enqueue(ctx context.Context, r store.PendingResult) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = q.now()
	}
	if r.Responses == nil {
		r.Responses = []store.PendingResponse{}
	}
	if err := q.repo.Enqueue(ctx, r); err != nil {
		return "", fmt.Errorf("enqueue result: %w", err)
	}
	q.logger.Info("result queued for sync", "id", r.ID, "score", r.Score)
	return r.ID, nil
}

// PendingCount returns how many results are waiting.
func (q *Queue) PendingCount(ctx context.Context) (int, error) {
	return q.repo.Count(ctx)
}

// Flush uploads every pending result in enqueue order. Each result gets
// up to MaxAttempts tries; permanent errors stop its retries at once.
// Results that fail stay queued for the next flush.
func (q *Queue) Flush(ctx context.Context, onProgress func(Progress)) (SyncResult, error) {
	if !q.flushing.TryLock() {
		return SyncResult{}, ErrFlushInProgress
	}
	defer q.flushing.Unlock()

	report := func(p Progress) {
		if onProgress != nil {
			onProgress(p)
		}
	}

	pending, err := q.repo.List(ctx)
	if err != nil {
		return SyncResult{}, fmt.Errorf("list pending results: %w", err)
	}
	if len(pending) == 0 {
		return SyncResult{}, nil
	}
	if q.uploader == nil {
		return SyncResult{}, errors.New("no remote store configured")
	}

	total := len(pending)
	var res SyncResult
	report(Progress{Current: 0, Total: total, Status: StatusSyncing})

	for i, p := range pending {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if q.syncOne(ctx, p) {
			res.Synced++
		} else {
			res.Failed++
		}
		report(Progress{Current: i + 1, Total: total, Status: StatusSyncing})
	}

	final := StatusSuccess
	if res.Failed > 0 {
		final = StatusError
	}
	report(Progress{Current: total, Total: total, Status: final})

	q.logger.Info("sync finished", "synced", res.Synced, "failed", res.Failed)
	return res, nil
}

func (q *Queue) syncOne(ctx context.Context, p store.PendingResult) bool {
	cfg := q.retry
	if cfg.ShouldRetry == nil {
		cfg.ShouldRetry = retryable
	}
	cfg.OnRetry = func(attempt int, err error, wait time.Duration) {
		q.logger.Debug("retrying result sync", "id", p.ID, "attempt", attempt, "wait", wait, "error", err)
	}

	_, err := retry.Do(ctx, cfg, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, q.uploader.InsertResult(ctx, p)
	})
	if err != nil {
		q.logger.Error("result sync failed", "id", p.ID, "transient", retry.IsTransient(err), "error", err)
		if rerr := q.repo.RecordAttempt(context.WithoutCancel(ctx), p.ID, err.Error()); rerr != nil {
			q.logger.Warn("record sync attempt", "id", p.ID, "error", rerr)
		}
		return false
	}

	if err := q.repo.Remove(ctx, p.ID); err != nil {
		// Uploaded but still queued; the next flush re-sends it and the
		// remote insert is keyed on the result ID.
		q.logger.Warn("remove synced result", "id", p.ID, "error", err)
	}
	return true
}

// retryable retries everything except errors explicitly marked permanent
// and cancellation.
func retryable(err error) bool {
	var perm *retry.PermanentError
	if errors.As(err, &perm) {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
