package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/civicprep/civicprep/internal/retry"
	"github.com/civicprep/civicprep/internal/saveguard"
	"github.com/civicprep/civicprep/internal/store"
)

// ResultWriter stores a finished test remotely.
type ResultWriter interface {
	InsertResult(ctx context.Context, r store.PendingResult) error
}

// Enqueuer holds results for a later sync.
type Enqueuer interface {
	Enqueue(ctx context.Context, r store.PendingResult) (string, error)
}

// Outcome reports where a saved result ended up.
type Outcome string

const (
	OutcomeSaved  Outcome = "saved"
	OutcomeQueued Outcome = "queued"
)

// Saver persists finished tests through a save guard. Remote writes are
// retried; a transient failure that outlasts the retries, or a missing
// remote, queues the result for the sync queue. Permanent failures are
// returned.
type Saver struct {
	guard  *saveguard.Guard[Outcome]
	remote ResultWriter
	queue  Enqueuer
	retry  retry.Config
	logger *slog.Logger
}

// SaverOption configures a Saver.
type SaverOption func(*Saver)

// WithSaverLogger sets the logger.
func WithSaverLogger(l *slog.Logger) SaverOption {
	return func(s *Saver) { s.logger = l }
}

// WithSaverRetry overrides the remote write retry schedule.
func WithSaverRetry(cfg retry.Config) SaverOption {
	return func(s *Saver) { s.retry = cfg }
}

// NewSaver creates a Saver. remote may be nil when no remote store is
// configured; queue may be nil when results should not be queued.
func NewSaver(remote ResultWriter, queue Enqueuer, opts ...SaverOption) *Saver {
	s := &Saver{
		remote: remote,
		queue:  queue,
		retry: retry.Config{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
			Jitter:      0.2,
		},
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	s.guard = saveguard.New[Outcome]().WithLogger(s.logger)
	return s
}

// State returns the guard state.
func (s *Saver) State() saveguard.State {
	return s.guard.State()
}

// OnStateChange subscribes to guard transitions.
func (s *Saver) OnStateChange(fn func(saveguard.State)) func() {
	return s.guard.OnStateChange(fn)
}

// Reset returns the guard to idle after a save.
func (s *Saver) Reset() error {
	return s.guard.Reset()
}

// Save stores r. Concurrent calls while a save runs share its outcome.
func (s *Saver) Save(ctx context.Context, r store.PendingResult) (Outcome, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	return s.guard.Save(ctx, func(ctx context.Context) (Outcome, error) {
		if s.remote == nil {
			return s.enqueue(ctx, r, nil)
		}

		cfg := s.retry
		cfg.OnRetry = func(attempt int, err error, wait time.Duration) {
			s.logger.Debug("retrying result save", "id", r.ID, "attempt", attempt, "wait", wait, "error", err)
		}
		_, err := retry.Do(ctx, cfg, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.remote.InsertResult(ctx, r)
		})
		if err == nil {
			return OutcomeSaved, nil
		}
		if !retry.IsTransient(err) {
			return "", fmt.Errorf("save result: %w", err)
		}
		return s.enqueue(ctx, r, err)
	})
}

func (s *Saver) enqueue(ctx context.Context, r store.PendingResult, cause error) (Outcome, error) {
	if s.queue == nil {
		if cause == nil {
			return "", fmt.Errorf("save result: no remote store or sync queue configured")
		}
		return "", fmt.Errorf("save result: %w", cause)
	}
	if _, err := s.queue.Enqueue(ctx, r); err != nil {
		return "", err
	}
	if cause != nil {
		s.logger.Warn("result queued after remote failure", "id", r.ID, "error", cause)
	}
	return OutcomeQueued, nil
}
