package llm

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/civicprep/civicprep/internal/retry"
	"github.com/civicprep/civicprep/internal/store"
)

type purposeKey struct{}

// WithPurpose labels requests made with ctx in the event log.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the label set by WithPurpose, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok {
		return v
	}
	return "unknown"
}

// recorder writes every request to the LLM event log.
type recorder struct {
	inner  Provider
	name   string
	events store.EventRepo
	logger *slog.Logger
}

// WithEvents records each request made through p. A nil repo only logs.
func WithEvents(p Provider, providerName string, events store.EventRepo, logger *slog.Logger) Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &recorder{inner: p, name: providerName, events: events, logger: logger}
}

func (r *recorder) Model() string { return r.inner.Model() }

func (r *recorder) Complete(ctx context.Context, p Prompt) (*Completion, error) {
	start := time.Now()
	c, err := r.inner.Complete(ctx, p)

	ev := store.LLMRequestEventData{
		Provider:    r.name,
		Model:       r.inner.Model(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: transcript(p),
	}
	if c != nil {
		ev.Model = c.Model
		ev.InputTokens = c.Usage.Input
		ev.OutputTokens = c.Usage.Output
		ev.ResponseBody = string(c.JSON)
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
	}
	r.logger.Debug("llm request",
		"provider", r.name, "model", ev.Model, "purpose", ev.Purpose,
		"latency_ms", ev.LatencyMs, "success", ev.Success)

	if r.events != nil {
		if logErr := r.events.AppendLLMRequest(context.WithoutCancel(ctx), ev); logErr != nil {
			r.logger.Warn("record LLM request", "error", logErr)
		}
	}
	return c, err
}

// transcript renders a prompt for the event log.
func transcript(p Prompt) string {
	var b strings.Builder
	if p.System != "" {
		b.WriteString("[system]\n" + p.System + "\n\n")
	}
	b.WriteString("[user]\n" + p.User + "\n")
	if p.Schema != nil {
		if def, err := json.Marshal(p.Schema.Definition); err == nil {
			b.WriteString("\n[schema " + p.Schema.Name + "]\n" + string(def) + "\n")
		}
	}
	return b.String()
}

// retrier retries unavailable and rate-limited requests with backoff, and
// an invalid answer once.
type retrier struct {
	inner   Provider
	cfg     RetryConfig
	timeout time.Duration
}

// WithRetry retries p's transient failures. A positive timeout bounds each
// call including its retries.
func WithRetry(p Provider, cfg RetryConfig, timeout time.Duration) Provider {
	return &retrier{inner: p, cfg: cfg, timeout: timeout}
}

func (r *retrier) Model() string { return r.inner.Model() }

func (r *retrier) Complete(ctx context.Context, p Prompt) (*Completion, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	invalidSeen := false
	cfg := retry.Config{
		MaxAttempts: r.cfg.MaxAttempts,
		InitialWait: r.cfg.InitialWait,
		MaxWait:     r.cfg.MaxWait,
		Multiplier:  r.cfg.Multiplier,
		Jitter:      0.2,
		ShouldRetry: func(err error) bool {
			var e *Error
			if !errors.As(err, &e) {
				return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
			}
			switch e.Kind {
			case KindUnavailable, KindRateLimited:
				return true
			case KindInvalid:
				retryInvalid := !invalidSeen
				invalidSeen = true
				return retryInvalid
			default:
				return false
			}
		},
		RetryAfter: func(err error) time.Duration {
			var e *Error
			if errors.As(err, &e) {
				return e.RetryAfter
			}
			return 0
		},
	}
	return retry.Do(ctx, cfg, func(ctx context.Context) (*Completion, error) {
		return r.inner.Complete(ctx, p)
	})
}
