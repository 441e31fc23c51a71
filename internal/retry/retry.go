package retry

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// Config controls the backoff schedule for Do.
type Config struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
	// Jitter is the fractional spread applied to each wait, e.g. 0.2 for ±20%.
	Jitter float64
	// ShouldRetry decides whether err is worth another attempt.
	// Defaults to IsTransient.
	ShouldRetry func(err error) bool
	// RetryAfter, when set and returning a positive duration, overrides the
	// computed backoff for err.
	RetryAfter func(err error) time.Duration
	// OnRetry is called before sleeping, with the 1-based attempt that failed.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// DefaultConfig returns three attempts starting at one second and doubling.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		InitialWait: 1 * time.Second,
		MaxWait:     30 * time.Second,
		Multiplier:  2.0,
		Jitter:      0.2,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = def.MaxAttempts
	}
	if c.InitialWait <= 0 {
		c.InitialWait = def.InitialWait
	}
	if c.MaxWait <= 0 {
		c.MaxWait = def.MaxWait
	}
	if c.Multiplier <= 0 {
		c.Multiplier = def.Multiplier
	}
	if c.Jitter < 0 {
		c.Jitter = 0
	}
	if c.ShouldRetry == nil {
		c.ShouldRetry = IsTransient
	}
	return c
}

// Backoff returns the wait before retry number attempt (0-based).
func (c Config) Backoff(attempt int) time.Duration {
	c = c.withDefaults()
	wait := float64(c.InitialWait) * math.Pow(c.Multiplier, float64(attempt))
	if wait > float64(c.MaxWait) {
		wait = float64(c.MaxWait)
	}

	wait += wait * c.Jitter * (2*rand.Float64() - 1)
	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}

// Do calls fn until it succeeds, returns a non-retryable error, or the
// attempts run out. The last error is returned unchanged.
func Do[T any](ctx context.Context, cfg Config, fn func(ctx context.Context) (T, error)) (T, error) {
	cfg = cfg.withDefaults()

	var zero T
	var lastErr error
	for attempt := range cfg.MaxAttempts {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if !cfg.ShouldRetry(err) {
			return zero, err
		}
		if attempt == cfg.MaxAttempts-1 {
			break
		}

		wait := cfg.Backoff(attempt)
		if cfg.RetryAfter != nil {
			if d := cfg.RetryAfter(err); d > 0 {
				wait = d
			}
		}
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt+1, err, wait)
		}
		if err := Sleep(ctx, wait); err != nil {
			return zero, err
		}
	}
	return zero, lastErr
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
