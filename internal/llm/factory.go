package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/civicprep/civicprep/internal/store"
)

// ErrDisabled is returned by NewProvider when no provider is configured.
var ErrDisabled = errors.New("LLM provider not configured")

// NewProvider builds the configured backend with event recording and
// retries: caller → retry → events → backend. events may be nil.
func NewProvider(ctx context.Context, cfg Config, events store.EventRepo, logger *slog.Logger) (Provider, error) {
	if !cfg.Enabled() {
		return nil, ErrDisabled
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		backend Provider
		err     error
	)
	switch cfg.Provider {
	case "anthropic":
		backend, err = newAnthropic(cfg.Anthropic)
	case "openai":
		backend, err = newOpenAI(cfg.OpenAI)
	case "gemini":
		backend, err = newGemini(ctx, cfg.Gemini)
	case "openrouter":
		backend, err = newOpenRouter(cfg.OpenRouter)
	}
	if err != nil {
		return nil, fmt.Errorf("initialize %s provider: %w", cfg.Provider, err)
	}
	return WithRetry(WithEvents(backend, cfg.Provider, events, logger), cfg.Retry, cfg.Timeout), nil
}
