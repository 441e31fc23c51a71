// Package llm talks to hosted language models for the interview judge.
// Every backend answers a single-turn Prompt with JSON checked against the
// prompt's Schema.
package llm

import (
	"context"
	"encoding/json"
)

// Provider completes prompts against one model.
type Provider interface {
	Complete(ctx context.Context, p Prompt) (*Completion, error)
	// Model is the configured model ID.
	Model() string
}

// Prompt is one system instruction and one user turn.
type Prompt struct {
	System string
	User   string
	// Schema, when set, asks for structured JSON output and is used to
	// check what comes back.
	Schema      *Schema
	MaxTokens   int
	Temperature float64
}

// Completion is a model's answer to a Prompt.
type Completion struct {
	// JSON is the structured answer, or the raw text when no schema was set.
	JSON json.RawMessage
	// Model is the model that served the request, which may differ from
	// the configured alias.
	Model     string
	Usage     Usage
	Truncated bool
}

// Usage counts tokens for one request.
type Usage struct {
	Input  int
	Output int
}

// Total is input plus output tokens.
func (u Usage) Total() int { return u.Input + u.Output }

// resolveModel maps a friendly alias to a provider model ID. Unknown names
// pass through so full model IDs work too.
func resolveModel(name string, aliases map[string]string) string {
	if id, ok := aliases[name]; ok {
		return id
	}
	return name
}

// finish checks a raw answer against the prompt's schema. A truncated answer
// that fails the check is reported as truncated rather than invalid.
func finish(p Prompt, c *Completion) (*Completion, error) {
	if p.Schema == nil {
		return c, nil
	}
	if err := p.Schema.Check(c.JSON); err != nil {
		if c.Truncated {
			return nil, &Error{Kind: KindTruncated, Err: err}
		}
		return nil, err
	}
	return c, nil
}
