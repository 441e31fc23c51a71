package interview

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"text/template"

	"github.com/civicprep/civicprep/internal/llm"
)

// AmbiguousFloor is the lowest keyword confidence worth a second opinion.
// Below it the answer is plainly wrong.
const AmbiguousFloor = 0.2

// JudgeSchema is the response shape requested from the model.
var JudgeSchema = &llm.Schema{
	Name:        "interview-judgement",
	Description: "Whether a spoken civics answer is acceptable to a citizenship officer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"correct": map[string]any{
				"type":        "boolean",
				"description": "True if an officer would accept the answer",
			},
			"reason": map[string]any{
				"type":        "string",
				"description": "One short sentence explaining the decision",
			},
		},
		"required":             []any{"correct", "reason"},
		"additionalProperties": false,
	},
}

// JudgeConfig tunes the model request.
type JudgeConfig struct {
	MaxTokens   int
	Temperature float64
	Threshold   float64
}

// DefaultJudgeConfig returns deterministic, short responses.
func DefaultJudgeConfig() JudgeConfig {
	return JudgeConfig{
		MaxTokens:   200,
		Temperature: 0,
		Threshold:   DefaultThreshold,
	}
}

// Verdict is a graded answer, possibly overruled by the model.
type Verdict struct {
	GradeResult
	Judged bool   `json:"judged"`
	Reason string `json:"reason,omitempty"`
}

// Judge grades answers by keywords and asks a model about borderline ones.
// A nil provider grades by keywords alone.
type Judge struct {
	provider llm.Provider
	cfg      JudgeConfig
	logger   *slog.Logger
}

// NewJudge creates a Judge.
func NewJudge(provider llm.Provider, cfg JudgeConfig, logger *slog.Logger) *Judge {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Judge{provider: provider, cfg: cfg, logger: logger}
}

type judgeOutput struct {
	Correct bool   `json:"correct"`
	Reason  string `json:"reason"`
}

// Evaluate grades transcript for question. When the keyword confidence
// falls in [AmbiguousFloor, threshold) the model decides; if the model fails
// the keyword grade stands.
func (j *Judge) Evaluate(ctx context.Context, question, transcript string, expected []string) Verdict {
	v := Verdict{GradeResult: Grade(transcript, expected, j.cfg.Threshold)}
	if v.IsCorrect || v.Confidence < AmbiguousFloor || j.provider == nil {
		return v
	}

	out, err := j.ask(ctx, question, transcript, expected)
	if err != nil {
		j.logger.Warn("interview judge unavailable, keeping keyword grade",
			"error", err, "confidence", v.Confidence)
		return v
	}
	v.Judged = true
	v.IsCorrect = out.Correct
	v.Reason = out.Reason
	return v
}

func (j *Judge) ask(ctx context.Context, question, transcript string, expected []string) (*judgeOutput, error) {
	ctx = llm.WithPurpose(ctx, "interview-judge")

	msg, err := buildJudgeMessage(question, transcript, expected)
	if err != nil {
		return nil, fmt.Errorf("build judge prompt: %w", err)
	}

	c, err := j.provider.Complete(ctx, llm.Prompt{
		System:      judgeSystemPrompt,
		User:        msg,
		Schema:      JudgeSchema,
		MaxTokens:   j.cfg.MaxTokens,
		Temperature: j.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("judge answer: %w", err)
	}

	var out judgeOutput
	if err := json.Unmarshal(c.JSON, &out); err != nil {
		return nil, fmt.Errorf("parse judge response: %w", err)
	}
	return &out, nil
}

const judgeSystemPrompt = `You are a USCIS officer giving the civics portion of a naturalization interview. The applicant's answer was transcribed from speech and may contain recognition errors.

Instructions:
- Accept the answer if it clearly means the same as any accepted answer, even with different wording or minor transcription mistakes.
- Reject answers that are vague, incomplete where completeness matters, or name the wrong person, date or document.
- Keep the reason to one sentence.`

var judgeUserTemplate = template.Must(template.New("judge").Parse(`Question: {{.Question}}
Applicant's answer: {{.Transcript}}

Accepted answers:
{{range .Expected}}- {{.}}
{{end}}`))

func buildJudgeMessage(question, transcript string, expected []string) (string, error) {
	var buf bytes.Buffer
	err := judgeUserTemplate.Execute(&buf, struct {
		Question   string
		Transcript string
		Expected   []string
	}{question, transcript, expected})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
