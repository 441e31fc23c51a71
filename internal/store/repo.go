package store

import (
	"context"
	"time"

	"github.com/civicprep/civicprep/internal/spacedrep"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
	// Purpose restricts LLM events to one purpose label.
	Purpose string
}

// SessionType tags an answer with the kind of session it came from.
type SessionType string

const (
	SessionTest     SessionType = "test"
	SessionPractice SessionType = "practice"
	SessionUntyped  SessionType = ""
)

// StoredAnswer is one immutable entry in the answer history.
type StoredAnswer struct {
	QuestionID  string      `json:"questionId"`
	IsCorrect   bool        `json:"isCorrect"`
	Timestamp   time.Time   `json:"timestamp"`
	SessionType SessionType `json:"sessionType,omitempty"`
}

// AnswerRepo is the append-only answer history.
type AnswerRepo interface {
	// Append records an answer. Entries are never updated or deleted.
	Append(ctx context.Context, a StoredAnswer) error

	// History returns every answer in the order it was appended.
	History(ctx context.Context) ([]StoredAnswer, error)
}

// PendingResponse is one answered question inside a PendingResult.
type PendingResponse struct {
	QuestionID       string `json:"questionId"`
	Category         string `json:"category"`
	SelectedAnswer   string `json:"selectedAnswer"`
	CorrectAnswer    string `json:"correctAnswer"`
	IsCorrect        bool   `json:"isCorrect"`
	TimeSpentSeconds int    `json:"timeSpentSeconds"`
}

// PendingResult is a finished test that has not reached the remote store yet.
type PendingResult struct {
	ID              string            `json:"id"`
	UserID          string            `json:"userId"`
	Score           int               `json:"score"`
	TotalQuestions  int               `json:"totalQuestions"`
	DurationSeconds int               `json:"durationSeconds"`
	Passed          bool              `json:"passed"`
	EndReason       string            `json:"endReason"`
	CreatedAt       time.Time         `json:"createdAt"`
	Responses       []PendingResponse `json:"responses"`
	Attempts        int               `json:"attempts"`
}

// PendingRepo stores results waiting to be synced.
type PendingRepo interface {
	Enqueue(ctx context.Context, r PendingResult) error
	List(ctx context.Context) ([]PendingResult, error)
	Remove(ctx context.Context, id string) error
	RecordAttempt(ctx context.Context, id string, lastErr string) error
	Count(ctx context.Context) (int, error)
}

// CardRepo is the local SRS card table.
type CardRepo = spacedrep.CardRepo

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLM request.
type LLMRequestEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates LLM requests by purpose or model.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error)
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}
