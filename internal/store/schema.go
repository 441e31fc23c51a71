package store

import (
	"time"

	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table and column names. Times are stored as unix milliseconds so that
// range predicates compare numerically.
const (
	tableAnswers  = "answers"
	tableCards    = "srs_cards"
	tablePending  = "pending_results"
	tableLLMEvent = "llm_request_events"

	colID          = "id"
	colSequence    = "sequence"
	colCreatedAt   = "created_at"
	colQuestionID  = "question_id"
	colIsCorrect   = "is_correct"
	colSessionType = "session_type"
	colAnsweredAt  = "answered_at"

	colDue           = "due"
	colLastReview    = "last_review"
	colStability     = "stability"
	colDifficulty    = "difficulty"
	colElapsedDays   = "elapsed_days"
	colScheduledDays = "scheduled_days"
	colReps          = "reps"
	colLapses        = "lapses"
	colState         = "state"
	colAddedAt       = "added_at"

	colUserID    = "user_id"
	colPayload   = "payload"
	colAttempts  = "attempts"
	colLastError = "last_error"

	colProvider     = "provider"
	colModel        = "model"
	colPurpose      = "purpose"
	colInputTokens  = "input_tokens"
	colOutputTokens = "output_tokens"
	colLatencyMs    = "latency_ms"
	colSuccess      = "success"
	colErrorMessage = "error_message"
	colRequestBody  = "request_body"
	colResponseBody = "response_body"
)

var (
	answersColumns = []*schema.Column{
		{Name: colID, Type: field.TypeInt, Increment: true},
		{Name: colSequence, Type: field.TypeInt64},
		{Name: colQuestionID, Type: field.TypeString},
		{Name: colIsCorrect, Type: field.TypeBool},
		{Name: colSessionType, Type: field.TypeString, Default: ""},
		{Name: colAnsweredAt, Type: field.TypeInt64},
	}
	answersTable = &schema.Table{
		Name:       tableAnswers,
		Columns:    answersColumns,
		PrimaryKey: []*schema.Column{answersColumns[0]},
		Indexes: []*schema.Index{
			{Name: "answer_question_id", Columns: []*schema.Column{answersColumns[2]}},
			{Name: "answer_sequence", Unique: true, Columns: []*schema.Column{answersColumns[1]}},
		},
	}

	cardsColumns = []*schema.Column{
		{Name: colQuestionID, Type: field.TypeString},
		{Name: colDue, Type: field.TypeInt64},
		{Name: colLastReview, Type: field.TypeInt64, Default: 0},
		{Name: colStability, Type: field.TypeFloat64},
		{Name: colDifficulty, Type: field.TypeFloat64},
		{Name: colElapsedDays, Type: field.TypeInt64},
		{Name: colScheduledDays, Type: field.TypeInt64},
		{Name: colReps, Type: field.TypeInt64},
		{Name: colLapses, Type: field.TypeInt64},
		{Name: colState, Type: field.TypeInt},
		{Name: colAddedAt, Type: field.TypeInt64},
	}
	cardsTable = &schema.Table{
		Name:       tableCards,
		Columns:    cardsColumns,
		PrimaryKey: []*schema.Column{cardsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "card_due", Columns: []*schema.Column{cardsColumns[1]}},
		},
	}

	pendingColumns = []*schema.Column{
		{Name: colID, Type: field.TypeString},
		{Name: colUserID, Type: field.TypeString},
		{Name: colPayload, Type: field.TypeString, Size: 1 << 20},
		{Name: colAttempts, Type: field.TypeInt, Default: 0},
		{Name: colLastError, Type: field.TypeString, Default: ""},
		{Name: colCreatedAt, Type: field.TypeInt64},
	}
	pendingTable = &schema.Table{
		Name:       tablePending,
		Columns:    pendingColumns,
		PrimaryKey: []*schema.Column{pendingColumns[0]},
		Indexes: []*schema.Index{
			{Name: "pending_created_at", Columns: []*schema.Column{pendingColumns[5]}},
		},
	}

	llmEventColumns = []*schema.Column{
		{Name: colID, Type: field.TypeInt, Increment: true},
		{Name: colSequence, Type: field.TypeInt64},
		{Name: colCreatedAt, Type: field.TypeInt64},
		{Name: colProvider, Type: field.TypeString},
		{Name: colModel, Type: field.TypeString},
		{Name: colPurpose, Type: field.TypeString},
		{Name: colInputTokens, Type: field.TypeInt},
		{Name: colOutputTokens, Type: field.TypeInt},
		{Name: colLatencyMs, Type: field.TypeInt64},
		{Name: colSuccess, Type: field.TypeBool},
		{Name: colErrorMessage, Type: field.TypeString, Default: ""},
		{Name: colRequestBody, Type: field.TypeString, Size: 1 << 20, Default: ""},
		{Name: colResponseBody, Type: field.TypeString, Size: 1 << 20, Default: ""},
	}
	llmEventTable = &schema.Table{
		Name:       tableLLMEvent,
		Columns:    llmEventColumns,
		PrimaryKey: []*schema.Column{llmEventColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llm_event_sequence", Unique: true, Columns: []*schema.Column{llmEventColumns[1]}},
		},
	}

	// tables is the full local schema, applied on Open.
	tables = []*schema.Table{answersTable, cardsTable, pendingTable, llmEventTable}
)

func millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
