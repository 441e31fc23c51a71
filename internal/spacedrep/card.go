// Package spacedrep schedules civics questions for review with FSRS and
// drives the review session.
package spacedrep

import "time"

// State is the FSRS learning state of a card.
type State int

const (
	StateNew State = iota
	StateLearning
	StateReview
	StateRelearning
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateLearning:
		return "learning"
	case StateReview:
		return "review"
	case StateRelearning:
		return "relearning"
	default:
		return "unknown"
	}
}

// Grade is the binary rating a learner gives a card.
type Grade int

const (
	GradeHard Grade = iota
	GradeEasy
)

// GradeFromEasy converts the UI's easy/hard flag to a Grade.
func GradeFromEasy(isEasy bool) Grade {
	if isEasy {
		return GradeEasy
	}
	return GradeHard
}

func (g Grade) String() string {
	if g == GradeEasy {
		return "easy"
	}
	return "hard"
}

// Card is the scheduling record for one question. The FSRS fields are only
// interpreted by the Algorithm.
type Card struct {
	QuestionID    string    `json:"question_id"`
	Due           time.Time `json:"due"`
	LastReview    time.Time `json:"last_review,omitzero"`
	Stability     float64   `json:"stability"`
	Difficulty    float64   `json:"difficulty"`
	ElapsedDays   int64     `json:"elapsed_days"`
	ScheduledDays int64     `json:"scheduled_days"`
	Reps          int64     `json:"reps"`
	Lapses        int64     `json:"lapses"`
	State         State     `json:"state"`
	AddedAt       time.Time `json:"added_at"`
}

// NewCard returns an unreviewed card that is due immediately.
func NewCard(questionID string, now time.Time) Card {
	return Card{
		QuestionID: questionID,
		Due:        now,
		State:      StateNew,
		AddedAt:    now,
	}
}

// IsDue reports whether the card is at or past its due time.
func (c Card) IsDue(now time.Time) bool {
	return !c.Due.After(now)
}

// HasReview reports whether the card has been graded at least once.
func (c Card) HasReview() bool {
	return !c.LastReview.IsZero()
}
