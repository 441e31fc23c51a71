package spacedrep

import (
	"time"

	"github.com/open-spaced-repetition/go-fsrs"
)

// MaxIntervalDays caps how far into the future a card can be scheduled.
const MaxIntervalDays = 365

// Algorithm computes the next state of a card after a grade.
type Algorithm interface {
	Schedule(card Card, grade Grade, now time.Time) Card
}

// FSRS is the default Algorithm, backed by go-fsrs.
type FSRS struct {
	params fsrs.Parameters
}

// NewFSRS returns an FSRS scheduler with default weights and a one year
// interval cap.
func NewFSRS() *FSRS {
	params := fsrs.DefaultParam()
	params.MaximumInterval = MaxIntervalDays
	return &FSRS{params: params}
}

// Schedule maps the binary grade onto FSRS ratings: easy rates Good and hard
// rates Again. Again puts the card on the short-term learning steps, so it
// comes back minutes later rather than being requeued in the session.
func (f *FSRS) Schedule(card Card, grade Grade, now time.Time) Card {
	rating := fsrs.Again
	if grade == GradeEasy {
		rating = fsrs.Good
	}

	next := f.params.Repeat(toFSRS(card), now)[rating].Card
	out := fromFSRS(next)
	// go-fsrs widens Good past MaximumInterval to keep it above Hard.
	if out.ScheduledDays > MaxIntervalDays {
		out.ScheduledDays = MaxIntervalDays
		out.Due = now.Add(MaxIntervalDays * 24 * time.Hour)
	}
	out.QuestionID = card.QuestionID
	out.AddedAt = card.AddedAt
	return out
}

func toFSRS(c Card) fsrs.Card {
	return fsrs.Card{
		Due:           c.Due,
		Stability:     c.Stability,
		Difficulty:    c.Difficulty,
		ElapsedDays:   uint64(c.ElapsedDays),
		ScheduledDays: uint64(c.ScheduledDays),
		Reps:          uint64(c.Reps),
		Lapses:        uint64(c.Lapses),
		State:         toFSRSState(c.State),
		LastReview:    c.LastReview,
	}
}

func fromFSRS(c fsrs.Card) Card {
	return Card{
		Due:           c.Due,
		Stability:     c.Stability,
		Difficulty:    c.Difficulty,
		ElapsedDays:   int64(c.ElapsedDays),
		ScheduledDays: int64(c.ScheduledDays),
		Reps:          int64(c.Reps),
		Lapses:        int64(c.Lapses),
		State:         fromFSRSState(c.State),
		LastReview:    c.LastReview,
	}
}

func toFSRSState(s State) fsrs.State {
	switch s {
	case StateLearning:
		return fsrs.Learning
	case StateReview:
		return fsrs.Review
	case StateRelearning:
		return fsrs.Relearning
	default:
		return fsrs.New
	}
}

func fromFSRSState(s fsrs.State) State {
	switch s {
	case fsrs.Learning:
		return StateLearning
	case fsrs.Review:
		return StateReview
	case fsrs.Relearning:
		return StateRelearning
	default:
		return StateNew
	}
}
