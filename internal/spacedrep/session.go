package spacedrep

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/civicprep/civicprep/internal/i18n"
)

var (
	// ErrNoDueCards is returned by Session.Start when nothing is due.
	ErrNoDueCards = errors.New("no cards due for review")
	// ErrNotReviewing is returned by Session.Rate outside the reviewing phase.
	ErrNotReviewing = errors.New("review session is not in progress")
)

// Phase is the current phase of a review session.
type Phase int

const (
	PhaseSetup     Phase = iota // Choosing session size
	PhaseReviewing              // Grading cards
	PhaseSummary                // Showing results
)

func (p Phase) String() string {
	switch p {
	case PhaseSetup:
		return "setup"
	case PhaseReviewing:
		return "reviewing"
	case PhaseSummary:
		return "summary"
	default:
		return "unknown"
	}
}

// Rated records one graded card in a session.
type Rated struct {
	QuestionID   string
	Grade        Grade
	IntervalText i18n.Bilingual
}

// Session walks the learner through a batch of due cards.
type Session struct {
	deck  *Deck
	clock func() time.Time

	phase        Phase
	cards        []Card
	index        int
	results      []Rated
	timerEnabled bool
	startedAt    time.Time
	elapsed      time.Duration
}

// NewSession returns a session in the setup phase. A nil clock uses time.Now.
func NewSession(deck *Deck, clock func() time.Time) *Session {
	if clock == nil {
		clock = time.Now
	}
	return &Session{deck: deck, clock: clock, phase: PhaseSetup}
}

// Phase returns the current phase.
func (s *Session) Phase() Phase { return s.phase }

// Start loads up to size due cards, most overdue first, and begins
// reviewing. A size of zero or less takes every due card.
func (s *Session) Start(ctx context.Context, size int, timerEnabled bool) error {
	if s.phase == PhaseReviewing {
		return fmt.Errorf("start review: session already in progress")
	}

	now := s.clock()
	due := s.deck.Due(ctx, now)
	if len(due) == 0 {
		s.phase = PhaseSetup
		return ErrNoDueCards
	}
	if size > 0 && size < len(due) {
		due = due[:size]
	}

	s.cards = due
	s.index = 0
	s.results = nil
	s.timerEnabled = timerEnabled
	s.startedAt = now
	s.elapsed = 0
	s.phase = PhaseReviewing
	return nil
}

// Current returns the card being reviewed.
func (s *Session) Current() (Card, bool) {
	if s.phase != PhaseReviewing || s.index >= len(s.cards) {
		return Card{}, false
	}
	return s.cards[s.index], true
}

// Progress returns the 1-based position of the current card and the total.
func (s *Session) Progress() (int, int) {
	return s.index + 1, len(s.cards)
}

// Rate grades the current card, persists it and advances. After the last
// card the session moves to the summary.
func (s *Session) Rate(ctx context.Context, isEasy bool) (Rated, error) {
	if s.phase != PhaseReviewing {
		return Rated{}, ErrNotReviewing
	}

	card := s.cards[s.index]
	res, err := s.deck.Grade(ctx, card.QuestionID, isEasy, s.clock())
	if err != nil {
		return Rated{}, err
	}

	r := Rated{
		QuestionID:   card.QuestionID,
		Grade:        GradeFromEasy(isEasy),
		IntervalText: res.IntervalText,
	}
	s.results = append(s.results, r)
	s.index++
	if s.index >= len(s.cards) {
		s.finish()
	}
	return r, nil
}

// Exit ends the session early. Cards that were not graded keep their
// existing due date.
func (s *Session) Exit() {
	if s.phase == PhaseReviewing {
		s.finish()
	}
}

// Reset returns a finished session to setup.
func (s *Session) Reset() {
	if s.phase != PhaseSummary {
		return
	}
	s.phase = PhaseSetup
	s.cards = nil
	s.index = 0
	s.results = nil
	s.elapsed = 0
}

func (s *Session) finish() {
	if s.timerEnabled {
		s.elapsed = s.clock().Sub(s.startedAt)
	}
	s.phase = PhaseSummary
}

// Summary is the result of a finished review session.
type Summary struct {
	Reviewed int
	Easy     int
	Hard     int
	Skipped  int
	Results  []Rated
	Elapsed  time.Duration
}

// Summary reports the session outcome. Elapsed is zero unless the timer
// was enabled.
func (s *Session) Summary() Summary {
	sum := Summary{
		Reviewed: len(s.results),
		Skipped:  len(s.cards) - len(s.results),
		Results:  append([]Rated(nil), s.results...),
		Elapsed:  s.elapsed,
	}
	for _, r := range s.results {
		if r.Grade == GradeEasy {
			sum.Easy++
		} else {
			sum.Hard++
		}
	}
	return sum
}
