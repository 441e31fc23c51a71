// Package session drives a practice or mock-test run: it serves questions,
// records answers to the history, feeds missed questions into the review
// deck and builds the summary and the result to sync.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/civicprep/civicprep/internal/question"
	"github.com/civicprep/civicprep/internal/spacedrep"
	"github.com/civicprep/civicprep/internal/store"
)

var (
	ErrNoQuestions   = errors.New("session has no questions")
	ErrNotAnswering  = errors.New("session is not waiting for an answer")
	ErrNotInFeedback = errors.New("session is not showing feedback")
	ErrUnknownChoice = errors.New("choice is not an option for this question")
)

// Deps are the collaborators a Session writes to. Answers and Deck are
// optional.
type Deps struct {
	Answers store.AnswerRepo
	Deck    *spacedrep.Deck
	Logger  *slog.Logger
	Clock   func() time.Time
}

// Session is one run through a set of questions.
type Session struct {
	id        string
	mode      Mode
	questions []question.Question
	idx       int
	phase     Phase
	responses []Response
	endReason EndReason

	startedAt  time.Time
	endedAt    time.Time
	questionAt time.Time

	answers store.AnswerRepo
	deck    *spacedrep.Deck
	logger  *slog.Logger
	now     func() time.Time
}

// New starts a session over questions.
func New(mode Mode, questions []question.Question, deps Deps) (*Session, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	now := deps.Clock()
	return &Session{
		id:         uuid.NewString(),
		mode:       mode,
		questions:  append([]question.Question(nil), questions...),
		phase:      PhaseAnswering,
		answers:    deps.Answers,
		deck:       deps.Deck,
		logger:     deps.Logger,
		now:        deps.Clock,
		startedAt:  now,
		questionAt: now,
	}, nil
}

func (s *Session) ID() string           { return s.id }
func (s *Session) Mode() Mode           { return s.mode }
func (s *Session) Phase() Phase         { return s.phase }
func (s *Session) EndReason() EndReason { return s.endReason }

// Progress returns the 1-based position of the current question and the total.
func (s *Session) Progress() (int, int) {
	return min(s.idx+1, len(s.questions)), len(s.questions)
}

// Current returns the question being asked.
func (s *Session) Current() (question.Question, bool) {
	if s.phase == PhaseSummary || s.idx >= len(s.questions) {
		return question.Question{}, false
	}
	return s.questions[s.idx], true
}

// Responses returns the answers so far.
func (s *Session) Responses() []Response {
	return append([]Response(nil), s.responses...)
}

// Score returns the correct and incorrect counts.
func (s *Session) Score() (correct, incorrect int) {
	for _, r := range s.responses {
		if r.IsCorrect {
			correct++
		} else {
			incorrect++
		}
	}
	return correct, incorrect
}

// Answer grades choice, the English text of one of the current question's
// options. The answer is appended to the history, and a miss adds the
// question to the review deck. History and deck failures are logged and do
// not fail the answer.
func (s *Session) Answer(ctx context.Context, choice string) (Feedback, error) {
	if s.phase != PhaseAnswering {
		return Feedback{}, ErrNotAnswering
	}
	q := s.questions[s.idx]

	var selected question.Answer
	found := false
	for _, a := range q.Answers {
		if a.TextEN == choice {
			selected, found = a, true
			break
		}
	}
	if !found {
		return Feedback{}, fmt.Errorf("%w: %q", ErrUnknownChoice, choice)
	}

	now := s.now()
	resp := Response{
		Question:  q,
		Selected:  selected,
		Correct:   q.CorrectAnswer(),
		IsCorrect: selected.Correct,
		TimeSpent: now.Sub(s.questionAt),
	}
	s.responses = append(s.responses, resp)

	if s.answers != nil {
		err := s.answers.Append(ctx, store.StoredAnswer{
			QuestionID:  q.ID,
			IsCorrect:   resp.IsCorrect,
			Timestamp:   now,
			SessionType: s.mode.SessionType(),
		})
		if err != nil {
			s.logger.Warn("answer not recorded in history", "question", q.ID, "error", err)
		}
	}

	fb := Feedback{
		IsCorrect:     resp.IsCorrect,
		Selected:      selected,
		CorrectAnswer: resp.Correct,
	}
	if !resp.IsCorrect && s.deck != nil {
		added, err := s.deck.Add(ctx, q.ID, now)
		if err != nil {
			s.logger.Warn("missed question not added to review", "question", q.ID, "error", err)
		}
		fb.AddedToReview = added
	}

	if reason, done := s.checkEnd(); done {
		s.endReason = reason
		fb.Finished = true
		fb.EndReason = reason
	}
	s.phase = PhaseFeedback
	return fb, nil
}

// checkEnd applies the early-stop thresholds in mock mode and detects the
// last question in either mode.
func (s *Session) checkEnd() (EndReason, bool) {
	if s.mode == ModeMock {
		correct, incorrect := s.Score()
		if correct >= MockPassThreshold {
			return EndPassThreshold, true
		}
		if incorrect >= MockFailThreshold {
			return EndFailThreshold, true
		}
	}
	if len(s.responses) >= len(s.questions) {
		return EndComplete, true
	}
	return "", false
}

// Next leaves feedback: to the next question, or to the summary when the
// session has ended.
func (s *Session) Next() error {
	if s.phase != PhaseFeedback {
		return ErrNotInFeedback
	}
	if s.endReason != "" {
		s.finish(s.endReason)
		return nil
	}
	s.idx++
	s.phase = PhaseAnswering
	s.questionAt = s.now()
	return nil
}

// Remaining returns the time left on a mock test. Practice is untimed and
// always returns zero.
func (s *Session) Remaining() time.Duration {
	if s.mode != ModeMock {
		return 0
	}
	end := s.now()
	if s.phase == PhaseSummary {
		end = s.endedAt
	}
	return max(MockDuration-end.Sub(s.startedAt), 0)
}

// Tick ends a mock test whose time has run out and reports whether it did.
func (s *Session) Tick() bool {
	if s.mode != ModeMock || s.phase == PhaseSummary {
		return false
	}
	if s.now().Sub(s.startedAt) < MockDuration {
		return false
	}
	reason := EndTime
	if s.endReason != "" {
		reason = s.endReason
	}
	s.finish(reason)
	return true
}

// Exit ends the session early.
func (s *Session) Exit() {
	if s.phase == PhaseSummary {
		return
	}
	reason := EndQuit
	if s.endReason != "" {
		reason = s.endReason
	}
	s.finish(reason)
}

func (s *Session) finish(reason EndReason) {
	s.endReason = reason
	s.phase = PhaseSummary
	s.endedAt = s.now()
}

// Elapsed returns the session's running time.
func (s *Session) Elapsed() time.Duration {
	end := s.now()
	if s.phase == PhaseSummary {
		end = s.endedAt
	}
	d := end.Sub(s.startedAt)
	if s.mode == ModeMock {
		d = min(d, MockDuration)
	}
	return d
}

// Result builds the record synced to the remote store.
func (s *Session) Result(userID string) store.PendingResult {
	correct, _ := s.Score()
	resps := make([]store.PendingResponse, len(s.responses))
	for i, r := range s.responses {
		resps[i] = store.PendingResponse{
			QuestionID:       r.Question.ID,
			Category:         string(r.Question.Category),
			SelectedAnswer:   r.Selected.TextEN,
			CorrectAnswer:    r.Correct.TextEN,
			IsCorrect:        r.IsCorrect,
			TimeSpentSeconds: int(r.TimeSpent.Round(time.Second) / time.Second),
		}
	}
	reason := s.endReason
	if reason == "" {
		reason = EndComplete
		if len(s.responses) < len(s.questions) {
			reason = EndTime
		}
	}
	return store.PendingResult{
		ID:              s.id,
		UserID:          userID,
		Score:           correct,
		TotalQuestions:  len(s.responses),
		DurationSeconds: int(s.Elapsed() / time.Second),
		Passed:          s.passed(),
		EndReason:       string(reason),
		CreatedAt:       s.endedAt,
		Responses:       resps,
	}
}

func (s *Session) passed() bool {
	correct, _ := s.Score()
	if s.mode == ModeMock {
		return correct >= MockPassThreshold
	}
	if len(s.responses) == 0 {
		return false
	}
	return float64(correct)/float64(len(s.responses)) >= PracticePassAccuracy
}
