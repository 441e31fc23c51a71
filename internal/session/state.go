package session

import (
	"time"

	"github.com/civicprep/civicprep/internal/question"
	"github.com/civicprep/civicprep/internal/store"
)

// Mock test rules, as in the USCIS civics interview.
const (
	MockQuestionCount = 20
	MockPassThreshold = 12
	MockFailThreshold = 9
	MockDuration      = 20 * time.Minute

	// PracticePassAccuracy is the accuracy shown as a pass for practice runs.
	PracticePassAccuracy = 0.6
)

// Mode selects practice or mock-test rules.
type Mode int

const (
	ModePractice Mode = iota // Untimed, runs through every question
	ModeMock                 // Timed, stops early at the pass or fail threshold
)

func (m Mode) String() string {
	if m == ModeMock {
		return "mock-test"
	}
	return "practice"
}

// SessionType returns the history tag for answers given in this mode.
func (m Mode) SessionType() store.SessionType {
	if m == ModeMock {
		return store.SessionTest
	}
	return store.SessionPractice
}

// Phase represents the current phase of the session.
type Phase int

const (
	PhaseAnswering Phase = iota // Waiting for an answer
	PhaseFeedback               // Showing whether the answer was right
	PhaseSummary                // Finished
)

func (p Phase) String() string {
	switch p {
	case PhaseAnswering:
		return "answering"
	case PhaseFeedback:
		return "feedback"
	case PhaseSummary:
		return "summary"
	default:
		return "unknown"
	}
}

// EndReason records why a session finished.
type EndReason string

const (
	EndPassThreshold EndReason = "passThreshold"
	EndFailThreshold EndReason = "failThreshold"
	EndComplete      EndReason = "complete"
	EndTime          EndReason = "time"
	EndQuit          EndReason = "quit"
)

// Response is one answered question.
type Response struct {
	Question  question.Question
	Selected  question.Answer
	Correct   question.Answer
	IsCorrect bool
	TimeSpent time.Duration
}

// Feedback is returned for every answer.
type Feedback struct {
	IsCorrect     bool
	Selected      question.Answer
	CorrectAnswer question.Answer
	// AddedToReview is set when a missed question entered the review deck.
	AddedToReview bool
	// Finished is set when this answer ended the session.
	Finished  bool
	EndReason EndReason
}
