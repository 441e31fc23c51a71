package interview

import (
	"context"
	"errors"

	"github.com/civicprep/civicprep/internal/question"
)

// An interview asks up to DrillLength questions and stops as soon as the
// applicant has passed or can no longer pass.
const (
	DrillLength        = 20
	DrillPassThreshold = 12
	DrillFailThreshold = 9
)

// ErrDrillOver is returned by Drill.Submit after the interview has ended.
var ErrDrillOver = errors.New("interview is over")

// ExpectedAnswers lists the accepted spoken answers for q: its study
// answers, or the correct multiple-choice option when it has none.
func ExpectedAnswers(q question.Question) []string {
	out := make([]string, 0, len(q.StudyAnswers))
	for _, a := range q.StudyAnswers {
		out = append(out, a.TextEN)
	}
	if len(out) == 0 {
		out = append(out, q.CorrectAnswer().TextEN)
	}
	return out
}

// Turn is one graded question of an interview.
type Turn struct {
	Question   question.Question
	Transcript string
	Verdict    Verdict
}

// Drill is a simulated civics interview over a fixed list of questions.
type Drill struct {
	judge     *Judge
	questions []question.Question
	turns     []Turn
	correct   int
	incorrect int
	stopped   bool
}

// NewDrill starts an interview over at most DrillLength questions.
func NewDrill(judge *Judge, questions []question.Question) *Drill {
	if len(questions) > DrillLength {
		questions = questions[:DrillLength]
	}
	return &Drill{judge: judge, questions: append([]question.Question(nil), questions...)}
}

// Current returns the question being asked.
func (d *Drill) Current() (question.Question, bool) {
	if d.Over() {
		return question.Question{}, false
	}
	return d.questions[len(d.turns)], true
}

// Progress returns the 1-based question number and the total.
func (d *Drill) Progress() (int, int) {
	return min(len(d.turns)+1, len(d.questions)), len(d.questions)
}

// Submit grades transcript as the answer to the current question.
func (d *Drill) Submit(ctx context.Context, transcript string) (Turn, error) {
	q, ok := d.Current()
	if !ok {
		return Turn{}, ErrDrillOver
	}
	return d.Record(transcript, d.judge.Evaluate(ctx, q.QuestionEN, transcript, ExpectedAnswers(q)))
}

// Record stores an answer to the current question that was graded
// elsewhere, e.g. off the UI goroutine.
func (d *Drill) Record(transcript string, v Verdict) (Turn, error) {
	q, ok := d.Current()
	if !ok {
		return Turn{}, ErrDrillOver
	}
	t := Turn{Question: q, Transcript: transcript, Verdict: v}
	d.turns = append(d.turns, t)
	if v.IsCorrect {
		d.correct++
	} else {
		d.incorrect++
	}
	return t, nil
}

// Judge returns the judge grading this interview.
func (d *Drill) Judge() *Judge {
	return d.judge
}

// Score returns the correct and incorrect counts.
func (d *Drill) Score() (correct, incorrect int) {
	return d.correct, d.incorrect
}

// Stop ends the interview early.
func (d *Drill) Stop() {
	d.stopped = true
}

// Over reports whether the interview has ended.
func (d *Drill) Over() bool {
	return d.stopped ||
		d.correct >= DrillPassThreshold ||
		d.incorrect >= DrillFailThreshold ||
		len(d.turns) >= len(d.questions)
}

// Passed reports whether the applicant reached the pass threshold, or for
// a shortened interview answered at least 60% correctly.
func (d *Drill) Passed() bool {
	if d.correct >= DrillPassThreshold {
		return true
	}
	if len(d.questions) >= DrillLength || len(d.turns) == 0 {
		return false
	}
	return d.incorrect < DrillFailThreshold && d.correct*5 >= len(d.turns)*3
}

// Turns returns the graded answers so far.
func (d *Drill) Turns() []Turn {
	return append([]Turn(nil), d.turns...)
}
