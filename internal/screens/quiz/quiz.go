// Package quiz is the multiple-choice practice and mock test screen.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/civicprep/civicprep/internal/i18n"
	"github.com/civicprep/civicprep/internal/practice"
	"github.com/civicprep/civicprep/internal/question"
	"github.com/civicprep/civicprep/internal/router"
	"github.com/civicprep/civicprep/internal/screen"
	"github.com/civicprep/civicprep/internal/screens/summary"
	"github.com/civicprep/civicprep/internal/session"
	"github.com/civicprep/civicprep/internal/ui/components"
	"github.com/civicprep/civicprep/internal/ui/layout"
	"github.com/civicprep/civicprep/internal/ui/theme"
)

const defaultPracticeCount = 10

// loadedMsg is sent when the questions for the session have been chosen.
type loadedMsg struct {
	Questions []question.Question
}

// timerTickMsg is sent every second during a mock test.
type timerTickMsg time.Time

// QuizScreen runs a practice session or a timed mock test.
type QuizScreen struct {
	deps        screen.Deps
	mode        session.Mode
	sess        *session.Session
	mc          components.MultiChoice
	feedback    *session.Feedback
	confirmQuit bool
	errMsg      string
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)
var _ screen.BackHandler = (*QuizScreen)(nil)

// New creates a QuizScreen for mode.
func New(deps screen.Deps, mode session.Mode) *QuizScreen {
	return &QuizScreen{deps: deps, mode: mode}
}

func (s *QuizScreen) Init() tea.Cmd {
	deps, mode := s.deps, s.mode
	return func() tea.Msg {
		return loadedMsg{Questions: pickQuestions(deps, mode)}
	}
}

func pickQuestions(deps screen.Deps, mode session.Mode) []question.Question {
	all := deps.Bank.All()
	var qs []question.Question
	if mode == session.ModeMock {
		qs = session.MockQuestions(all, nil)
	} else {
		count := deps.PracticeCount
		if count <= 0 {
			count = defaultPracticeCount
		}
		pool := all
		if len(deps.PracticeCategories) > 0 {
			pool = deps.Bank.InCategories(deps.PracticeCategories)
		}
		qs = practice.Select(pool, deps.History(context.Background()), practice.Options{
			Focus:     deps.PracticeFocus,
			Count:     count,
			WeakRatio: deps.WeakRatio,
		}, nil)
	}
	return session.ShuffleOptions(qs, nil)
}

func (s *QuizScreen) Title() string {
	if s.mode == session.ModeMock {
		return "Mock Test"
	}
	switch s.deps.PracticeFocus {
	case practice.FocusWeak:
		return "Weak Questions"
	case practice.FocusDrill:
		return "Drill"
	}
	return "Practice"
}

// HandlesBack asks for confirmation before leaving a running session.
func (s *QuizScreen) HandlesBack() bool {
	return s.sess != nil && s.sess.Phase() != session.PhaseSummary
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.sess == nil:
		return nil
	case s.confirmQuit:
		return []layout.KeyHint{
			{Key: "Y", Description: "End session"},
			{Key: "N", Description: "Keep going"},
		}
	case s.feedback != nil:
		return []layout.KeyHint{
			{Key: "any key", Description: "Continue"},
		}
	default:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Choose"},
			{Key: "1-4", Description: "Answer"},
			{Key: "Enter", Description: "Submit"},
			{Key: "Esc", Description: "Quit"},
		}
	}
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		return s.handleLoaded(msg)
	case timerTickMsg:
		return s.handleTimerTick()
	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *QuizScreen) handleLoaded(msg loadedMsg) (screen.Screen, tea.Cmd) {
	sess, err := session.New(s.mode, msg.Questions, session.Deps{
		Answers: s.deps.Answers,
		Deck:    s.deps.Deck,
		Logger:  s.deps.Log(),
		Clock:   s.deps.Clock,
	})
	switch {
	case errors.Is(err, session.ErrNoQuestions) && s.deps.PracticeFocus == practice.FocusWeak:
		s.errMsg = "No weak questions right now. Every question you have tried is at 60% or better."
		return s, nil
	case err != nil:
		s.errMsg = "Could not start: " + err.Error()
		return s, nil
	}
	s.sess = sess
	s.loadQuestion()
	if s.mode == session.ModeMock {
		return s, tick()
	}
	return s, nil
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return timerTickMsg(t) })
}

func (s *QuizScreen) handleTimerTick() (screen.Screen, tea.Cmd) {
	if s.sess == nil || s.sess.Phase() == session.PhaseSummary {
		return s, nil
	}
	if s.sess.Tick() {
		return s, s.finish()
	}
	return s, tick()
}

func (s *QuizScreen) loadQuestion() {
	q, ok := s.sess.Current()
	if !ok {
		return
	}
	opts := make([]i18n.Bilingual, len(q.Answers))
	correct := 0
	for i, a := range q.Answers {
		opts[i] = i18n.Bilingual{EN: a.TextEN, MY: a.TextMY}
		if a.Correct {
			correct = i
		}
	}
	s.mc = components.NewMultiChoice(i18n.Bilingual{EN: q.QuestionEN, MY: q.QuestionMY}, opts, correct)
	s.feedback = nil
}

func (s *QuizScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if s.sess == nil {
		if s.errMsg != "" {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		return s, nil
	}
	key := msg.String()

	if s.confirmQuit {
		switch key {
		case "y":
			s.confirmQuit = false
			s.sess.Exit()
			return s, s.finish()
		case "n", "esc":
			s.confirmQuit = false
		}
		return s, nil
	}
	if key == "esc" {
		s.confirmQuit = true
		return s, nil
	}

	if s.feedback != nil {
		if err := s.sess.Next(); err != nil {
			s.deps.Log().Error("advance session", "error", err)
			return s, nil
		}
		if s.sess.Phase() == session.PhaseSummary {
			return s, s.finish()
		}
		s.loadQuestion()
		return s, nil
	}

	var cmd tea.Cmd
	s.mc, cmd = s.mc.Update(msg)
	if s.mc.Submitted {
		choice := s.mc.Options[s.mc.ChosenIndex].EN
		fb, err := s.sess.Answer(context.Background(), choice)
		if err != nil {
			s.deps.Log().Error("answer rejected", "choice", choice, "error", err)
			return s, cmd
		}
		s.feedback = &fb
	}
	return s, cmd
}

// finish replaces this screen with the summary.
func (s *QuizScreen) finish() tea.Cmd {
	sum := s.sess.Summary()
	result := s.sess.Result(s.deps.UserID)
	deps := s.deps
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: summary.New(deps, sum, result)}
	}
}

func (s *QuizScreen) View(width, height int) string {
	if s.errMsg != "" {
		return layout.Centered(theme.Incorrect.Render(s.errMsg)+"\n\n"+theme.Hint.Render("Press any key"), width, height)
	}
	if s.sess == nil {
		return layout.Centered(theme.Hint.Render("Choosing questions…"), width, height)
	}
	cw := layout.ContentWidth(width)
	if s.confirmQuit {
		return layout.Centered(components.InfoPanel(
			theme.Body.Render("End this session now?")+"\n"+
				theme.Hint.Render("Answers so far are kept."), cw), width, height)
	}

	var b strings.Builder
	b.WriteString(s.statusLine(cw) + "\n\n")
	b.WriteString(s.mc.View())
	if s.feedback != nil {
		b.WriteString("\n" + s.renderFeedback(cw))
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.NewStyle().Width(cw).Render(b.String()))
}

func (s *QuizScreen) statusLine(cw int) string {
	cur, total := s.sess.Progress()
	correct, incorrect := s.sess.Score()
	left := theme.Hint.Render(fmt.Sprintf("Question %d of %d", cur, total))
	right := theme.Correct.Render(fmt.Sprintf("✓ %d", correct)) + "  " +
		theme.Incorrect.Render(fmt.Sprintf("✗ %d", incorrect))
	if s.mode == session.ModeMock {
		rem := s.sess.Remaining()
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if rem < 2*time.Minute {
			style = style.Foreground(theme.Warning)
		}
		right += "   " + style.Render(fmt.Sprintf("%d:%02d", int(rem.Minutes()), int(rem.Seconds())%60))
	}
	gap := max(cw-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right
}

func (s *QuizScreen) renderFeedback(cw int) string {
	fb := s.feedback
	var b strings.Builder
	if fb.IsCorrect {
		b.WriteString(theme.Correct.Render("Correct!") + "  " + theme.Translation.Render("မှန်ပါတယ်"))
	} else {
		b.WriteString(theme.Incorrect.Render("Not quite.") + "  " + theme.Translation.Render("မှားပါတယ်"))
		b.WriteString("\n" + theme.Body.Render("Answer: "+fb.CorrectAnswer.TextEN))
		if fb.CorrectAnswer.TextMY != "" {
			b.WriteString("\n" + theme.Translation.Render(fb.CorrectAnswer.TextMY))
		}
		if fb.AddedToReview {
			b.WriteString("\n" + theme.Hint.Render("Added to your review cards."))
		}
	}
	if fb.Finished {
		if msg := fb.EndReason.Message(); msg.EN != "" {
			b.WriteString("\n\n" + theme.Hint.Render(msg.EN))
		}
	}
	return components.ResultPanel(b.String(), cw, fb.IsCorrect)
}
