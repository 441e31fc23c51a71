// Package drill is the spoken-interview practice screen: the learner types
// what they would say and the interview judge grades it.
package drill

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/civicprep/civicprep/internal/interview"
	"github.com/civicprep/civicprep/internal/router"
	"github.com/civicprep/civicprep/internal/screen"
	"github.com/civicprep/civicprep/internal/shuffle"
	"github.com/civicprep/civicprep/internal/store"
	"github.com/civicprep/civicprep/internal/ui/components"
	"github.com/civicprep/civicprep/internal/ui/layout"
	"github.com/civicprep/civicprep/internal/ui/theme"
)

const answerCharLimit = 200

type phase int

const (
	phaseIntro phase = iota
	phaseAsking
	phaseJudging
	phaseFeedback
	phaseClosing
)

// gradedMsg is sent when the judge has graded an answer.
type gradedMsg struct {
	Transcript string
	Verdict    interview.Verdict
}

// DrillScreen runs a simulated civics interview.
type DrillScreen struct {
	deps     screen.Deps
	drill    *interview.Drill
	phase    phase
	input    components.TextInput
	greeting string
	closing  string
	last     *interview.Turn
	reaction string
}

var _ screen.Screen = (*DrillScreen)(nil)
var _ screen.KeyHintProvider = (*DrillScreen)(nil)
var _ screen.BackHandler = (*DrillScreen)(nil)

// New creates a DrillScreen over a random draw from the bank.
func New(deps screen.Deps) *DrillScreen {
	judge := deps.Judge
	if judge == nil {
		judge = interview.NewJudge(nil, interview.DefaultJudgeConfig(), deps.Log())
	}
	qs := shuffle.Take(deps.Bank.All(), interview.DrillLength, nil)
	return &DrillScreen{
		deps:     deps,
		drill:    interview.NewDrill(judge, qs),
		greeting: interview.Greeting(nil),
	}
}

func (s *DrillScreen) Init() tea.Cmd {
	return nil
}

func (s *DrillScreen) Title() string {
	return "Interview"
}

// HandlesBack ends the interview with a closing statement instead of
// leaving the screen.
func (s *DrillScreen) HandlesBack() bool {
	return s.phase == phaseAsking || s.phase == phaseJudging || s.phase == phaseFeedback
}

func (s *DrillScreen) KeyHints() []layout.KeyHint {
	switch s.phase {
	case phaseIntro:
		return []layout.KeyHint{{Key: "Enter", Description: "Begin"}, {Key: "Esc", Description: "Back"}}
	case phaseAsking:
		return []layout.KeyHint{{Key: "Enter", Description: "Answer"}, {Key: "Esc", Description: "End interview"}}
	case phaseJudging:
		return []layout.KeyHint{}
	case phaseFeedback:
		return []layout.KeyHint{{Key: "Enter", Description: "Next question"}, {Key: "Esc", Description: "End interview"}}
	default:
		return []layout.KeyHint{{Key: "Enter", Description: "Home"}}
	}
}

func (s *DrillScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case gradedMsg:
		return s.handleGraded(msg)
	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	if s.phase == phaseAsking {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *DrillScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()
	switch s.phase {
	case phaseIntro:
		if key == "enter" {
			if s.drill.Over() {
				s.end()
				return s, nil
			}
			return s, s.ask()
		}
	case phaseAsking:
		switch key {
		case "esc":
			s.end()
		case "enter":
			if s.input.Value() == "" {
				return s, nil
			}
			s.phase = phaseJudging
			return s, s.grade(s.input.Value())
		default:
			var cmd tea.Cmd
			s.input, cmd = s.input.Update(msg)
			return s, cmd
		}
	case phaseFeedback:
		switch key {
		case "esc":
			s.end()
		case "enter", "space":
			if s.drill.Over() {
				s.end()
				return s, nil
			}
			return s, s.ask()
		}
	case phaseClosing:
		if key == "enter" {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *DrillScreen) ask() tea.Cmd {
	s.phase = phaseAsking
	s.input = components.NewTextInput("Type your answer as you would say it…", answerCharLimit)
	return s.input.Init()
}

// grade runs the judge off the UI goroutine; it may call a model.
func (s *DrillScreen) grade(transcript string) tea.Cmd {
	q, _ := s.drill.Current()
	judge := s.drill.Judge()
	return func() tea.Msg {
		v := judge.Evaluate(context.Background(), q.QuestionEN, transcript, interview.ExpectedAnswers(q))
		return gradedMsg{Transcript: transcript, Verdict: v}
	}
}

func (s *DrillScreen) handleGraded(msg gradedMsg) (screen.Screen, tea.Cmd) {
	turn, err := s.drill.Record(msg.Transcript, msg.Verdict)
	if err != nil {
		s.deps.Log().Error("interview answer not recorded", "error", err)
		s.end()
		return s, nil
	}
	s.last = &turn
	s.input.Submit(turn.Verdict.IsCorrect)
	s.reaction = interview.Feedback(turn.Verdict.IsCorrect, nil)
	s.phase = phaseFeedback

	if s.deps.Answers != nil {
		err := s.deps.Answers.Append(context.Background(), store.StoredAnswer{
			QuestionID:  turn.Question.ID,
			IsCorrect:   turn.Verdict.IsCorrect,
			Timestamp:   s.deps.Now(),
			SessionType: store.SessionTest,
		})
		if err != nil {
			s.deps.Log().Warn("interview answer not recorded in history", "question", turn.Question.ID, "error", err)
		}
	}
	return s, nil
}

func (s *DrillScreen) end() {
	s.drill.Stop()
	s.closing = interview.Closing(s.drill.Passed(), nil)
	s.phase = phaseClosing
}

func (s *DrillScreen) View(width, height int) string {
	cw := layout.ContentWidth(width)
	var body string
	switch s.phase {
	case phaseIntro:
		body = components.InfoPanel(
			theme.Title.Render("Civics interview")+"\n\n"+
				theme.Body.Render(s.greeting)+"\n\n"+
				theme.Hint.Render(fmt.Sprintf("Up to %d questions. %d correct answers pass; %d misses end the interview.",
					interview.DrillLength, interview.DrillPassThreshold, interview.DrillFailThreshold)),
			cw)
	case phaseClosing:
		body = s.viewClosing(cw)
	default:
		body = s.viewQuestion(cw)
	}
	return layout.Centered(body, width, height)
}

func (s *DrillScreen) viewQuestion(cw int) string {
	var b strings.Builder
	cur, total := s.drill.Progress()
	correct, incorrect := s.drill.Score()
	b.WriteString(theme.Hint.Render(fmt.Sprintf("Question %d of %d", cur, total)))
	b.WriteString("   " + theme.Correct.Render(fmt.Sprintf("✓ %d", correct)) +
		"  " + theme.Incorrect.Render(fmt.Sprintf("✗ %d", incorrect)) + "\n\n")

	var asked, askedMY string
	if s.phase == phaseFeedback && s.last != nil {
		asked, askedMY = s.last.Question.QuestionEN, s.last.Question.QuestionMY
	} else if c, ok := s.drill.Current(); ok {
		asked, askedMY = c.QuestionEN, c.QuestionMY
	}
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(asked) + "\n")
	if askedMY != "" {
		b.WriteString(theme.Translation.Render(askedMY) + "\n")
	}
	b.WriteString("\n" + s.input.View() + "\n")

	switch s.phase {
	case phaseJudging:
		b.WriteString("\n" + theme.Hint.Render("The officer is considering your answer…"))
	case phaseFeedback:
		b.WriteString("\n" + s.viewFeedback(cw))
	}
	return b.String()
}

func (s *DrillScreen) viewFeedback(cw int) string {
	t := s.last
	v := t.Verdict
	var b strings.Builder
	b.WriteString(theme.Body.Render("“"+s.reaction+"”") + "\n")
	if len(v.MatchedKeywords) > 0 {
		b.WriteString(theme.Hint.Render("Heard: "+strings.Join(v.MatchedKeywords, ", ")) + "\n")
	}
	if v.Reason != "" {
		b.WriteString(theme.Hint.Render(v.Reason) + "\n")
	}
	if !v.IsCorrect {
		b.WriteString(theme.Body.Render("Accepted answers:") + "\n")
		for _, a := range t.Question.StudyAnswers {
			b.WriteString(theme.Correct.Render("• "+a.TextEN) + "\n")
		}
		if len(t.Question.StudyAnswers) == 0 {
			b.WriteString(theme.Correct.Render("• "+t.Question.CorrectAnswer().TextEN) + "\n")
		}
	}
	return components.ResultPanel(strings.TrimRight(b.String(), "\n"), cw, v.IsCorrect)
}

func (s *DrillScreen) viewClosing(cw int) string {
	correct, incorrect := s.drill.Score()
	title, style := "Interview passed", theme.Correct
	if !s.drill.Passed() {
		title, style = "Interview not passed", theme.Incorrect
	}
	content := style.Render(title) + "\n\n" +
		theme.Body.Render(s.closing) + "\n\n" +
		theme.Hint.Render(fmt.Sprintf("Correct %d · Incorrect %d", correct, incorrect))
	return components.InfoPanel(content, cw)
}
