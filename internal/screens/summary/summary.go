package summary

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/civicprep/civicprep/internal/router"
	"github.com/civicprep/civicprep/internal/screen"
	"github.com/civicprep/civicprep/internal/session"
	"github.com/civicprep/civicprep/internal/store"
	"github.com/civicprep/civicprep/internal/ui/layout"
	"github.com/civicprep/civicprep/internal/ui/theme"
)

// maxMissedShown caps the missed-question list.
const maxMissedShown = 5

// savedMsg reports the outcome of storing the session result.
type savedMsg struct {
	Outcome session.Outcome
	Err     error
}

// SummaryScreen displays the session summary and saves the result.
type SummaryScreen struct {
	deps    screen.Deps
	summary session.Summary
	result  store.PendingResult
	saving  bool
	saved   session.Outcome
	saveErr error
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen.
func New(deps screen.Deps, summary session.Summary, result store.PendingResult) *SummaryScreen {
	return &SummaryScreen{deps: deps, summary: summary, result: result}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return s.save()
}

func (s *SummaryScreen) save() tea.Cmd {
	if s.deps.Saver == nil || s.result.TotalQuestions == 0 {
		return nil
	}
	s.saving = true
	s.saveErr = nil
	saver, result := s.deps.Saver, s.result
	return func() tea.Msg {
		out, err := saver.Save(context.Background(), result)
		if rerr := saver.Reset(); rerr != nil && err == nil {
			err = rerr
		}
		return savedMsg{Outcome: out, Err: err}
	}
}

func (s *SummaryScreen) Title() string {
	return "Session Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	if s.saveErr != nil {
		return []layout.KeyHint{
			{Key: "R", Description: "Retry save"},
			{Key: "Enter", Description: "Continue"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Continue"},
		{Key: "Esc", Description: "Home"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case savedMsg:
		s.saving = false
		s.saved, s.saveErr = msg.Outcome, msg.Err
		if msg.Err != nil {
			s.deps.Log().Error("session result not saved", "id", s.result.ID, "error", msg.Err)
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "r":
			if s.saveErr != nil && !s.saving {
				return s, s.save()
			}
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.summary
	center := func(st lipgloss.Style, text string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, st.Render(text)) + "\n"
	}

	var b strings.Builder

	title, titleStyle := "Session complete!", theme.Title
	if sum.Mode == session.ModeMock {
		if sum.Passed {
			title, titleStyle = "You passed the mock test!", theme.Correct
		} else {
			title, titleStyle = "Not passed yet", theme.Incorrect
		}
	}
	b.WriteString(center(titleStyle, title))
	if msg := sum.EndReason.Message(); msg.EN != "" {
		b.WriteString(center(theme.Hint, msg.EN))
		if msg.MY != "" {
			b.WriteString(center(theme.Translation, msg.MY))
		}
	}
	b.WriteString("\n")

	mins := int(sum.Duration.Minutes())
	secs := int(sum.Duration.Seconds()) % 60
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim), fmt.Sprintf("Duration: %d:%02d", mins, secs)))
	b.WriteString(center(theme.Body, fmt.Sprintf("Questions: %d        Correct: %d        Accuracy: %.0f%%",
		sum.Total, sum.Correct, sum.Accuracy*100)))
	b.WriteString("\n")

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", min(width-8, 60)))
	if len(sum.Categories) > 0 {
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim), "Categories"))
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider) + "\n")
		for _, c := range sum.Categories {
			style := lipgloss.NewStyle().Foreground(theme.ScoreColor(int(c.Accuracy * 100)))
			b.WriteString(center(style, fmt.Sprintf("%-34s %d/%d", c.Name.EN, c.Correct, c.Attempted)))
		}
		b.WriteString("\n")
	}

	if len(sum.Missed) > 0 {
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim), "Missed · added to review"))
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider) + "\n")
		for i, r := range sum.Missed {
			if i == maxMissedShown {
				b.WriteString(center(theme.Hint, fmt.Sprintf("and %d more", len(sum.Missed)-maxMissedShown)))
				break
			}
			b.WriteString(center(theme.Body, r.Question.QuestionEN))
			b.WriteString(center(theme.Correct, "→ "+r.Correct.TextEN))
		}
		b.WriteString("\n")
	}

	b.WriteString(center(theme.Hint, s.saveStatus()))
	return b.String()
}

func (s *SummaryScreen) saveStatus() string {
	switch {
	case s.deps.Saver == nil:
		return "Result kept on this device."
	case s.saving:
		return "Saving result…"
	case s.saveErr != nil:
		return "Result not saved: " + s.saveErr.Error()
	case s.saved == session.OutcomeQueued:
		return "Offline: result queued and will sync later."
	case s.saved == session.OutcomeSaved:
		return "Result saved."
	default:
		return ""
	}
}
