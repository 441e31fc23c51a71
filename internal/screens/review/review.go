package review

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/civicprep/civicprep/internal/i18n"
	"github.com/civicprep/civicprep/internal/router"
	"github.com/civicprep/civicprep/internal/screen"
	"github.com/civicprep/civicprep/internal/spacedrep"
	"github.com/civicprep/civicprep/internal/ui/components"
	"github.com/civicprep/civicprep/internal/ui/layout"
	"github.com/civicprep/civicprep/internal/ui/theme"
)

// sizes offered in setup; zero means every due card.
var sizes = []int{5, 10, 20, 0}

// ReviewScreen runs a spaced-repetition review session.
type ReviewScreen struct {
	deps    screen.Deps
	sess    *spacedrep.Session
	sizeSel int
	timer   bool
	flipped bool
	last    *spacedrep.Rated
	notice  string
}

var _ screen.Screen = (*ReviewScreen)(nil)
var _ screen.KeyHintProvider = (*ReviewScreen)(nil)
var _ screen.BackHandler = (*ReviewScreen)(nil)

// New creates a ReviewScreen in the setup phase.
func New(deps screen.Deps) *ReviewScreen {
	size := 1
	for i, n := range sizes {
		if n > 0 && n == deps.ReviewSize {
			size = i
		}
	}
	return &ReviewScreen{
		deps:    deps,
		sess:    spacedrep.NewSession(deps.Deck, deps.Clock),
		sizeSel: size,
	}
}

func (s *ReviewScreen) Init() tea.Cmd {
	return nil
}

func (s *ReviewScreen) Title() string {
	return "Review"
}

// HandlesBack keeps Esc inside the screen while cards are being graded.
func (s *ReviewScreen) HandlesBack() bool {
	return s.sess.Phase() == spacedrep.PhaseReviewing
}

func (s *ReviewScreen) KeyHints() []layout.KeyHint {
	switch s.sess.Phase() {
	case spacedrep.PhaseSetup:
		return []layout.KeyHint{
			{Key: "←→", Description: "Cards"},
			{Key: "T", Description: "Timer"},
			{Key: "Enter", Description: "Start"},
			{Key: "Esc", Description: "Back"},
		}
	case spacedrep.PhaseReviewing:
		if !s.flipped {
			return []layout.KeyHint{
				{Key: "Space", Description: "Show answer"},
				{Key: "Esc", Description: "Finish"},
			}
		}
		return []layout.KeyHint{
			{Key: "E", Description: "Easy"},
			{Key: "H", Description: "Hard"},
			{Key: "Esc", Description: "Finish"},
		}
	default:
		return []layout.KeyHint{
			{Key: "R", Description: "Review again"},
			{Key: "Enter", Description: "Home"},
		}
	}
}

func (s *ReviewScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *ReviewScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()
	switch s.sess.Phase() {
	case spacedrep.PhaseSetup:
		switch key {
		case "left", "h":
			s.sizeSel = max(s.sizeSel-1, 0)
		case "right", "l":
			s.sizeSel = min(s.sizeSel+1, len(sizes)-1)
		case "t":
			s.timer = !s.timer
		case "enter":
			s.start()
		}

	case spacedrep.PhaseReviewing:
		switch key {
		case "esc":
			s.sess.Exit()
		case "space", " ", "enter":
			s.flipped = true
		case "e", "1":
			if s.flipped {
				s.rate(true)
			}
		case "h", "2":
			if s.flipped {
				s.rate(false)
			}
		}

	case spacedrep.PhaseSummary:
		switch key {
		case "r":
			s.sess.Reset()
			s.last = nil
		case "enter":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *ReviewScreen) start() {
	err := s.sess.Start(context.Background(), sizes[s.sizeSel], s.timer)
	switch {
	case errors.Is(err, spacedrep.ErrNoDueCards):
		s.notice = "No cards are due. Missed practice questions are added here automatically."
	case err != nil:
		s.deps.Log().Error("review start failed", "error", err)
		s.notice = "Could not start review: " + err.Error()
	default:
		s.notice = ""
		s.flipped = false
		s.last = nil
	}
}

func (s *ReviewScreen) rate(isEasy bool) {
	r, err := s.sess.Rate(context.Background(), isEasy)
	if err != nil {
		s.deps.Log().Error("card grade not saved", "error", err)
		s.notice = "Could not save grade: " + err.Error()
		return
	}
	s.notice = ""
	s.last = &r
	s.flipped = false
}

func (s *ReviewScreen) View(width, height int) string {
	cw := layout.ContentWidth(width)
	var body string
	switch s.sess.Phase() {
	case spacedrep.PhaseSetup:
		body = s.viewSetup(cw)
	case spacedrep.PhaseReviewing:
		body = s.viewCard(cw)
	default:
		body = s.viewSummary(cw)
	}
	return layout.Centered(body, width, height)
}

func sizeLabel(n int) string {
	if n == 0 {
		return "All"
	}
	return fmt.Sprintf("%d", n)
}

func (s *ReviewScreen) viewSetup(cw int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("Review due cards") + "\n")
	b.WriteString(theme.Translation.Render("ပြန်လည်လေ့ကျင့်ရန် ကတ်များ") + "\n\n")

	due := 0
	if s.deps.Deck != nil {
		due = s.deps.Deck.DueCount(context.Background(), s.deps.Now())
	}
	b.WriteString(theme.Body.Render(fmt.Sprintf("%d cards due", due)) + "\n\n")

	opts := make([]string, len(sizes))
	for i, n := range sizes {
		label := " " + sizeLabel(n) + " "
		if i == s.sizeSel {
			opts[i] = theme.Selected.Reverse(true).Render(label)
		} else {
			opts[i] = theme.Unselected.Render(label)
		}
	}
	b.WriteString("Cards per session:  " + strings.Join(opts, " ") + "\n")
	timer := "off"
	if s.timer {
		timer = "on"
	}
	b.WriteString(theme.Hint.Render("Timer: "+timer) + "\n")
	if s.notice != "" {
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(theme.Warning).Render(s.notice) + "\n")
	}
	return components.InfoPanel(b.String(), cw)
}

func (s *ReviewScreen) viewCard(cw int) string {
	card, ok := s.sess.Current()
	if !ok {
		return ""
	}
	cur, total := s.sess.Progress()

	var b strings.Builder
	b.WriteString(theme.Hint.Render(fmt.Sprintf("Card %d of %d", cur, total)))
	_, label := spacedrep.StatusLabel(card, s.deps.Now())
	b.WriteString("  " + theme.Hint.Render(label.EN) + "\n\n")

	q, found := s.deps.Bank.Get(card.QuestionID)
	if !found {
		b.WriteString(theme.Incorrect.Render("Unknown question " + card.QuestionID))
		return components.InfoPanel(b.String(), cw)
	}
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(q.QuestionEN) + "\n")
	b.WriteString(theme.Translation.Render(q.QuestionMY) + "\n\n")

	if s.flipped {
		b.WriteString(layout.Divider("Answer", cw-8) + "\n")
		answers := q.StudyAnswers
		if len(answers) == 0 {
			c := q.CorrectAnswer()
			b.WriteString(theme.Correct.Render(c.TextEN) + "\n")
			b.WriteString(theme.Translation.Render(c.TextMY) + "\n")
		}
		for _, a := range answers {
			b.WriteString(theme.Correct.Render("• "+a.TextEN) + "\n")
			if a.TextMY != "" {
				b.WriteString("  " + theme.Translation.Render(a.TextMY) + "\n")
			}
		}
	} else {
		b.WriteString(theme.Hint.Render("Say the answer aloud, then press Space."))
	}

	if s.last != nil {
		b.WriteString("\n\n" + theme.Hint.Render(intervalLine(s.last.IntervalText)))
	}
	if s.notice != "" {
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(theme.Warning).Render(s.notice))
	}
	return components.InfoPanel(b.String(), cw)
}

func intervalLine(t i18n.Bilingual) string {
	return fmt.Sprintf("Previous card: next review in %s · %s", t.EN, t.MY)
}

func (s *ReviewScreen) viewSummary(cw int) string {
	sum := s.sess.Summary()
	var b strings.Builder
	b.WriteString(theme.Title.Render("Review complete") + "\n")
	b.WriteString(theme.Translation.Render("ပြန်လည်လေ့ကျင့်မှု ပြီးဆုံးပါပြီ") + "\n\n")
	b.WriteString(theme.Body.Render(fmt.Sprintf("Reviewed %d   Easy %d   Hard %d", sum.Reviewed, sum.Easy, sum.Hard)) + "\n")
	if sum.Skipped > 0 {
		b.WriteString(theme.Hint.Render(fmt.Sprintf("%d cards left for later", sum.Skipped)) + "\n")
	}
	if sum.Elapsed > 0 {
		b.WriteString(theme.Hint.Render(fmt.Sprintf("Time %d:%02d", int(sum.Elapsed.Minutes()), int(sum.Elapsed.Seconds())%60)) + "\n")
	}
	if len(sum.Results) > 0 {
		b.WriteString("\n")
		for _, r := range sum.Results {
			style := theme.Correct
			if r.Grade != spacedrep.GradeEasy {
				style = lipgloss.NewStyle().Foreground(theme.Warning)
			}
			b.WriteString(fmt.Sprintf("%-10s %s  %s\n", r.QuestionID, style.Render(r.Grade.String()), theme.Hint.Render(r.IntervalText.EN)))
		}
	}
	return components.InfoPanel(b.String(), cw)
}
