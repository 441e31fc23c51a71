package progress

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/civicprep/civicprep/internal/question"
	"github.com/civicprep/civicprep/internal/screen"
	"github.com/civicprep/civicprep/internal/stats"
	"github.com/civicprep/civicprep/internal/ui/components"
	"github.com/civicprep/civicprep/internal/ui/layout"
	"github.com/civicprep/civicprep/internal/ui/theme"
)

// ProgressScreen shows readiness and per-category mastery.
type ProgressScreen struct {
	deps   screen.Deps
	report *stats.Report
	err    error
}

var _ screen.Screen = (*ProgressScreen)(nil)

// New creates a ProgressScreen.
func New(deps screen.Deps) *ProgressScreen {
	return &ProgressScreen{deps: deps}
}

func (p *ProgressScreen) Init() tea.Cmd {
	return p.deps.LoadStats()
}

func (p *ProgressScreen) Title() string {
	return "Progress"
}

func (p *ProgressScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(screen.StatsLoadedMsg); ok {
		p.report, p.err = msg.Report, msg.Err
	}
	return p, nil
}

func categoryLabel(id string) string {
	if name := question.Category(id).Name(); name.EN != "" {
		return name.EN
	}
	return id
}

func (p *ProgressScreen) View(width, height int) string {
	cw := layout.ContentWidth(width)
	if p.err != nil {
		return layout.Centered(theme.Incorrect.Render("Could not load progress: "+p.err.Error()), width, height)
	}
	if p.report == nil {
		return layout.Centered(theme.Hint.Render("Loading…"), width, height)
	}
	r := p.report
	rd := r.Readiness

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.ScoreColor(rd.Score)).Bold(true).
		Render(fmt.Sprintf("Readiness %d%%", rd.Score)))
	b.WriteString("  " + theme.Body.Render(rd.Tier.EN) + "\n")
	b.WriteString(theme.Translation.Render(rd.Tier.MY) + "\n")
	if rd.IsCapped {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Warning).Render(
			fmt.Sprintf("Capped from %d%%: no answers yet in %s", rd.Uncapped, strings.Join(rd.CappedCategories, ", "))))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	const labelWidth = 14
	dims := []struct {
		label string
		value int
	}{
		{"Mastery", rd.Dimensions.Mastery.Value},
		{"Coverage", rd.Dimensions.Breadth.Value},
		{"Review", rd.Dimensions.SRS.Value},
	}
	for _, d := range dims {
		b.WriteString(components.NewProgressBar(d.label, labelWidth, d.value, cw).View() + "\n")
	}
	b.WriteString(theme.Hint.Render(fmt.Sprintf("%d of %d questions attempted · %d cards, %d due",
		r.Attempted, r.BankSize, r.DeckSize, r.DueCount)) + "\n\n")

	b.WriteString(layout.Divider(fmt.Sprintf("Categories · overall %d%%", r.Mastery.Overall), cw) + "\n")
	catLabel := 34
	for _, e := range r.Mastery.Categories {
		b.WriteString(components.NewProgressBar(categoryLabel(e.CategoryID), catLabel, e.Mastery, cw).View() + "\n")
	}

	if len(r.Mastery.WeakAreas) > 0 {
		names := make([]string, len(r.Mastery.WeakAreas))
		for i, w := range r.Mastery.WeakAreas {
			names[i] = categoryLabel(w.CategoryID)
		}
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(theme.Warning).Render("Focus on: "+strings.Join(names, ", ")) + "\n")
	}
	if n := len(r.Mastery.StaleCategories); n > 0 {
		b.WriteString(theme.Hint.Render(fmt.Sprintf("%d categories not practiced in the last week", n)) + "\n")
	}
	if m := r.Mastery.Milestone; m != nil {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Accent).Render(
			fmt.Sprintf("Next: %s at %d%% (%d to go)", strings.ToUpper(string(m.Level)), m.Target, m.Remaining)) + "\n")
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top,
		lipgloss.NewStyle().Width(cw).Padding(1, 0).Render(b.String()))
}
