package home

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/civicprep/civicprep/internal/router"
	"github.com/civicprep/civicprep/internal/screen"
	"github.com/civicprep/civicprep/internal/screens/drill"
	"github.com/civicprep/civicprep/internal/screens/progress"
	"github.com/civicprep/civicprep/internal/screens/quiz"
	"github.com/civicprep/civicprep/internal/screens/review"
	"github.com/civicprep/civicprep/internal/session"
	"github.com/civicprep/civicprep/internal/stats"
	"github.com/civicprep/civicprep/internal/ui/components"
)

// HomeScreen is the main menu with a progress dashboard.
type HomeScreen struct {
	deps   screen.Deps
	menu   components.Menu
	report *stats.Report
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.Refresher = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(deps screen.Deps) *HomeScreen {
	h := &HomeScreen{deps: deps}
	h.menu = components.NewMenu(h.items(0))
	return h
}

func push(s func() screen.Screen) func() tea.Cmd {
	return func() tea.Cmd {
		return func() tea.Msg { return router.PushScreenMsg{Screen: s()} }
	}
}

func (h *HomeScreen) items(due int) []components.MenuItem {
	d := h.deps
	reviewHint := ""
	if due > 0 {
		reviewHint = fmt.Sprintf("(%d)", due)
	}
	return []components.MenuItem{
		{Label: "REVIEW CARDS", Hint: reviewHint, Action: push(func() screen.Screen { return review.New(d) })},
		{Label: "PRACTICE", Action: push(func() screen.Screen { return quiz.New(d, session.ModePractice) })},
		{Label: "MOCK TEST", Action: push(func() screen.Screen { return quiz.New(d, session.ModeMock) })},
		{Label: "INTERVIEW", Action: push(func() screen.Screen { return drill.New(d) })},
		{Label: "PROGRESS", Action: push(func() screen.Screen { return progress.New(d) })},
		{Label: "QUIT", Action: func() tea.Cmd { return tea.Quit }},
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.deps.LoadStats()
}

// Refresh reloads the dashboard after a session or review.
func (h *HomeScreen) Refresh() tea.Cmd {
	return h.deps.LoadStats()
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(screen.StatsLoadedMsg); ok {
		if msg.Err == nil && msg.Report != nil {
			h.report = msg.Report
			selected := h.menu.Selected
			h.menu = components.NewMenu(h.items(msg.Report.DueCount))
			h.menu.Selected = selected
		}
		return h, nil
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	// height is the content area; add back header and footer.
	termHeight := height + 8
	compact := termHeight < 30 || width < 100
	cw := contentWidth(width)

	sections := []string{
		renderTitle(cw, compact),
		renderStatsBar(h.report, cw, compact),
	}
	if compact {
		sections = append(sections, lipgloss.NewStyle().Width(cw).Render(h.menu.View()))
	} else {
		sections = append(sections, renderButtons(h.menu.Items, h.menu.Selected, cw))
	}

	return renderCabinetFrame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
