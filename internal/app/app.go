package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/civicprep/civicprep/internal/router"
	"github.com/civicprep/civicprep/internal/screen"
	"github.com/civicprep/civicprep/internal/screens/drill"
	"github.com/civicprep/civicprep/internal/screens/home"
	"github.com/civicprep/civicprep/internal/screens/quiz"
	"github.com/civicprep/civicprep/internal/screens/review"
	"github.com/civicprep/civicprep/internal/session"
	"github.com/civicprep/civicprep/internal/ui/layout"
)

// Start selects the first screen pushed above home.
type Start int

const (
	StartHome Start = iota
	StartReview
	StartPractice
	StartMock
	StartInterview
)

// Options configures the TUI.
type Options struct {
	screen.Deps
	Start Start
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	deps   screen.Deps
	start  Start
	stats  layout.HeaderStats
	width  int
	height int
}

// newAppModel creates a new AppModel with the home screen.
func newAppModel(opts Options) AppModel {
	return AppModel{
		router: router.New(home.New(opts.Deps)),
		deps:   opts.Deps,
		start:  opts.Start,
		stats:  layout.HeaderStats{Readiness: -1},
	}
}

func (m AppModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.router.Active().Init()}
	if s := startScreen(m.start, m.deps); s != nil {
		cmds = append(cmds, func() tea.Msg { return router.PushScreenMsg{Screen: s} })
	}
	return tea.Batch(cmds...)
}

func startScreen(start Start, deps screen.Deps) screen.Screen {
	switch start {
	case StartReview:
		return review.New(deps)
	case StartPractice:
		return quiz.New(deps, session.ModePractice)
	case StartMock:
		return quiz.New(deps, session.ModeMock)
	case StartInterview:
		return drill.New(deps)
	default:
		return nil
	}
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case screen.StatsLoadedMsg:
		if msg.Err != nil {
			m.deps.Log().Warn("progress report failed", "error", msg.Err)
		} else if msg.Report != nil {
			m.stats = layout.HeaderStats{
				Readiness: msg.Report.Readiness.Score,
				Due:       msg.Report.DueCount,
			}
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if bh, ok := m.router.Active().(screen.BackHandler); ok && bh.HandlesBack() {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.stats, m.width)

	var footerHints []layout.KeyHint
	if hp, ok := active.(screen.KeyHintProvider); ok && hp.KeyHints() != nil {
		footerHints = hp.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(m.height-headerHeight-footerHeight, 0)

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
