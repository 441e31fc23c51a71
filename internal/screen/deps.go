package screen

import (
	"context"
	"log/slog"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/civicprep/civicprep/internal/interview"
	"github.com/civicprep/civicprep/internal/practice"
	"github.com/civicprep/civicprep/internal/question"
	"github.com/civicprep/civicprep/internal/session"
	"github.com/civicprep/civicprep/internal/spacedrep"
	"github.com/civicprep/civicprep/internal/stats"
	"github.com/civicprep/civicprep/internal/store"
)

// Deps holds the services screens share.
type Deps struct {
	Bank    *question.Bank
	Answers store.AnswerRepo
	Deck    *spacedrep.Deck
	Judge   *interview.Judge

	// Saver stores finished sessions. Nil keeps results local only.
	Saver  *session.Saver
	UserID string

	PracticeCount int
	WeakRatio     float64
	PracticeFocus practice.Focus
	// PracticeCategories limits practice to these sub-categories. Empty
	// means the whole bank.
	PracticeCategories []question.Category
	ReviewSize         int

	Logger *slog.Logger
	Clock  func() time.Time
}

// Now returns the current time from Clock.
func (d Deps) Now() time.Time {
	if d.Clock == nil {
		return time.Now()
	}
	return d.Clock()
}

// Log returns Logger, or the default logger when unset.
func (d Deps) Log() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

// History reads the answer history. A failed read is logged and treated
// as empty.
func (d Deps) History(ctx context.Context) []store.StoredAnswer {
	if d.Answers == nil {
		return nil
	}
	hist, err := d.Answers.History(ctx)
	if err != nil {
		d.Log().Warn("answer history unavailable", "error", err)
		return nil
	}
	return hist
}

// StatsLoadedMsg carries a freshly computed progress report. The app shows
// it in the header; screens may also use it.
type StatsLoadedMsg struct {
	Report *stats.Report
	Err    error
}

// LoadStats returns a command that builds the progress report.
func (d Deps) LoadStats() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		var cards []spacedrep.Card
		if d.Deck != nil {
			cards = d.Deck.All(ctx)
		}
		r, err := stats.Build(d.Bank, d.History(ctx), cards, d.Now())
		return StatsLoadedMsg{Report: r, Err: err}
	}
}
