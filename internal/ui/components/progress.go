package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/civicprep/civicprep/internal/ui/theme"
)

// ProgressBar displays a horizontal bar for a 0-100 score.
type ProgressBar struct {
	Label      string
	LabelWidth int
	Score      int
	Width      int
}

// NewProgressBar creates a progress bar. labelWidth pads labels so bars
// in a list line up.
func NewProgressBar(label string, labelWidth, score, width int) ProgressBar {
	return ProgressBar{Label: label, LabelWidth: labelWidth, Score: score, Width: width}
}

// View renders the bar colored by score.
func (p ProgressBar) View() string {
	var result string
	if p.Label != "" {
		result = lipgloss.NewStyle().
			Foreground(theme.Text).
			Width(p.LabelWidth).
			Render(p.Label) + "  "
	}

	const percentWidth = 6 // "  100%"
	barWidth := max(p.Width-lipgloss.Width(result)-percentWidth, 4)
	filled := min(max(barWidth*p.Score/100, 0), barWidth)

	result += lipgloss.NewStyle().
		Background(theme.ScoreColor(p.Score)).
		Render(strings.Repeat(" ", filled))
	result += lipgloss.NewStyle().
		Background(theme.Border).
		Render(strings.Repeat(" ", barWidth-filled))
	result += lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("  %3d%%", p.Score))
	return result
}
