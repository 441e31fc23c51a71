package components

import (
	"charm.land/lipgloss/v2"

	"github.com/civicprep/civicprep/internal/ui/theme"
)

// Panel wraps content in a rounded-border box at the given width.
func Panel(content string, width int, border lipgloss.Style) string {
	return border.
		Border(lipgloss.RoundedBorder()).
		Width(max(width-2, 0)).
		Padding(1, 2).
		Render(content)
}

// InfoPanel is a Panel with the default border color.
func InfoPanel(content string, width int) string {
	return Panel(content, width, lipgloss.NewStyle().BorderForeground(theme.Border))
}

// ResultPanel is a Panel bordered green or red by outcome.
func ResultPanel(content string, width int, ok bool) string {
	c := theme.Error
	if ok {
		c = theme.Success
	}
	return Panel(content, width, lipgloss.NewStyle().BorderForeground(c))
}

// Button renders a centered, fixed-width button.
func Button(label string, selected bool, width int) string {
	style := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)
	if selected {
		return style.
			Bold(true).
			Foreground(theme.BgDark).
			Background(theme.Accent).
			BorderForeground(theme.Accent).
			Render("▸ " + label)
	}
	return style.
		Foreground(theme.Text).
		BorderForeground(theme.Border).
		Render(label)
}
