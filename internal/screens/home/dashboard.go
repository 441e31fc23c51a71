package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/civicprep/civicprep/internal/stats"
	"github.com/civicprep/civicprep/internal/ui/components"
	"github.com/civicprep/civicprep/internal/ui/theme"
)

const titleFull = `╔═╗╦╦  ╦╦╔═╗  ╔═╗╦═╗╔═╗╔═╗
║  ║╚╗╔╝║║    ╠═╝╠╦╝║╣ ╠═╝
╚═╝╩ ╚╝ ╩╚═╝  ╩  ╩╚═╚═╝╩  `

const titleCompact = "C I V I C   P R E P"

const tagline = "US citizenship civics test · အမေရိကန်နိုင်ငံသားစာမေးပွဲ"

// contentWidth returns the uniform inner width used for all sections.
func contentWidth(frameWidth int) int {
	return max(20, min(frameWidth-6, 60))
}

func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	art := titleFull
	if compact {
		art = titleCompact
	}
	block := style.Render(art)
	if !compact {
		block += "\n" + theme.Hint.Render(tagline)
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(block)
}

// renderStatsBar shows readiness, mastery and due cards in a bordered box.
func renderStatsBar(r *stats.Report, cw int, compact bool) string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	if r == nil {
		return statsBox(dim.Render("Loading progress…"), cw)
	}

	ready := r.Readiness.Score
	readyStyle := lipgloss.NewStyle().Foreground(theme.ScoreColor(ready)).Bold(true)
	masteryStyle := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	dueStyle := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)

	var line string
	if compact {
		line = fmt.Sprintf("%s %s %s",
			readyStyle.Render(fmt.Sprintf("R%d%%", ready)),
			masteryStyle.Render(fmt.Sprintf("M%d%%", r.Mastery.Overall)),
			dueText(r.DueCount, true, dueStyle, dim),
		)
	} else {
		line = fmt.Sprintf("%s  %s  %s",
			readyStyle.Render(fmt.Sprintf("READY %d%%", ready)),
			masteryStyle.Render(fmt.Sprintf("MASTERY %d%%", r.Mastery.Overall)),
			dueText(r.DueCount, false, dueStyle, dim),
		)
		line += "\n" + theme.Translation.Render(r.Readiness.Tier.MY) +
			"  " + dim.Render(r.Readiness.Tier.EN)
	}
	return statsBox(line, cw)
}

func statsBox(content string, cw int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(cw-2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(content)
}

func dueText(due int, compact bool, active, dim lipgloss.Style) string {
	switch {
	case due == 0 && compact:
		return dim.Render("D0")
	case due == 0:
		return dim.Render("NONE DUE")
	case compact:
		return active.Render(fmt.Sprintf("D%d", due))
	default:
		return active.Render(fmt.Sprintf("%d DUE", due))
	}
}

// buttonWidth is the fixed width for menu buttons.
const buttonWidth = 26

func renderButtons(items []components.MenuItem, selected int, cw int) string {
	buttons := make([]string, 0, len(items))
	for i, item := range items {
		label := item.Label
		if item.Hint != "" {
			label += " " + item.Hint
		}
		buttons = append(buttons, components.Button(label, i == selected, buttonWidth))
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(buttons, "\n"))
}

// renderCabinetFrame wraps content in a double-border frame centered in
// the given dimensions.
func renderCabinetFrame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Border).
		Width(width-2).
		Height(height-2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}
