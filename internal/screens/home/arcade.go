package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/capsulemed/internal/ui/components"
	"github.com/abhisek/capsulemed/internal/ui/theme"
)

// Block-letter title.
const arcadeTitleFull = `╔═╗╔═╗╔═╗╔═╗╦ ╦╦  ╔═╗  ╔╦╗╔═╗╔╦╗
║  ╠═╣╠═╝╚═╗║ ║║  ║╣   ║║║║╣  ║║
╚═╝╩ ╩╩  ╚═╝╚═╝╩═╝╚═╝  ╩ ╩╚═╝═╩╝`

const arcadeTitleCompact = "C A P S U L E · M E D"

// renderTitle returns the styled title block or compact fallback.
func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	title := arcadeTitleFull
	if compact {
		title = arcadeTitleCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(style.Render(title))
}

// renderStatsBar renders progress and identity in a bordered box matching
// content width.
func renderStatsBar(completed, total int, user string, cw int, compact bool) string {
	doneStyle := lipgloss.NewStyle().Foreground(theme.Highlight).Bold(true)
	userStyle := lipgloss.NewStyle().Foreground(theme.Info).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	who := dimStyle.Render("invité")
	if user != "" {
		who = userStyle.Render(user)
	}

	var stats string
	if compact {
		stats = fmt.Sprintf("%s %s",
			doneStyle.Render(fmt.Sprintf("✔%d/%d", completed, total)),
			who,
		)
	} else {
		stats = fmt.Sprintf("%s  %s",
			doneStyle.Render(fmt.Sprintf("✔ %d/%d CAPSULES", completed, total)),
			who,
		)
	}

	// Wrap in a double-border box at the same content width
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Info).
		Width(cw - 2). // account for border chars
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(stats)
}

// buttonWidth is the fixed width for menu buttons.
const buttonWidth = 22

// renderArcadeMenu renders each menu item as a fixed-width button.
func renderArcadeMenu(items []string, selected int, cw int, disabled map[int]bool) string {
	var buttons []string
	for i, label := range items {
		state := components.ButtonNormal
		switch {
		case disabled[i]:
			state = components.ButtonDisabled
		case i == selected:
			state = components.ButtonSelected
		}
		buttons = append(buttons, components.ArcadeButton(label, state, buttonWidth))
	}

	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(buttons, "\n"))
}

// renderArcadeMenuCompact renders menu items as simple text lines (no borders)
// for very small terminals where bordered buttons would overflow.
func renderArcadeMenuCompact(items []string, selected int, cw int, disabled map[int]bool) string {
	var lines []string
	for i, label := range items {
		var line string
		if disabled[i] {
			line = lipgloss.NewStyle().
				Foreground(theme.TextDim).
				Render("   " + label)
		} else if i == selected {
			line = lipgloss.NewStyle().
				Foreground(theme.BgDark).
				Background(theme.Highlight).
				Bold(true).
				Render(" ▸ " + label + " ")
		} else {
			line = lipgloss.NewStyle().
				Foreground(theme.Text).
				Render("   " + label)
		}
		lines = append(lines, line)
	}
	block := strings.Join(lines, "\n")

	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(block)
}

// renderLLMBanner renders a warning banner when no completion API key is
// configured.
func renderLLMBanner(cw int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Accent).
		Width(cw).
		Align(lipgloss.Center).
		Render("⚠ Clé API manquante : l'IA est désactivée (voir capsulemed --help)")
}

// renderMascotBox renders the mascot centered in a box matching content width.
func renderMascotBox(variant MascotVariant, cw int) string {
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(RenderMascot(variant))
}
