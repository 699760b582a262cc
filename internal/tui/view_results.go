package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/sant0-9/heartgpt/internal/agents"
)

const (
	resultsTitle = "Your Healing Journey Begins Here!"

	// header, title, footer and their spacing
	resultsChrome = 10
)

func (a *App) renderResults() string {
	heading := lipgloss.PlaceHorizontal(a.width, lipgloss.Center,
		styleLogo.Render(resultsTitle))

	body := styleBox.
		BorderForeground(colorSecondary).
		Render(a.state.viewport.View())

	parts := []string{a.renderHeader(), "", heading, body}
	if banner := a.renderBanner(); banner != "" {
		parts = append(parts, "", lipgloss.PlaceHorizontal(a.width, lipgloss.Center, banner))
	}

	var help string
	if a.state.running {
		done := 0
		for _, s := range a.state.sections {
			if !s.running {
				done++
			}
		}
		help = styleStatusBar.Render(fmt.Sprintf("%d/%d agents done  [↑/↓] Scroll  [ctrl+c] Quit", done, len(agents.Kinds())))
	} else {
		help = helpLine(keys.Copy, keys.Back, keys.Quit) + "  [↑/↓] Scroll"
		if id := a.state.requestID; len(id) >= 8 {
			help += "  ref " + id[:8]
		}
	}
	parts = append(parts, a.renderFooter(help))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
