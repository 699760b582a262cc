package tui

import "github.com/charmbracelet/lipgloss"

// truncate shortens text to maxLen runes, adding "..." if truncated
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

var (
	// Colors
	colorPrimary   = lipgloss.Color("#EC4899")
	colorSecondary = lipgloss.Color("#8B5CF6")
	colorSuccess   = lipgloss.Color("#10B981")
	colorWarning   = lipgloss.Color("#F59E0B")
	colorError     = lipgloss.Color("#EF4444")
	colorMuted     = lipgloss.Color("#6B7280")
	colorWhite     = lipgloss.Color("#F9FAFB")

	// Title
	styleLogo = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	// Subtitle
	styleSubtitle = lipgloss.NewStyle().
			Foreground(colorMuted)

	// Box
	styleBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)

	styleLabel = lipgloss.NewStyle().
			Foreground(colorSecondary).
			Bold(true)

	styleHeading = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true).
			MarginTop(1)

	styleButton = lipgloss.NewStyle().
			Foreground(colorWhite).
			Background(colorPrimary).
			Bold(true).
			Padding(0, 2)

	styleOK = lipgloss.NewStyle().
		Foreground(colorSuccess)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorWarning).
			Bold(true)

	styleError = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	// Status bar
	styleStatusBar = lipgloss.NewStyle().
			Foreground(colorMuted)
)
