package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sant0-9/heartgpt/internal/config"
)

const (
	title       = "heartGPT🖤"
	tagline     = "Your AI-powered breakup recovery team is here!"
	footerText  = "Built with ❤️ for Broken Hearts"
	buttonLabel = "Get Recovery Plan 💝"

	sidebarWidth = 42
)

func (a *App) renderHeader() string {
	header := lipgloss.JoinVertical(lipgloss.Center,
		styleLogo.Render(title),
		styleSubtitle.Render(tagline),
	)
	return lipgloss.PlaceHorizontal(a.width, lipgloss.Center, header)
}

func (a *App) renderFooter(help string) string {
	footer := lipgloss.JoinVertical(lipgloss.Center,
		styleSubtitle.Render(strings.Repeat("─", min(60, a.width))),
		styleSubtitle.Render(footerText),
		styleStatusBar.Render(help),
	)
	return lipgloss.PlaceHorizontal(a.width, lipgloss.Center, footer)
}

func (a *App) renderBanner() string {
	switch a.state.bannerLevel {
	case bannerInfo:
		return styleOK.Render("✔ " + a.state.banner)
	case bannerWarning:
		return styleWarning.Render("⚠ " + a.state.banner)
	case bannerError:
		return styleError.Render("✖ " + a.state.banner)
	default:
		return ""
	}
}

func (a *App) renderSidebar() string {
	var b strings.Builder

	b.WriteString(styleLabel.Render("🔑 API Configuration"))
	b.WriteString("\n\n")
	b.WriteString(a.state.credential.View())
	b.WriteString("\n\n")

	if strings.TrimSpace(a.state.credential.Value()) != "" {
		b.WriteString(styleOK.Render("API Key provided! ✅"))
	} else {
		b.WriteString(styleWarning.Render("Please enter your API key to proceed."))
	}
	b.WriteString("\n\n")

	signup := "https://console.groq.com"
	if p := config.GetProvider(a.state.config.Provider); p != nil && p.SignupURL != "" {
		signup = p.SignupURL
	}
	b.WriteString(styleSubtitle.Render("Get your free API key from " + signup))
	b.WriteString("\n\n")
	b.WriteString(styleSubtitle.Render("Model: " + config.DisplayName(a.state.config.Model)))

	style := styleBox.Width(sidebarWidth)
	if a.state.focus == focusCredential {
		style = style.BorderForeground(colorPrimary)
	}
	return style.Render(b.String())
}

func (a *App) renderNarrativeColumn(width int) string {
	var b strings.Builder
	b.WriteString(styleLabel.Render("Share Your Feelings"))
	b.WriteString("\n\n")
	b.WriteString(a.state.narrative.View())

	style := styleBox.Width(width)
	if a.state.focus == focusNarrative {
		style = style.BorderForeground(colorPrimary)
	}
	return style.Render(b.String())
}

func (a *App) renderUploadColumn(width int) string {
	var b strings.Builder
	b.WriteString(styleLabel.Render("Upload Chat Screenshots (Optional)"))
	b.WriteString("\n\n")
	b.WriteString(a.state.uploadPath.View())
	b.WriteString("\n")

	if a.state.uploadErr != "" {
		b.WriteString(styleError.Render(truncate(a.state.uploadErr, width-4)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(a.state.uploads) == 0 {
		b.WriteString(styleSubtitle.Render("No screenshots attached"))
	}
	for _, u := range a.state.uploads {
		b.WriteString(styleOK.Render("🖼  "))
		b.WriteString(truncate(u.Preview, width-6))
		b.WriteString("\n")
	}

	style := styleBox.Width(width)
	if a.state.focus == focusUpload {
		style = style.BorderForeground(colorPrimary)
	}
	return style.Render(strings.TrimRight(b.String(), "\n"))
}

func (a *App) renderCompose() string {
	mainWidth := a.width - sidebarWidth - 6
	if mainWidth < 40 {
		mainWidth = 40
	}
	colWidth := mainWidth/2 - 1

	columns := lipgloss.JoinHorizontal(lipgloss.Top,
		a.renderNarrativeColumn(colWidth),
		" ",
		a.renderUploadColumn(colWidth),
	)

	button := styleButton.Render(buttonLabel)
	if a.state.running {
		button = a.state.spinner.View() + " " + styleSubtitle.Render("Checking your request...")
	}

	main := lipgloss.JoinVertical(lipgloss.Left, columns, "", button)
	if banner := a.renderBanner(); banner != "" {
		main = lipgloss.JoinVertical(lipgloss.Left, main, "", banner)
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, a.renderSidebar(), "  ", main)

	help := helpLine(keys.Next, keys.Submit, keys.AddImage, keys.DropImage, keys.Quit)
	return lipgloss.JoinVertical(lipgloss.Left,
		a.renderHeader(),
		"",
		lipgloss.PlaceHorizontal(a.width, lipgloss.Center, body),
		"",
		a.renderFooter(help),
	)
}
