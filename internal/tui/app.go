package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sant0-9/heartgpt/internal/config"
	"github.com/sant0-9/heartgpt/internal/errs"
	"github.com/sant0-9/heartgpt/internal/pipeline"
	"github.com/sant0-9/heartgpt/internal/present"
	"github.com/sant0-9/heartgpt/internal/staging"
)

var writeClipboard = clipboard.WriteAll

type view int

const (
	viewCompose view = iota
	viewResults
)

type App struct {
	width    int
	height   int
	view     view
	state    *state
	pipeline *pipeline.Pipeline
	ctx      context.Context
	cancel   context.CancelFunc
	quitting bool

	markdownStyle string
}

// NewApp builds the UI around a pipeline. credential prefills the sidebar.
func NewApp(cfg *config.Config, pl *pipeline.Pipeline, credential string) *App {
	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		width:    100,
		height:   30,
		view:     viewCompose,
		state:    newState(cfg, credential),
		pipeline: pl,
		ctx:      ctx,
		cancel:   cancel,

		markdownStyle: "pink",
	}
	a.applyFocus()
	return a
}

// SetProgram routes pipeline progress into the running program.
func (a *App) SetProgram(p *tea.Program) {
	a.pipeline.SetProgressCallback(func(pr pipeline.Progress) {
		p.Send(progressMsg{pr})
	})
}

type progressMsg struct{ pipeline.Progress }

type resultMsg struct{ *pipeline.Result }

func (a *App) Init() tea.Cmd {
	return tea.Batch(tea.WindowSize(), textinput.Blink, textarea.Blink)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		handled, cmd := a.handleKey(msg)
		if handled {
			return a, cmd
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.layout()
		a.refreshResults()
		return a, nil

	case spinner.TickMsg:
		if !a.state.running {
			return a, nil
		}
		var cmd tea.Cmd
		a.state.spinner, cmd = a.state.spinner.Update(msg)
		a.refreshResults()
		return a, cmd

	case progressMsg:
		a.handleProgress(msg.Progress)
		return a, nil

	case resultMsg:
		a.handleResult(msg.Result)
		return a, nil
	}

	switch a.view {
	case viewCompose:
		cmds = append(cmds, a.updateFocused(msg))
	case viewResults:
		var cmd tea.Cmd
		a.state.viewport, cmd = a.state.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return a, tea.Batch(cmds...)
}

func (a *App) handleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		a.quit()
		return true, tea.Quit

	case key.Matches(msg, keys.Back):
		if a.view == viewResults {
			if a.state.running {
				return true, nil
			}
			a.state.resetForm()
			a.view = viewCompose
			a.state.focus = focusNarrative
			a.applyFocus()
			return true, nil
		}
		a.quit()
		return true, tea.Quit

	case key.Matches(msg, keys.Submit):
		return true, a.submit()
	}

	if a.view == viewResults && key.Matches(msg, keys.Copy) {
		a.copyResults()
		return true, nil
	}

	if a.view != viewCompose {
		return false, nil
	}

	switch {
	case key.Matches(msg, keys.Next):
		a.state.focus = (a.state.focus + 1) % focusCount
		a.applyFocus()
		return true, nil

	case key.Matches(msg, keys.Prev):
		a.state.focus = (a.state.focus + focusCount - 1) % focusCount
		a.applyFocus()
		return true, nil

	case a.state.focus == focusUpload && key.Matches(msg, keys.AddImage):
		a.addUpload()
		return true, nil

	case a.state.focus == focusUpload && key.Matches(msg, keys.DropImage):
		if n := len(a.state.uploads); n > 0 {
			a.state.uploads = a.state.uploads[:n-1]
		}
		return true, nil
	}
	return false, nil
}

// copyResults puts every finished section on the clipboard as markdown.
func (a *App) copyResults() {
	if a.state.running || len(a.state.sections) == 0 {
		return
	}
	var b strings.Builder
	for _, sec := range a.state.sections {
		if sec.content == "" {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", sec.heading, strings.TrimSpace(sec.content))
	}
	if err := writeClipboard(strings.TrimSpace(b.String())); err != nil {
		a.state.setBanner(bannerWarning, "Couldn't copy to the clipboard.")
		return
	}
	a.state.setBanner(bannerInfo, "Copied to clipboard.")
	a.layout()
}

func (a *App) quit() {
	a.quitting = true
	a.cancel()
}

func (a *App) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.state.focus {
	case focusCredential:
		a.state.credential, cmd = a.state.credential.Update(msg)
	case focusNarrative:
		a.state.narrative, cmd = a.state.narrative.Update(msg)
	case focusUpload:
		a.state.uploadPath, cmd = a.state.uploadPath.Update(msg)
	}
	return cmd
}

func (a *App) applyFocus() {
	a.state.credential.Blur()
	a.state.narrative.Blur()
	a.state.uploadPath.Blur()
	switch a.state.focus {
	case focusCredential:
		a.state.credential.Focus()
	case focusNarrative:
		a.state.narrative.Focus()
	case focusUpload:
		a.state.uploadPath.Focus()
	}
}

func (a *App) addUpload() {
	path := strings.Trim(strings.TrimSpace(a.state.uploadPath.Value()), `"'`)
	if path == "" {
		return
	}
	u, err := staging.ReadUpload(path)
	if err != nil {
		a.state.uploadErr = err.Error()
		return
	}
	a.state.uploadErr = ""
	a.state.uploads = append(a.state.uploads, u)
	a.state.uploadPath.Reset()
}

func (a *App) submit() tea.Cmd {
	if a.state.running {
		return nil
	}

	req := pipeline.Request{
		Credential: a.state.credential.Value(),
		Narrative:  a.state.narrative.Value(),
		Uploads:    append([]staging.Upload(nil), a.state.uploads...),
	}

	a.state.clearBanner()
	a.state.sections = nil
	a.state.running = true

	ctx := a.ctx
	pl := a.pipeline
	run := func() tea.Msg {
		return resultMsg{pl.Process(ctx, req)}
	}
	return tea.Batch(run, a.state.spinner.Tick)
}

func (a *App) handleProgress(pr pipeline.Progress) {
	a.state.requestID = pr.RequestID

	switch pr.Event {
	case pipeline.EventStage:
		if pr.Stage == pipeline.StageStage {
			a.view = viewResults
			a.layout()
		}

	case pipeline.EventAgentStarted:
		a.view = viewResults
		if a.state.section(pr.Agent) == nil {
			a.state.sections = append(a.state.sections, &section{kind: pr.Agent})
		}
		sec := a.state.section(pr.Agent)
		sec.heading = pr.Heading
		sec.status = pr.Status
		sec.running = true

	case pipeline.EventAgentFinished:
		sec := a.state.section(pr.Agent)
		if sec == nil {
			sec = &section{kind: pr.Agent, heading: pr.Heading}
			a.state.sections = append(a.state.sections, sec)
		}
		sec.running = false
		sec.content = pr.Response
		sec.renderedWidth = 0
	}
	a.refreshResults()
}

func (a *App) handleResult(res *pipeline.Result) {
	a.state.running = false
	if res == nil {
		return
	}
	a.state.requestID = res.RequestID

	if !res.Outcome.Proceeding() {
		level := bannerWarning
		text := errs.Reason(res.Err)
		if res.Outcome.Halt == pipeline.AgentsUnavailable {
			level = bannerError
			if detail := errs.Detail(res.Err); detail != "" {
				text = fmt.Sprintf("%s %s", text, detail)
			}
		}
		a.state.setBanner(level, text)
		a.view = viewCompose
		return
	}

	a.view = viewResults
	for _, r := range res.Responses {
		sec := a.state.section(r.Kind)
		if sec == nil {
			sec = &section{kind: r.Kind, heading: r.Heading}
			a.state.sections = append(a.state.sections, sec)
		}
		if sec.content != r.Content {
			sec.content = r.Content
			sec.renderedWidth = 0
		}
	}
	// The section whose agent failed is still marked running.
	for _, sec := range a.state.sections {
		sec.running = false
	}
	if res.Err != nil {
		a.state.setBanner(bannerError, errs.Reason(res.Err))
	}
	a.layout()
	a.refreshResults()
}

func (a *App) layout() {
	sidebar := sidebarWidth
	main := a.width - sidebar - 6
	if main < 40 {
		main = 40
	}
	col := main/2 - 4
	a.state.narrative.SetWidth(col)
	a.state.uploadPath.Width = col - 4

	a.state.viewport.Width = a.width - 4
	h := a.height - resultsChrome
	if a.state.banner != "" {
		h -= 2
	}
	if h < 5 {
		h = 5
	}
	a.state.viewport.Height = h
}

// refreshResults rebuilds the scrollable results content.
func (a *App) refreshResults() {
	width := a.state.viewport.Width - 2
	if width < 20 {
		width = 20
	}

	var b strings.Builder
	for _, sec := range a.state.sections {
		b.WriteString(styleHeading.Render(sec.heading))
		b.WriteString("\n")
		if sec.running {
			b.WriteString(a.state.spinner.View() + " " + styleSubtitle.Render(sec.status))
			b.WriteString("\n")
			continue
		}
		if sec.renderedWidth != width {
			out, err := present.RenderMarkdown(sec.content, width, a.markdownStyle)
			if err != nil {
				out = sec.content + "\n"
			}
			sec.rendered = out
			sec.renderedWidth = width
		}
		b.WriteString(sec.rendered)
	}
	a.state.viewport.SetContent(b.String())
}

func (a *App) View() string {
	if a.quitting {
		return ""
	}

	switch a.view {
	case viewResults:
		return a.renderResults()
	default:
		return a.renderCompose()
	}
}
