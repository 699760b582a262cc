package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/sant0-9/heartgpt/internal/agents"
	"github.com/sant0-9/heartgpt/internal/config"
	"github.com/sant0-9/heartgpt/internal/staging"
)

type focus int

const (
	focusCredential focus = iota
	focusNarrative
	focusUpload
	focusCount
)

type bannerLevel int

const (
	bannerNone bannerLevel = iota
	bannerInfo
	bannerWarning
	bannerError
)

// section is one agent's slot on the results page.
type section struct {
	kind    agents.Kind
	heading string
	status  string
	running bool
	content string

	rendered      string
	renderedWidth int
}

type state struct {
	config *config.Config

	// Sidebar
	credential textinput.Model

	// Form
	narrative  textarea.Model
	uploadPath textinput.Model
	uploads    []staging.Upload
	uploadErr  string
	focus      focus

	// Results
	running     bool
	requestID   string
	sections    []*section
	banner      string
	bannerLevel bannerLevel
	spinner     spinner.Model
	viewport    viewport.Model
}

func newState(cfg *config.Config, credential string) *state {
	cred := textinput.New()
	cred.Placeholder = "gsk_..."
	cred.EchoMode = textinput.EchoPassword
	cred.EchoCharacter = '•'
	cred.CharLimit = 200
	cred.Width = 36
	cred.SetValue(credential)

	narrative := textarea.New()
	narrative.Placeholder = "Tell us your story..."
	narrative.ShowLineNumbers = false
	narrative.CharLimit = 0
	narrative.SetWidth(40)
	narrative.SetHeight(8)

	upload := textinput.New()
	upload.Placeholder = "path/to/screenshot.png"
	upload.CharLimit = 1024
	upload.Width = 30

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styleLogo

	s := &state{
		config:     cfg,
		credential: cred,
		narrative:  narrative,
		uploadPath: upload,
		spinner:    sp,
		viewport:   viewport.New(80, 20),
	}
	if credential == "" {
		s.focus = focusCredential
	} else {
		s.focus = focusNarrative
	}
	return s
}

// resetForm clears everything but the credential.
func (s *state) resetForm() {
	s.narrative.Reset()
	s.uploadPath.Reset()
	s.uploads = nil
	s.uploadErr = ""
	s.sections = nil
	s.requestID = ""
	s.clearBanner()
	s.viewport.SetContent("")
	s.viewport.GotoTop()
}

func (s *state) setBanner(level bannerLevel, text string) {
	s.bannerLevel = level
	s.banner = text
}

func (s *state) clearBanner() {
	s.bannerLevel = bannerNone
	s.banner = ""
}

func (s *state) section(kind agents.Kind) *section {
	for _, sec := range s.sections {
		if sec.kind == kind {
			return sec
		}
	}
	return nil
}
