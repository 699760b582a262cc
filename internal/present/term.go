package present

import (
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

var isInputTTY = sync.OnceValue(func() bool {
	return isatty.IsTerminal(os.Stdin.Fd())
})

// IsInputTTY reports whether stdin is a TTY.
func IsInputTTY() bool {
	return isInputTTY()
}

var isOutputTTY = sync.OnceValue(func() bool {
	return isatty.IsTerminal(os.Stdout.Fd())
})

// IsOutputTTY reports whether stdout is a TTY.
func IsOutputTTY() bool {
	return isOutputTTY()
}

// Styles are the lipgloss styles used outside the full-screen UI.
type Styles struct {
	Heading      lipgloss.Style
	Warning      lipgloss.Style
	ErrorHeader  lipgloss.Style
	ErrorDetails lipgloss.Style
	ErrPadding   lipgloss.Style
	InlineCode   lipgloss.Style
	Comment      lipgloss.Style
}

func MakeStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Heading:      r.NewStyle().Foreground(lipgloss.Color("#EC4899")).Bold(true),
		Warning:      r.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true),
		ErrorHeader:  r.NewStyle().Foreground(lipgloss.Color("#F9FAFB")).Background(lipgloss.Color("#EF4444")).Bold(true).Padding(0, 1).SetString("ERROR"),
		ErrorDetails: r.NewStyle().Foreground(lipgloss.Color("#6B7280")),
		ErrPadding:   r.NewStyle().Padding(0, 2),
		InlineCode:   r.NewStyle().Foreground(lipgloss.Color("#EC4899")).Background(lipgloss.Color("#1F2937")).Padding(0, 1),
		Comment:      r.NewStyle().Foreground(lipgloss.Color("#6B7280")),
	}
}

var stdoutStyles = sync.OnceValue(func() Styles {
	return MakeStyles(lipgloss.DefaultRenderer())
})

// StdoutStyles returns shared styles bound to stdout.
func StdoutStyles() Styles {
	return stdoutStyles()
}

var stderrStyles = sync.OnceValue(func() Styles {
	return MakeStyles(lipgloss.NewRenderer(os.Stderr, termenv.WithColorCache(true)))
})

// StderrStyles returns shared styles bound to stderr.
func StderrStyles() Styles {
	return stderrStyles()
}
