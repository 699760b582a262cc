package prompts

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed personas/*.md
var personas embed.FS

// MarkdownInstruction is appended to personas that answer in markdown.
const MarkdownInstruction = "Format the response as markdown without enclosing backticks."

// Persona returns the embedded persona file for the given slug.
func Persona(slug string) ([]byte, error) {
	data, err := personas.ReadFile("personas/" + slug + ".md")
	if err != nil {
		return nil, fmt.Errorf("no built-in persona %q", slug)
	}
	return data, nil
}

// BuildSystemPrompt joins instructions into the system turn for an agent.
func BuildSystemPrompt(name string, instructions []string, markdown bool) string {
	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "You are the %s, part of a breakup recovery team.\n\n", name)
	}
	b.WriteString("Instructions:\n")
	for _, line := range instructions {
		fmt.Fprintf(&b, "- %s\n", line)
	}
	if markdown {
		fmt.Fprintf(&b, "- %s\n", MarkdownInstruction)
	}
	return strings.TrimRight(b.String(), "\n")
}
