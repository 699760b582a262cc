package agents

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sant0-9/heartgpt/internal/prompts"
)

// Persona is the prompt and presentation of one agent.
type Persona struct {
	Name     string   `yaml:"name"`
	Heading  string   `yaml:"heading"`
	Status   string   `yaml:"status"`
	Markdown bool     `yaml:"markdown"`
	Tools    []string `yaml:"tools"`

	Instructions []string `yaml:"-"`
}

// SystemPrompt renders the persona into the system turn.
func (p Persona) SystemPrompt() string {
	return prompts.BuildSystemPrompt(p.Name, p.Instructions, p.Markdown)
}

// ParsePersona reads YAML frontmatter followed by one instruction per line.
func ParsePersona(data []byte) (Persona, error) {
	front, body, err := splitFrontmatter(data)
	if err != nil {
		return Persona{}, err
	}

	var p Persona
	dec := yaml.NewDecoder(bytes.NewReader(front))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return Persona{}, fmt.Errorf("persona frontmatter: %w", err)
	}

	scanner := bufio.NewScanner(bytes.NewReader(body))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		line = strings.TrimSpace(strings.TrimLeft(line, "-*"))
		if line != "" {
			p.Instructions = append(p.Instructions, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return Persona{}, err
	}

	if p.Name == "" {
		return Persona{}, errors.New("persona has no name")
	}
	if len(p.Instructions) == 0 {
		return Persona{}, fmt.Errorf("persona %q has no instructions", p.Name)
	}
	return p, nil
}

func splitFrontmatter(data []byte) ([]byte, []byte, error) {
	content := strings.ReplaceAll(string(data), "\r\n", "\n")
	if !strings.HasPrefix(content, "---\n") {
		return nil, nil, errors.New("persona must start with a --- frontmatter block")
	}
	rest := content[len("---\n"):]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return nil, nil, errors.New("persona frontmatter is not closed")
	}
	front := rest[:end]
	body := strings.TrimPrefix(rest[end+len("\n---"):], "\n")
	return []byte(front), []byte(body), nil
}

// LoadPersona returns the persona for kind. A file named <kind>.md in dir
// replaces the built-in one; its heading and status fall back to the
// built-in values when left empty.
func LoadPersona(dir string, kind Kind) (Persona, error) {
	data, err := prompts.Persona(kind.String())
	if err != nil {
		return Persona{}, err
	}
	builtin, err := ParsePersona(data)
	if err != nil {
		return Persona{}, fmt.Errorf("built-in %s persona: %w", kind, err)
	}
	if dir == "" {
		return builtin, nil
	}

	path := filepath.Join(dir, kind.String()+".md")
	data, err = os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return builtin, nil
	case err != nil:
		return Persona{}, err
	}

	override, err := ParsePersona(data)
	if err != nil {
		return Persona{}, fmt.Errorf("%s: %w", path, err)
	}
	if override.Heading == "" {
		override.Heading = builtin.Heading
	}
	if override.Status == "" {
		override.Status = builtin.Status
	}
	return override, nil
}
