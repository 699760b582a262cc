package agents

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sant0-9/heartgpt/internal/prompts"
)

// Entry describes where a kind's persona comes from.
type Entry struct {
	Kind     Kind
	Persona  Persona
	Path     string // override file, empty for the built-in persona
	Override bool
	Err      error // set when the override file is malformed
}

// Index reports the persona in effect for every kind, in run order.
func Index(dir string) []Entry {
	entries := make([]Entry, 0, len(Kinds()))
	for _, kind := range Kinds() {
		e := Entry{Kind: kind}
		if dir != "" {
			path := filepath.Join(dir, kind.String()+".md")
			if _, err := os.Stat(path); err == nil {
				e.Path = path
				e.Override = true
			}
		}
		e.Persona, e.Err = LoadPersona(dir, kind)
		entries = append(entries, e)
	}
	return entries
}

// ExportDefaults writes the built-in personas into dir so they can be edited.
// Existing files are left alone. It returns the paths it wrote.
func ExportDefaults(dir string) ([]string, error) {
	if dir == "" {
		return nil, errors.New("no agents directory configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	var written []string
	for _, kind := range Kinds() {
		path := filepath.Join(dir, kind.String()+".md")
		if _, err := os.Stat(path); err == nil {
			continue
		}
		data, err := prompts.Persona(kind.String())
		if err != nil {
			return written, err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}
