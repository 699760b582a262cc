package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/invopop/jsonschema"

	"github.com/sant0-9/heartgpt/internal/config"
)

// Tool is a capability an agent can hand to the model.
type Tool interface {
	Name() string
	Description() string
	// Parameters is the JSON schema of the arguments object.
	Parameters() map[string]any
	// Run executes the tool with the raw JSON arguments chosen by the model.
	Run(ctx context.Context, arguments string) (string, error)
}

// Registry resolves the tool names a persona lists.
type Registry struct {
	tools map[string]Tool
}

// NewRegistry builds the registry from config. Disabled tools are left out.
func NewRegistry(cfg config.SearchConfig, client *http.Client) *Registry {
	r := &Registry{tools: map[string]Tool{}}
	if cfg.Enabled {
		r.Add(NewWebSearch(cfg.Endpoint, cfg.MaxResults, client))
	}
	return r
}

func (r *Registry) Add(t Tool) {
	r.tools[t.Name()] = t
}

// Resolve maps names to tools in order. Known tools that are disabled are
// skipped. Names that are not known at all are an error.
func (r *Registry) Resolve(names []string) ([]Tool, error) {
	var out []Tool
	for _, name := range names {
		if t, ok := r.tools[name]; ok {
			out = append(out, t)
			continue
		}
		if !known(name) {
			return nil, fmt.Errorf("unknown tool %q", name)
		}
	}
	return out, nil
}

func known(name string) bool {
	return name == WebSearchName
}

func generateSchema[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	schema := reflector.Reflect(v)

	b, err := json.Marshal(schema)
	if err != nil {
		panic(err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		panic(err)
	}
	delete(m, "$schema")
	delete(m, "$id")
	return m
}
