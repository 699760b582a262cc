package agents

import (
	"fmt"
	"log/slog"

	"github.com/sant0-9/heartgpt/internal/config"
	"github.com/sant0-9/heartgpt/internal/llm"
	"github.com/sant0-9/heartgpt/internal/tools"
)

// Team is the shared model handle and the four agents in run order.
type Team struct {
	Model  llm.Provider
	Agents []*Agent
}

// Agent returns the team member of the given kind.
func (t *Team) Agent(k Kind) *Agent {
	for _, a := range t.Agents {
		if a.Kind == k {
			return a
		}
	}
	return nil
}

// ProviderFunc builds the model handle for a credential.
type ProviderFunc func(cfg *config.Config, apiKey string) (llm.Provider, error)

type Factory struct {
	cfg         *config.Config
	registry    *tools.Registry
	logger      *slog.Logger
	newProvider ProviderFunc
}

func NewFactory(cfg *config.Config, registry *tools.Registry, logger *slog.Logger) *Factory {
	return &Factory{
		cfg:         cfg,
		registry:    registry,
		logger:      logger,
		newProvider: llm.NewProvider,
	}
}

// WithProvider replaces how the model handle is built.
func (f *Factory) WithProvider(fn ProviderFunc) *Factory {
	f.newProvider = fn
	return f
}

// NewTeam builds a fresh team bound to credential. On any failure it
// returns nil and the error.
func (f *Factory) NewTeam(credential string) (*Team, error) {
	model, err := f.newProvider(f.cfg, credential)
	if err != nil {
		return nil, fmt.Errorf("create model: %w", err)
	}
	if model == nil {
		return nil, fmt.Errorf("create model: provider %q returned nothing", f.cfg.Provider)
	}

	settings := Settings{
		Model:       f.cfg.Model,
		MaxTokens:   f.cfg.MaxTokens,
		Temperature: f.cfg.Temperature,
	}

	team := &Team{Model: model}
	for _, kind := range Kinds() {
		persona, err := LoadPersona(f.cfg.AgentsDir, kind)
		if err != nil {
			return nil, fmt.Errorf("load %s persona: %w", kind, err)
		}
		resolved, err := f.registry.Resolve(persona.Tools)
		if err != nil {
			return nil, fmt.Errorf("%s persona: %w", kind, err)
		}
		team.Agents = append(team.Agents, &Agent{
			Kind:     kind,
			Persona:  persona,
			model:    model,
			tools:    resolved,
			settings: settings,
			logger:   f.logger,
		})
	}
	return team, nil
}
