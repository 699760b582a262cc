package agents

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sant0-9/heartgpt/internal/llm"
	"github.com/sant0-9/heartgpt/internal/tools"
)

// MaxToolRounds bounds how many times an agent runs tools for the model
// before asking it for a final answer.
const MaxToolRounds = 5

// Input is what every agent receives for one interaction.
type Input struct {
	Narrative string
	Images    []llm.Image
}

// Settings are the request parameters shared by a team.
type Settings struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

type Agent struct {
	Kind    Kind
	Persona Persona

	model    llm.Provider
	tools    []tools.Tool
	settings Settings
	logger   *slog.Logger
}

// Tools returns the names of the tools the agent can use.
func (a *Agent) Tools() []string {
	names := make([]string, len(a.tools))
	for i, t := range a.tools {
		names[i] = t.Name()
	}
	return names
}

// Run sends the persona and input to the model and returns its final text.
func (a *Agent) Run(ctx context.Context, in Input) (string, error) {
	msgs := []llm.Message{
		{Role: llm.RoleSystem, Content: a.Persona.SystemPrompt()},
		{Role: llm.RoleUser, Content: in.Narrative, Images: in.Images},
	}
	specs := a.toolSpecs()

	for round := 0; ; round++ {
		req := &llm.CompletionRequest{
			Model:       a.settings.Model,
			Messages:    msgs,
			MaxTokens:   a.settings.MaxTokens,
			Temperature: a.settings.Temperature,
		}
		if round < MaxToolRounds {
			req.Tools = specs
		}

		resp, err := a.model.Complete(ctx, req)
		if err != nil {
			return "", fmt.Errorf("%s: %w", a.Kind, err)
		}
		if len(resp.ToolCalls) == 0 || len(req.Tools) == 0 {
			return resp.Content, nil
		}

		msgs = append(msgs, llm.Message{
			Role:      llm.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})
		for _, call := range resp.ToolCalls {
			msgs = append(msgs, llm.Message{
				Role:       llm.RoleTool,
				Content:    a.runTool(ctx, call),
				ToolCallID: call.ID,
			})
		}
	}
}

func (a *Agent) runTool(ctx context.Context, call llm.ToolCall) string {
	for _, t := range a.tools {
		if t.Name() != call.Name {
			continue
		}
		out, err := t.Run(ctx, call.Arguments)
		if err != nil {
			a.logger.Warn("tool failed", "agent", a.Kind.String(), "tool", call.Name, "err", err)
			return "Tool error: " + err.Error()
		}
		a.logger.Debug("tool ran", "agent", a.Kind.String(), "tool", call.Name)
		return out
	}
	return fmt.Sprintf("Tool error: %q is not available.", call.Name)
}

func (a *Agent) toolSpecs() []llm.ToolSpec {
	if len(a.tools) == 0 {
		return nil
	}
	specs := make([]llm.ToolSpec, len(a.tools))
	for i, t := range a.tools {
		specs[i] = llm.ToolSpec{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		}
	}
	return specs
}
