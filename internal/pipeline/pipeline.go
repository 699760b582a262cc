package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/sant0-9/heartgpt/internal/agents"
	"github.com/sant0-9/heartgpt/internal/errs"
	"github.com/sant0-9/heartgpt/internal/llm"
	"github.com/sant0-9/heartgpt/internal/staging"
)

const (
	MsgMissingCredential = "Please enter your API key in the sidebar first!"
	MsgAgentsUnavailable = "Failed to initialize agents."
	MsgNoInput           = "Please share your feelings or upload screenshots."
	MsgModelFailed       = "Model failed. Please check your API key or try again."
)

// Stage represents a pipeline stage
type Stage int

const (
	StageIdle Stage = iota
	StageValidate
	StageStage
	StageInvoke
	StageDone
	StageError
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "Idle"
	case StageValidate:
		return "Validating"
	case StageStage:
		return "Staging"
	case StageInvoke:
		return "Invoking"
	case StageDone:
		return "Done"
	case StageError:
		return "Error"
	default:
		return "Unknown"
	}
}

// HaltReason says why validation stopped a request.
type HaltReason int

const (
	MissingCredential HaltReason = iota + 1
	AgentsUnavailable
	NoInput
)

func (h HaltReason) String() string {
	switch h {
	case MissingCredential:
		return "missing credential"
	case AgentsUnavailable:
		return "agents unavailable"
	case NoInput:
		return "no input"
	default:
		return "none"
	}
}

// Outcome is the result of validation: proceed, or halt for a reason.
type Outcome struct {
	Halt HaltReason
}

func Proceed() Outcome { return Outcome{} }

func Halt(reason HaltReason) Outcome { return Outcome{Halt: reason} }

func (o Outcome) Proceeding() bool { return o.Halt == 0 }

// Event distinguishes the kinds of progress updates.
type Event int

const (
	EventStage Event = iota
	EventAgentStarted
	EventAgentFinished
)

// Progress represents pipeline progress
type Progress struct {
	RequestID string
	Stage     Stage
	Event     Event

	Agent       agents.Kind
	AgentIndex  int
	TotalAgents int
	Heading     string
	Status      string
	Response    string

	Message string
}

// Request is the input of one interaction.
type Request struct {
	Credential string
	Narrative  string
	Uploads    []staging.Upload
}

// Response is one agent's answer.
type Response struct {
	Kind    agents.Kind
	Heading string
	Content string
}

// Result contains pipeline output
type Result struct {
	RequestID string
	Outcome   Outcome
	Staged    []llm.Image
	Responses []Response

	// Err holds the halt warning or the invocation failure as an errs.Error.
	Err error
}

// TeamBuilder creates the agents for a credential. A nil team means the
// agents are unavailable.
type TeamBuilder interface {
	NewTeam(credential string) (*agents.Team, error)
}

// ImageStager writes uploads somewhere the model client can read them.
type ImageStager interface {
	Stage(uploads []staging.Upload) []llm.Image
}

// Pipeline runs one request through validation, staging, and the agents.
type Pipeline struct {
	teams      TeamBuilder
	stager     ImageStager
	logger     *slog.Logger
	onProgress func(Progress)
}

// NewPipeline creates a new pipeline
func NewPipeline(teams TeamBuilder, stager ImageStager, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		teams:  teams,
		stager: stager,
		logger: logger,
	}
}

// SetProgressCallback sets the progress callback
func (p *Pipeline) SetProgressCallback(fn func(Progress)) {
	p.onProgress = fn
}

func (p *Pipeline) progress(pr Progress) {
	if p.onProgress != nil {
		p.onProgress(pr)
	}
}

// Process runs the pipeline. It always returns a result; halts and
// failures are reported through Result.Err.
func (p *Pipeline) Process(ctx context.Context, req Request) *Result {
	res := &Result{RequestID: uuid.NewString()}
	log := p.logger.With("request_id", res.RequestID)

	stage := func(s Stage, msg string) {
		p.progress(Progress{RequestID: res.RequestID, Stage: s, Event: EventStage, Message: msg})
	}

	// Stage 1: Validate
	stage(StageValidate, "Checking your request...")

	team, outcome, err := p.validate(req)
	res.Outcome = outcome
	if !outcome.Proceeding() {
		res.Err = err
		log.Warn("request halted", "stage", StageValidate.String(), "reason", outcome.Halt.String(), "err", errs.Detail(err))
		stage(StageDone, errs.Reason(err))
		return res
	}

	// Stage 2: Stage images
	stage(StageStage, fmt.Sprintf("Preparing %d screenshot(s)...", len(req.Uploads)))
	if len(req.Uploads) > 0 {
		res.Staged = p.stager.Stage(req.Uploads)
	} else {
		res.Staged = []llm.Image{}
	}
	log.Info("request started", "stage", StageStage.String(), "uploads", len(req.Uploads), "staged", len(res.Staged))

	// Stage 3: Invoke agents in order
	in := agents.Input{Narrative: req.Narrative, Images: res.Staged}
	total := len(team.Agents)
	for i, a := range team.Agents {
		p.progress(Progress{
			RequestID:   res.RequestID,
			Stage:       StageInvoke,
			Event:       EventAgentStarted,
			Agent:       a.Kind,
			AgentIndex:  i + 1,
			TotalAgents: total,
			Heading:     a.Persona.Heading,
			Status:      a.Persona.Status,
			Message:     a.Persona.Status,
		})

		content, err := a.Run(ctx, in)
		if err != nil {
			log.Error("agent failed", "stage", StageInvoke.String(), "agent", a.Kind.String(), "err", err)
			res.Err = errs.Wrap(err, MsgModelFailed)
			stage(StageError, MsgModelFailed)
			return res
		}
		log.Info("agent finished", "agent", a.Kind.String(), "chars", len(content))

		res.Responses = append(res.Responses, Response{Kind: a.Kind, Heading: a.Persona.Heading, Content: content})
		p.progress(Progress{
			RequestID:   res.RequestID,
			Stage:       StageInvoke,
			Event:       EventAgentFinished,
			Agent:       a.Kind,
			AgentIndex:  i + 1,
			TotalAgents: total,
			Heading:     a.Persona.Heading,
			Response:    content,
		})
	}

	stage(StageDone, "Your recovery plan is ready")
	return res
}

func (p *Pipeline) validate(req Request) (*agents.Team, Outcome, error) {
	credential := strings.TrimSpace(req.Credential)
	if credential == "" {
		return nil, Halt(MissingCredential), errs.New(MsgMissingCredential)
	}

	team, err := p.teams.NewTeam(credential)
	if team == nil {
		if err == nil {
			err = fmt.Errorf("no agents were created")
		}
		return nil, Halt(AgentsUnavailable), errs.Wrap(err, MsgAgentsUnavailable)
	}

	if strings.TrimSpace(req.Narrative) == "" && len(req.Uploads) == 0 {
		return nil, Halt(NoInput), errs.New(MsgNoInput)
	}
	return team, Proceed(), nil
}
