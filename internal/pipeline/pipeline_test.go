package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sant0-9/heartgpt/internal/agents"
	"github.com/sant0-9/heartgpt/internal/config"
	"github.com/sant0-9/heartgpt/internal/errs"
	"github.com/sant0-9/heartgpt/internal/llm"
	"github.com/sant0-9/heartgpt/internal/logging"
	"github.com/sant0-9/heartgpt/internal/staging"
	"github.com/sant0-9/heartgpt/internal/tools"
)

// recordingProvider answers every call and remembers what it was sent.
type recordingProvider struct {
	calls  []*llm.CompletionRequest
	failOn int
}

func (r *recordingProvider) Name() string { return "recording" }

func (r *recordingProvider) Complete(_ context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	r.calls = append(r.calls, req)
	if r.failOn > 0 && len(r.calls) == r.failOn {
		return nil, errors.New("503 service unavailable")
	}
	return &llm.CompletionResponse{Content: "response " + string(rune('0'+len(r.calls)))}, nil
}

type countingTeams struct {
	calls int
	inner TeamBuilder
}

func (c *countingTeams) NewTeam(credential string) (*agents.Team, error) {
	c.calls++
	return c.inner.NewTeam(credential)
}

type brokenTeams struct{}

func (brokenTeams) NewTeam(string) (*agents.Team, error) {
	return nil, errors.New("malformed persona")
}

type fakeStager struct {
	fail map[string]bool
}

func (f fakeStager) Stage(uploads []staging.Upload) []llm.Image {
	var out []llm.Image
	for _, u := range uploads {
		if f.fail[u.Name] {
			continue
		}
		out = append(out, llm.Image{Path: "/staged/temp_" + u.Name, Name: u.Name, MIME: "image/png"})
	}
	return out
}

func newTestPipeline(t *testing.T, p *recordingProvider) (*Pipeline, *countingTeams) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.AgentsDir = t.TempDir()
	factory := agents.NewFactory(cfg, tools.NewRegistry(config.SearchConfig{Enabled: false}, nil), logging.Discard()).
		WithProvider(func(*config.Config, string) (llm.Provider, error) { return p, nil })
	teams := &countingTeams{inner: factory}
	return NewPipeline(teams, fakeStager{}, logging.Discard()), teams
}

func TestProcessMissingCredential(t *testing.T) {
	p := &recordingProvider{}
	pl, teams := newTestPipeline(t, p)

	for _, cred := range []string{"", "   "} {
		res := pl.Process(context.Background(), Request{Credential: cred, Narrative: "sad"})

		require.Equal(t, Halt(MissingCredential), res.Outcome)
		require.Equal(t, MsgMissingCredential, errs.Reason(res.Err))
		require.Empty(t, res.Responses)
	}
	require.Zero(t, teams.calls)
	require.Empty(t, p.calls)
}

func TestProcessAgentsUnavailable(t *testing.T) {
	pl := NewPipeline(brokenTeams{}, fakeStager{}, logging.Discard())

	res := pl.Process(context.Background(), Request{Credential: "k1", Narrative: "sad"})

	require.Equal(t, Halt(AgentsUnavailable), res.Outcome)
	require.Equal(t, MsgAgentsUnavailable, errs.Reason(res.Err))
	require.Equal(t, "malformed persona", errs.Detail(res.Err))
}

func TestProcessNoInput(t *testing.T) {
	p := &recordingProvider{}
	pl, _ := newTestPipeline(t, p)

	res := pl.Process(context.Background(), Request{Credential: "k1", Narrative: "  \n\t"})

	require.Equal(t, Halt(NoInput), res.Outcome)
	require.Equal(t, MsgNoInput, errs.Reason(res.Err))
	require.Empty(t, p.calls)
}

func TestProcessRunsAllAgentsInOrder(t *testing.T) {
	p := &recordingProvider{}
	pl, teams := newTestPipeline(t, p)

	var events []Progress
	pl.SetProgressCallback(func(pr Progress) { events = append(events, pr) })

	res := pl.Process(context.Background(), Request{Credential: "k1", Narrative: "We broke up after 3 years"})

	require.True(t, res.Outcome.Proceeding())
	require.NoError(t, res.Err)
	require.NotEmpty(t, res.RequestID)
	require.Equal(t, 1, teams.calls)
	require.Empty(t, res.Staged)

	require.Len(t, p.calls, 4)
	for _, call := range p.calls {
		require.Equal(t, "We broke up after 3 years", call.Messages[1].Content)
		require.Empty(t, call.Messages[1].Images)
	}
	require.Contains(t, p.calls[0].Messages[0].Content, "empathetic therapist")
	require.Contains(t, p.calls[1].Messages[0].Content, "closure messages")
	require.Contains(t, p.calls[2].Messages[0].Content, "7-day recovery plan")
	require.Contains(t, p.calls[3].Messages[0].Content, "relationship analysis")

	require.Len(t, res.Responses, 4)
	wantHeadings := []string{"🤗 Emotional Support", "✍️ Finding Closure", "📅 7-Day Recovery Plan", "💪 Honest Perspective"}
	for i, r := range res.Responses {
		require.Equal(t, agents.Kinds()[i], r.Kind)
		require.Equal(t, wantHeadings[i], r.Heading)
		require.NotEmpty(t, r.Content)
	}

	var started, finished []agents.Kind
	for _, ev := range events {
		require.Equal(t, res.RequestID, ev.RequestID)
		switch ev.Event {
		case EventAgentStarted:
			started = append(started, ev.Agent)
			require.NotEmpty(t, ev.Status)
		case EventAgentFinished:
			finished = append(finished, ev.Agent)
			require.NotEmpty(t, ev.Response)
		}
	}
	require.Equal(t, agents.Kinds(), started)
	require.Equal(t, agents.Kinds(), finished)
	require.Equal(t, StageDone, events[len(events)-1].Stage)
}

func TestProcessStopsOnFirstFailure(t *testing.T) {
	p := &recordingProvider{failOn: 2}
	pl, _ := newTestPipeline(t, p)

	var finished []agents.Kind
	var last Progress
	pl.SetProgressCallback(func(pr Progress) {
		if pr.Event == EventAgentFinished {
			finished = append(finished, pr.Agent)
		}
		last = pr
	})

	res := pl.Process(context.Background(), Request{Credential: "k1", Narrative: "sad"})

	require.True(t, res.Outcome.Proceeding())
	require.Equal(t, MsgModelFailed, errs.Reason(res.Err))
	require.Contains(t, errs.Detail(res.Err), "503")
	require.Len(t, p.calls, 2)
	require.Len(t, res.Responses, 1)
	require.Equal(t, agents.Therapist, res.Responses[0].Kind)
	require.Equal(t, []agents.Kind{agents.Therapist}, finished)
	require.Equal(t, StageError, last.Stage)
}

func TestProcessStagesOnlyWrittenImages(t *testing.T) {
	p := &recordingProvider{}
	pl, _ := newTestPipeline(t, p)
	pl.stager = fakeStager{fail: map[string]bool{"b.png": true}}

	uploads := []staging.Upload{{Name: "a.png"}, {Name: "b.png"}, {Name: "c.png"}}
	res := pl.Process(context.Background(), Request{Credential: "k1", Uploads: uploads})

	require.NoError(t, res.Err)
	require.Len(t, res.Staged, 2)
	require.Len(t, p.calls, 4)
	for _, call := range p.calls {
		require.Equal(t, res.Staged, call.Messages[1].Images)
	}
}

func TestProcessWithRealStager(t *testing.T) {
	p := &recordingProvider{}
	pl, _ := newTestPipeline(t, p)
	dir := t.TempDir()
	pl.stager = staging.New(dir, logging.Discard())

	res := pl.Process(context.Background(), Request{
		Credential: "k1",
		Uploads:    []staging.Upload{{Name: "chat.png", Data: []byte("png")}},
	})

	require.NoError(t, res.Err)
	require.Len(t, res.Staged, 1)
	require.True(t, strings.HasSuffix(res.Staged[0].Path, "temp_chat.png"))
	_, err := os.Stat(res.Staged[0].Path)
	require.NoError(t, err)
}

func TestProcessTrimsCredential(t *testing.T) {
	var got string
	cfg := config.DefaultConfig()
	cfg.AgentsDir = t.TempDir()
	factory := agents.NewFactory(cfg, tools.NewRegistry(config.SearchConfig{}, nil), logging.Discard()).
		WithProvider(func(_ *config.Config, credential string) (llm.Provider, error) {
			got = credential
			return &recordingProvider{}, nil
		})
	pl := NewPipeline(factory, fakeStager{}, logging.Discard())

	res := pl.Process(context.Background(), Request{Credential: "  gsk_pasted \n", Narrative: "sad"})

	require.NoError(t, res.Err)
	require.Equal(t, "gsk_pasted", got)
}

func TestProcessScreenshotsOnlyWithVisionModel(t *testing.T) {
	var bodies []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		bodies = append(bodies, body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","model":"m",
"choices":[{"index":0,"message":{"role":"assistant","content":"I see the chat."},"finish_reason":"stop"}]}`))
	}))
	t.Cleanup(srv.Close)

	cfg := config.DefaultConfig()
	cfg.AgentsDir = t.TempDir()
	factory := agents.NewFactory(cfg, tools.NewRegistry(config.SearchConfig{}, nil), logging.Discard()).
		WithProvider(func(_ *config.Config, credential string) (llm.Provider, error) {
			return llm.NewGroqProvider(llm.Options{APIKey: credential, Model: "vision-model", BaseURL: srv.URL, Vision: true}), nil
		})
	pl := NewPipeline(factory, staging.New(t.TempDir(), logging.Discard()), logging.Discard())

	res := pl.Process(context.Background(), Request{
		Credential: "k1",
		Uploads:    []staging.Upload{{Name: "chat.png", Data: []byte("png")}},
	})

	require.NoError(t, res.Err)
	require.Len(t, res.Responses, 4)
	require.Len(t, bodies, 4)
	for _, body := range bodies {
		user := body["messages"].([]any)[1].(map[string]any)
		parts := user["content"].([]any)
		require.Len(t, parts, 1)
		require.Equal(t, "image_url", parts[0].(map[string]any)["type"])
	}
}
