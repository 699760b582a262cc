package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sant0-9/heartgpt/internal/config"
	"github.com/sant0-9/heartgpt/internal/errs"
	"github.com/sant0-9/heartgpt/internal/pipeline"
)

type fakeGroq struct {
	mu    sync.Mutex
	auths []string
	srv   *httptest.Server
}

func newFakeGroq(t *testing.T) *fakeGroq {
	t.Helper()
	f := &fakeGroq{}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.auths = append(f.auths, r.Header.Get("Authorization"))
		n := len(f.auths)
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "c",
			"object": "chat.completion",
			"model":  "llama-3.1-8b-instant",
			"choices": []any{map[string]any{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": "answer " + string(rune('0'+n))},
				"finish_reason": "stop",
			}},
		})
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func isolate(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("HEARTGPT_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("HEARTGPT_SEARCH_ENABLED", "false")
	t.Setenv("HEARTGPT_STAGING_DIR", t.TempDir())
	t.Setenv("HEARTGPT_LOG_PATH", filepath.Join(home, "heartgpt.log"))
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := runCLIRuntime(t, args...)
	return out, err
}

func runCLIRuntime(t *testing.T, args ...string) (string, *runtime, error) {
	t.Helper()
	root, rt := newRootCmd("test")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := execute(root, rt)
	return out.String(), rt, err
}

func TestConsultPrintsEverySection(t *testing.T) {
	isolate(t)
	groq := newFakeGroq(t)

	out, err := runCLI(t, "consult", "-n", "We broke up after 3 years", "--api-key", "k1", "--base-url", groq.srv.URL)
	require.NoError(t, err)

	require.Equal(t, []string{"Bearer k1", "Bearer k1", "Bearer k1", "Bearer k1"}, groq.auths)
	for _, heading := range []string{"🤗 Emotional Support", "✍️ Finding Closure", "📅 7-Day Recovery Plan", "💪 Honest Perspective"} {
		require.Contains(t, out, "## "+heading)
	}
	require.Less(t, strings.Index(out, "answer 1"), strings.Index(out, "answer 4"))
}

func TestConsultWithoutCredentialHalts(t *testing.T) {
	isolate(t)
	groq := newFakeGroq(t)

	_, err := runCLI(t, "consult", "-n", "sad", "--base-url", groq.srv.URL)
	require.Error(t, err)
	require.Equal(t, pipeline.MsgMissingCredential, errs.Reason(err))
	require.Empty(t, groq.auths)
}

func TestFailedCommandClosesLog(t *testing.T) {
	isolate(t)

	_, rt, err := runCLIRuntime(t, "consult", "--api-key", "k1")
	require.Error(t, err)
	require.Equal(t, pipeline.MsgNoInput, errs.Reason(err))
	require.NotNil(t, rt.logger)
	require.Nil(t, rt.closeLog)
}

func TestConsultUsesEnvironmentCredential(t *testing.T) {
	isolate(t)
	t.Setenv("GROQ_API_KEY", "from-env")
	groq := newFakeGroq(t)

	_, err := runCLI(t, "consult", "-n", "sad", "--base-url", groq.srv.URL)
	require.NoError(t, err)
	require.Len(t, groq.auths, 4)
	require.Equal(t, "Bearer from-env", groq.auths[0])
}

func TestConsultWithoutInputHalts(t *testing.T) {
	isolate(t)
	groq := newFakeGroq(t)

	_, err := runCLI(t, "consult", "--api-key", "k1", "--base-url", groq.srv.URL)
	require.Error(t, err)
	require.Equal(t, pipeline.MsgNoInput, errs.Reason(err))
	require.Empty(t, groq.auths)
}

func TestConsultRejectsUnsupportedImage(t *testing.T) {
	isolate(t)

	_, err := runCLI(t, "consult", "-n", "x", "-i", "notes.txt", "--api-key", "k1")
	require.Error(t, err)
	require.Equal(t, "Couldn't attach a screenshot.", errs.Reason(err))
}

func TestConfigWritesDefaultFile(t *testing.T) {
	isolate(t)

	out, err := runCLI(t, "config")
	require.NoError(t, err)

	path := strings.TrimSpace(out)
	require.Equal(t, "config.yaml", filepath.Base(path))
	require.FileExists(t, path)
}

func stubPicker(t *testing.T, tty bool, model string) {
	t.Helper()
	origTTY, origPick := interactive, chooseModel
	interactive = func() bool { return tty }
	chooseModel = func(cfg *config.Config) error {
		cfg.Model = model
		return nil
	}
	t.Cleanup(func() { interactive, chooseModel = origTTY, origPick })
}

func TestConfigPickSavesOnlyTheModel(t *testing.T) {
	isolate(t)
	stubPicker(t, true, "meta-llama/llama-4-scout-17b-16e-instruct")
	t.Setenv("HEARTGPT_BASE_URL", "http://override.invalid/v1")
	t.Setenv("HEARTGPT_LOG_LEVEL", "debug")

	out, err := runCLI(t, "config", "--pick", "--provider", "custom")
	require.NoError(t, err)

	data, err := os.ReadFile(strings.TrimSpace(out))
	require.NoError(t, err)
	body := string(data)
	require.Contains(t, body, "model: meta-llama/llama-4-scout-17b-16e-instruct")
	require.Contains(t, body, "provider: groq")
	require.Contains(t, body, "log_level: info")
	require.NotContains(t, body, "override.invalid")
	require.NotContains(t, body, "staging_dir")
	require.NotContains(t, body, "log_path")
	require.NotContains(t, body, "agents_dir")
}

func TestConfigPickNeedsTerminal(t *testing.T) {
	isolate(t)
	stubPicker(t, false, "")

	_, err := runCLI(t, "config", "--pick")
	require.Error(t, err)
	require.Equal(t, "--pick needs an interactive terminal.", errs.Reason(err))
}

func TestInvalidConfigurationFails(t *testing.T) {
	isolate(t)
	t.Setenv("HEARTGPT_LOG_LEVEL", "loud")

	_, err := runCLI(t, "config")
	require.Error(t, err)
	require.Equal(t, "Invalid configuration.", errs.Reason(err))
}

func TestAgentsExport(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	t.Setenv("HEARTGPT_AGENTS_DIR", dir)

	out, err := runCLI(t, "agents", "--export")
	require.NoError(t, err)
	require.Contains(t, out, filepath.Join(dir, "therapist.md"))
	require.Contains(t, out, "Brutal Honesty Agent")
	require.Contains(t, out, "tools:")
	require.Contains(t, out, "web_search")
	require.FileExists(t, filepath.Join(dir, "brutal-honesty.md"))
}
