package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sant0-9/heartgpt/internal/agents"
	"github.com/sant0-9/heartgpt/internal/config"
	"github.com/sant0-9/heartgpt/internal/errs"
	"github.com/sant0-9/heartgpt/internal/logging"
	"github.com/sant0-9/heartgpt/internal/pipeline"
	"github.com/sant0-9/heartgpt/internal/staging"
	"github.com/sant0-9/heartgpt/internal/tools"
	"github.com/sant0-9/heartgpt/internal/tui"
)

type flags struct {
	model    string
	provider string
	baseURL  string
	apiKey   string
}

type runtime struct {
	version string
	flags   flags

	cfg      *config.Config
	logger   *slog.Logger
	closeLog io.Closer
}

// Execute runs the CLI and exits non-zero on failure.
func Execute(version string) {
	root, rt := newRootCmd(version)
	if err := execute(root, rt); err != nil {
		handleError(err)
		os.Exit(1)
	}
}

// execute runs root and closes the log whether or not the command failed.
func execute(root *cobra.Command, rt *runtime) error {
	defer rt.teardown()
	return root.Execute()
}

// newRootCmd constructs the Cobra root command and the runtime its
// subcommands share.
func newRootCmd(version string) (*cobra.Command, *runtime) {
	rt := &runtime{version: version}

	rootCmd := &cobra.Command{
		Use:           "heartgpt",
		Short:         "Your AI-powered breakup recovery team.",
		Long:          "heartGPT sends your story and chat screenshots to four agents: a therapist, a closure coach, a routine planner and a brutally honest friend.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return rt.setup()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rt.runTUI()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&rt.flags.model, "model", "m", "", "model to use")
	pf.StringVar(&rt.flags.provider, "provider", "", "model provider (groq or custom)")
	pf.StringVar(&rt.flags.baseURL, "base-url", "", "OpenAI-compatible API base URL")
	pf.StringVar(&rt.flags.apiKey, "api-key", "", "API key (defaults to HEARTGPT_API_KEY or GROQ_API_KEY)")

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	rootCmd.AddCommand(newConsultCmd(rt))
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newAgentsCmd(rt))

	return rootCmd, rt
}

func (rt *runtime) setup() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errs.Wrap(err, "Couldn't read the .env file.")
	}

	cfg, err := config.Load()
	if err != nil {
		return errs.Wrap(err, "Couldn't load the configuration.")
	}
	if rt.flags.model != "" {
		cfg.Model = rt.flags.model
	}
	if rt.flags.provider != "" {
		cfg.Provider = rt.flags.provider
	}
	if rt.flags.baseURL != "" {
		cfg.BaseURL = rt.flags.baseURL
	}
	if err := cfg.Validate(); err != nil {
		return errs.Wrap(err, "Invalid configuration.")
	}
	rt.cfg = cfg

	logger, closer, err := logging.Open(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: logging disabled: %v\n", err)
		logger = logging.Discard()
	}
	rt.logger = logger
	rt.closeLog = closer
	return nil
}

func (rt *runtime) teardown() {
	if rt.closeLog != nil {
		_ = rt.closeLog.Close()
		rt.closeLog = nil
	}
}

// credential returns the API key for this process. It is never saved.
func (rt *runtime) credential() string {
	if rt.flags.apiKey != "" {
		return rt.flags.apiKey
	}
	return config.Credential()
}

func (rt *runtime) newPipeline() *pipeline.Pipeline {
	registry := tools.NewRegistry(rt.cfg.Search, nil)
	factory := agents.NewFactory(rt.cfg, registry, rt.logger)
	stager := staging.New(rt.cfg.StagingDir, rt.logger)
	return pipeline.NewPipeline(factory, stager, rt.logger)
}

func (rt *runtime) runTUI() error {
	app := tui.NewApp(rt.cfg, rt.newPipeline(), rt.credential())
	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	app.SetProgram(p)

	rt.logger.Info("starting", "version", rt.version, "model", rt.cfg.Model)
	if _, err := p.Run(); err != nil {
		return errs.Wrap(err, "The interface stopped unexpectedly.")
	}
	return nil
}
