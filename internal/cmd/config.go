package cmd

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/sant0-9/heartgpt/internal/config"
	"github.com/sant0-9/heartgpt/internal/errs"
	"github.com/sant0-9/heartgpt/internal/present"
)

var (
	interactive = present.IsInputTTY
	chooseModel = pickModel
)

func newConfigCmd() *cobra.Command {
	var pick bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Write the default config file if missing and print its path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := config.ConfigPath()
			if err != nil {
				return errs.Wrap(err, "Couldn't find the config directory.")
			}

			if pick {
				if !interactive() {
					return errs.New("--pick needs an interactive terminal.")
				}
				// Start from the file alone so env and flag overrides stay out of it.
				cfg, err := config.LoadFile(path)
				if err != nil {
					return errs.Wrap(err, "Couldn't load the configuration.")
				}
				if err := chooseModel(cfg); err != nil {
					if errors.Is(err, huh.ErrUserAborted) {
						return errs.Wrap(err, "Aborted.")
					}
					return errs.Wrap(err, "Couldn't pick a model.")
				}
				if err := cfg.SaveTo(path); err != nil {
					return errs.Wrap(err, "Couldn't write the config file.")
				}
			} else if !config.Exists() {
				if err := config.DefaultConfig().SaveTo(path); err != nil {
					return errs.Wrap(err, "Couldn't write the config file.")
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&pick, "pick", false, "choose the model interactively and save it")
	return cmd
}

func pickModel(cfg *config.Config) error {
	opts := make([]huh.Option[string], 0, len(config.Models))
	for _, m := range config.Models {
		label := m.Name
		if m.Vision {
			label += " (reads screenshots)"
		}
		opts = append(opts, huh.NewOption(label, m.ID))
	}

	if err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Choose the model for your recovery team:").
				Options(opts...).
				Value(&cfg.Model),
		),
	).WithTheme(huh.ThemeCatppuccin()).Run(); err != nil {
		return fmt.Errorf("prompt form: %w", err)
	}
	return nil
}
