package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sant0-9/heartgpt/internal/errs"
	"github.com/sant0-9/heartgpt/internal/pipeline"
	"github.com/sant0-9/heartgpt/internal/present"
	"github.com/sant0-9/heartgpt/internal/staging"
)

func newConsultCmd(rt *runtime) *cobra.Command {
	var (
		narrative string
		images    []string
	)

	cmd := &cobra.Command{
		Use:   "consult",
		Short: "Ask the recovery team without the full-screen interface",
		Example: `  heartgpt consult -n "We broke up after 3 years"
  heartgpt consult -n "What went wrong?" -i chat1.png -i chat2.jpg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			uploads := make([]staging.Upload, 0, len(images))
			for _, path := range images {
				u, err := staging.ReadUpload(path)
				if err != nil {
					return errs.Wrap(err, "Couldn't attach a screenshot.")
				}
				uploads = append(uploads, u)
			}

			out := cmd.OutOrStdout()
			pl := rt.newPipeline()
			pl.SetProgressCallback(consultPrinter(out, cmd.ErrOrStderr(), rt.cfg.WordWrap, present.IsOutputTTY()))

			res := pl.Process(ctx, pipeline.Request{
				Credential: rt.credential(),
				Narrative:  narrative,
				Uploads:    uploads,
			})
			return res.Err
		},
	}

	cmd.Flags().StringVarP(&narrative, "narrative", "n", "", "your story")
	cmd.Flags().StringArrayVarP(&images, "image", "i", nil, "chat screenshot to attach (jpg, jpeg, png); repeatable")
	return cmd
}

// consultPrinter writes each response as soon as its agent finishes.
func consultPrinter(out, status io.Writer, wordWrap int, tty bool) func(pipeline.Progress) {
	styles := present.StdoutStyles()
	return func(pr pipeline.Progress) {
		switch pr.Event {
		case pipeline.EventAgentStarted:
			if tty {
				fmt.Fprintln(status, styles.Comment.Render(pr.Status))
			}
		case pipeline.EventAgentFinished:
			if !tty {
				fmt.Fprintf(out, "## %s\n\n%s\n\n", pr.Heading, pr.Response)
				return
			}
			fmt.Fprintln(out, styles.Heading.Render(pr.Heading))
			rendered, err := present.RenderMarkdown(pr.Response, wordWrap, "")
			if err != nil {
				rendered = pr.Response + "\n"
			}
			fmt.Fprintln(out, rendered)
		}
	}
}
