package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sant0-9/heartgpt/internal/agents"
	"github.com/sant0-9/heartgpt/internal/errs"
	"github.com/sant0-9/heartgpt/internal/present"
)

func newAgentsCmd(rt *runtime) *cobra.Command {
	var export bool

	cmd := &cobra.Command{
		Use:   "agents",
		Short: "List the recovery team and where each persona comes from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if export {
				written, err := agents.ExportDefaults(rt.cfg.AgentsDir)
				if err != nil {
					return errs.Wrap(err, "Couldn't export the personas.")
				}
				for _, path := range written {
					fmt.Fprintln(out, "wrote", path)
				}
			}

			styles := present.StdoutStyles()
			for _, e := range agents.Index(rt.cfg.AgentsDir) {
				source := "built-in"
				if e.Override {
					source = e.Path
				}
				fmt.Fprintf(out, "%s  %s\n", styles.Heading.Render(e.Kind.String()), styles.Comment.Render(source))
				if e.Err != nil {
					fmt.Fprintf(out, "  %s %v\n", styles.Warning.Render("invalid:"), e.Err)
					continue
				}
				fmt.Fprintf(out, "  %s · %s\n", e.Persona.Name, e.Persona.Heading)
				if len(e.Persona.Tools) > 0 {
					names := make([]string, len(e.Persona.Tools))
					for i, t := range e.Persona.Tools {
						names[i] = styles.InlineCode.Render(t)
					}
					fmt.Fprintf(out, "  tools: %s\n", strings.Join(names, " "))
				}
				for _, line := range e.Persona.Instructions {
					fmt.Fprintf(out, "    - %s\n", line)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&export, "export", false, "write the built-in personas into the agents directory for editing")
	return cmd
}
