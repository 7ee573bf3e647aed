package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"refracalc/internal/services"
)

func NewModelsCommand(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:     "models",
		Short:   "List the correlation models",
		GroupID: gEstimate,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			def := env.cfg.Engine.Model()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "INDEX\tNAME\tDESCRIPTION")
			for _, m := range services.ModelInfos() {
				name := m.Name
				if m.Name == def.String() {
					name = color.New(color.Bold).Sprint(name + " (default)")
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\n", m.Index, name, m.Description)
			}
			return tw.Flush()
		},
	}
}
