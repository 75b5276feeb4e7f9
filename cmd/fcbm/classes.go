package main

import (
	"forest-cover-benchmark/internal/classes"
	"forest-cover-benchmark/internal/report"

	"github.com/spf13/cobra"
)

func (a *app) classesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classes",
		Short: "Print the transition and interpreted class tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return report.RenderScheme(a.out, classes.Default())
		},
	}
}
