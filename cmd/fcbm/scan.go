package main

import (
	"fmt"

	"forest-cover-benchmark/internal/raster"

	"github.com/spf13/cobra"
)

func (a *app) scanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan <dir>",
		Short: "List candidate raster files in a project folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := raster.Scan(args[0])
			if err != nil {
				return err
			}
			if len(files) == 0 {
				a.log.Warning("Scan", "no raster files found", map[string]interface{}{
					"dir": args[0],
				})
				return nil
			}
			for _, f := range files {
				if _, err := fmt.Fprintln(a.out, f); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
