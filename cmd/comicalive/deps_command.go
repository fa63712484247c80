package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zachdrouin/ComicAlive/internal/deps"
	"github.com/zachdrouin/ComicAlive/internal/preflight"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check the external binaries the pipeline needs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			statuses := preflight.CheckSystemDeps(cmd.Context(), cfg)
			rows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				detail := status.Description
				if !status.Available && status.Detail != "" {
					detail = status.Detail
				}
				rows = append(rows, []string{
					status.Name,
					yesNo(status.Available),
					yesNo(!status.Optional),
					detail,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Dependency", "Found", "Required", "Detail"}, rows))

			if missing := deps.MissingRequired(statuses); len(missing) > 0 {
				return fmt.Errorf("%d required dependency missing", len(missing))
			}
			return nil
		},
	}
}
