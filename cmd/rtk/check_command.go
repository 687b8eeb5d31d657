package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"rtk/internal/pipeline"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report how many inputs each task has already processed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			runner, err := pipeline.New(cfg, pipeline.WithLogger(logger))
			if err != nil {
				return err
			}
			statuses, err := runner.Status(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(statuses))
			for _, s := range statuses {
				rows = append(rows, []string{
					s.Task,
					s.Kind,
					strconv.Itoa(s.Inputs),
					strconv.Itoa(s.Done),
					strconv.Itoa(s.Pending()),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Task", "Kind", "Inputs", "Done", "Pending"}, rows, 2, 3, 4))
			return nil
		},
	}
}
