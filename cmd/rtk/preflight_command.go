package main

import (
	"github.com/spf13/cobra"

	"rtk/internal/preflight"
)

func newPreflightCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "preflight",
		Short: "Check external programs, directories, and S3 access",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg)
			writePreflight(cmd.OutOrStdout(), results)
			if failed := preflight.Failed(results); len(failed) > 0 {
				return preflightError(failed)
			}
			return nil
		},
	}
}
