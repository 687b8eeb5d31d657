package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"rtk/internal/pipeline"
	"rtk/internal/preflight"
	"rtk/internal/task"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var skipPreflight bool
	var noProgress bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process every batch of the input list through the task chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			if !skipPreflight {
				if failed := preflight.Failed(preflight.RunAll(cmd.Context(), cfg)); len(failed) > 0 {
					return preflightError(failed)
				}
			}

			opts := []pipeline.Option{pipeline.WithLogger(logger)}
			if !noProgress {
				opts = append(opts, pipeline.WithProgress(progressFactory(cmd.ErrOrStderr(), logger)))
			}
			runner, err := pipeline.New(cfg, opts...)
			if err != nil {
				return err
			}

			report, runErr := runner.Run(cmd.Context())
			if len(report.Batches) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), renderRunReport(report))
			}
			return runErr
		},
	}

	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Do not check binaries and directories before running")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable progress output")
	return cmd
}

func renderRunReport(report pipeline.Report) string {
	var rows [][]string
	for _, batch := range report.Batches {
		for _, s := range batch.Tasks {
			rows = append(rows, []string{
				strconv.Itoa(batch.Index),
				s.Task,
				s.Kind,
				strconv.Itoa(s.AlreadyDone),
				strconv.Itoa(s.Succeeded),
				strconv.Itoa(s.Failed),
				strconv.Itoa(s.Empty + s.Unverified),
				summaryState(s),
			})
		}
	}
	return renderTable(
		[]string{"Batch", "Task", "Kind", "Done", "Processed", "Failed", "No Output", "State"},
		rows,
		0, 3, 4, 5, 6,
	)
}

func summaryState(s task.Summary) string {
	switch {
	case s.Aborted:
		return "aborted"
	case s.Interrupted > 0:
		return "interrupted"
	case s.NothingToDo:
		return "up to date"
	case s.Failed > 0:
		return "partial"
	default:
		return "complete"
	}
}

func preflightError(failed []preflight.Result) error {
	parts := make([]string, 0, len(failed))
	for _, r := range failed {
		parts = append(parts, fmt.Sprintf("%s: %s", r.Name, r.Detail))
	}
	return errors.New("preflight failed: " + strings.Join(parts, "; "))
}

func writePreflight(w io.Writer, results []preflight.Result) {
	colorize := isTerminal(w)
	for _, r := range results {
		fmt.Fprintln(w, renderCheckLine(r.Name, r.Passed, r.Detail, colorize))
	}
}
