package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sydlexius/songmatch/internal/evaluation"
)

type runView struct {
	ID         string    `json:"id"`
	CasesFile  string    `json:"cases_file"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Cases      int       `json:"cases"`
	Correct    int       `json:"correct"`
	Errors     int       `json:"errors"`
	Accuracy   float64   `json:"accuracy"`
}

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded evaluation runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := ctx.database(cmd.Context())
			if err != nil {
				return err
			}
			runs, err := evaluation.NewStore(db).ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if ctx.jsonFlag {
				views := make([]runView, 0, len(runs))
				for _, r := range runs {
					views = append(views, runView(r))
				}
				return writeJSON(cmd, views)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No recorded runs; use `songmatch evaluate --record`")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, r := range runs {
				rows = append(rows, []string{
					r.ID,
					r.StartedAt.Local().Format("2006-01-02 15:04:05"),
					r.CasesFile,
					fmt.Sprintf("%d", r.Cases),
					fmt.Sprintf("%d", r.Correct),
					fmt.Sprintf("%d", r.Errors),
					fmt.Sprintf("%.2f%%", r.Accuracy),
				})
			}
			printTable(out,
				[]string{"Run", "Started", "Cases File", "Cases", "Correct", "Errors", "Accuracy"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight})
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list (0 for all)")

	cmd.AddCommand(newRunsFailedCommand(ctx))
	return cmd
}

func newRunsFailedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "failed <run-id>",
		Short: "List the cases a recorded run got wrong",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := ctx.database(cmd.Context())
			if err != nil {
				return err
			}
			failed, err := evaluation.NewStore(db).FailedCases(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if ctx.jsonFlag {
				if failed == nil {
					failed = []string{}
				}
				return writeJSON(cmd, failed)
			}
			out := cmd.OutOrStdout()
			if len(failed) == 0 {
				fmt.Fprintf(out, "Run %s has no failed cases\n", args[0])
				return nil
			}
			for _, f := range failed {
				fmt.Fprintln(out, f)
			}
			return nil
		},
	}
}
