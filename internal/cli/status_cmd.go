package cli

import (
	"github.com/sitebook/sitebook-api/internal/domain"
	"github.com/spf13/cobra"
)

func newSummaryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show row counts and totals of the stored data",
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := app.Summary.Summary(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), summary)
		},
	}
}

func newRunsCmd(app *App) *cobra.Command {
	var page, pageSize int
	var status string

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List import runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := app.Imports.ListRuns(cmd.Context(), page, pageSize, domain.ImportRunStatus(status))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), runs)
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "Runs per page")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (running, committed, rolled_back)")

	return cmd
}
