package cli

import (
	"fmt"

	"github.com/sitebook/sitebook-api/internal/auth"
	"github.com/spf13/cobra"
)

func newBackupCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a backup to object storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			backup, err := app.Backups.Backup(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), backup)
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List stored backups, newest first",
			RunE: func(cmd *cobra.Command, args []string) error {
				backups, err := app.Backups.List(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), backups)
			},
		},
		&cobra.Command{
			Use:   "restore PATH",
			Short: "Replace all data with a stored backup",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := auth.WithUserContext(cmd.Context(), app.operatorContext())
				result, err := app.Backups.Restore(ctx, args[0])
				if result != nil {
					if perr := printJSON(cmd.OutOrStdout(), result); perr != nil {
						return perr
					}
				}
				if err != nil && result != nil && !result.Success {
					return fmt.Errorf("%w: %s", ErrImportFailed, result.Error)
				}
				return err
			},
		},
	)

	return cmd
}
