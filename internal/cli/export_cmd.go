package cli

import (
	"fmt"
	"os"

	"github.com/sitebook/sitebook-api/internal/source"
	"github.com/spf13/cobra"
)

func newExportCmd(app *App) *cobra.Command {
	var out string
	var pretty bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all data as a snapshot document",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := app.Exports.Export(cmd.Context(), "cli")
			if err != nil {
				return err
			}

			if out == "" || out == "-" {
				return source.EncodeJSON(cmd.OutOrStdout(), snap, pretty)
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}
			if err := source.EncodeJSON(f, snap, pretty); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "exported %d records to %s\n", snap.TotalRecords(), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default: stdout)")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Indent the document")

	return cmd
}
