package cli

import (
	"errors"
	"fmt"

	"github.com/sitebook/sitebook-api/internal/auth"
	"github.com/sitebook/sitebook-api/internal/domain"
	"github.com/sitebook/sitebook-api/internal/source"
	"github.com/spf13/cobra"
)

// ErrImportFailed is returned after a rolled back import has been reported
var ErrImportFailed = errors.New("import failed")

type runOptions struct {
	file     string
	legacyDB string
	label    string
	dryRun   bool
}

func newRunCmd(app *App) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Replace all data with a snapshot",
		Long: "Deletes every managed table and loads the snapshot in a single transaction.\n" +
			"The snapshot is read from a JSON export (--file) or from a SQLite dump of the client stores (--legacy-db).",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if (opts.file == "") == (opts.legacyDB == "") {
				return fmt.Errorf("exactly one of --file or --legacy-db is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, label, err := loadSnapshot(cmd, app, opts)
			if err != nil {
				return err
			}

			if opts.dryRun {
				if err := app.Validator.Validate(snap); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "snapshot is valid: %d records\n", snap.TotalRecords())
				return nil
			}

			ctx := auth.WithUserContext(cmd.Context(), app.operatorContext())
			result, err := app.Imports.Import(ctx, snap, label)
			if result != nil {
				if perr := printJSON(cmd.OutOrStdout(), result); perr != nil {
					return perr
				}
			}
			if err != nil {
				if result != nil && !result.Success {
					return fmt.Errorf("%w: %s", ErrImportFailed, result.Error)
				}
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", "", "Snapshot JSON document")
	cmd.Flags().StringVar(&opts.legacyDB, "legacy-db", "", "SQLite dump of the client object stores")
	cmd.Flags().StringVar(&opts.label, "source", "", "Label recorded on the import run (default: cli:<path>)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Validate the snapshot without touching the database")

	return cmd
}

func loadSnapshot(cmd *cobra.Command, app *App, opts runOptions) (*domain.Snapshot, string, error) {
	var (
		snap *domain.Snapshot
		path string
		err  error
	)
	if opts.file != "" {
		path = opts.file
		snap, err = source.LoadFile(opts.file)
	} else {
		path = opts.legacyDB
		var store *source.LegacyStore
		store, err = source.OpenLegacyStore(opts.legacyDB, app.Logger)
		if err == nil {
			defer store.Close()
			snap, err = store.Load(cmd.Context())
		}
	}
	if err != nil {
		return nil, "", err
	}

	label := opts.label
	if label == "" {
		label = "cli:" + path
	}
	return snap, label, nil
}
