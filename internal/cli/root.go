// Package cli implements the sitebook-importer command line.
package cli

import (
	"encoding/json"
	"io"

	"github.com/sitebook/sitebook-api/internal/auth"
	"github.com/sitebook/sitebook-api/internal/domain"
	"github.com/sitebook/sitebook-api/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// SnapshotValidator checks a snapshot without writing anything
type SnapshotValidator interface {
	Validate(snap *domain.Snapshot) error
}

// App holds the services the commands operate on.
type App struct {
	Imports   *service.ImportService
	Exports   *service.ExportService
	Summary   *service.SummaryService
	Backups   *service.BackupService
	Validator SnapshotValidator
	Tokens    *auth.TokenManager
	Logger    *zap.Logger
	// Operator is recorded as the trigger of import runs started from the CLI
	Operator string
}

// NewRootCmd creates the top-level command with every subcommand registered
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "sitebook-importer",
		Short:         "Replace, export and back up Sitebook data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&app.Operator, "operator", app.Operator, "Name recorded as the trigger of import runs")

	root.AddCommand(
		newRunCmd(app),
		newExportCmd(app),
		newSummaryCmd(app),
		newRunsCmd(app),
		newBackupCmd(app),
		newTokenCmd(app),
	)

	return root
}

// operatorContext tags the command context with the CLI operator
func (a *App) operatorContext() *auth.UserContext {
	name := a.Operator
	if name == "" {
		name = "cli"
	}
	return &auth.UserContext{
		Subject:     name,
		DisplayName: name,
		Roles:       []domain.UserRoleType{domain.RoleAdmin},
		Method:      auth.MethodCLI,
	}
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
