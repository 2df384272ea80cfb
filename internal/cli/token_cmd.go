package cli

import (
	"strings"

	"github.com/sitebook/sitebook-api/internal/domain"
	"github.com/spf13/cobra"
)

func newTokenCmd(app *App) *cobra.Command {
	var subject, name, email string
	var roles []string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed := make([]domain.UserRoleType, 0, len(roles))
			for _, r := range roles {
				parsed = append(parsed, domain.UserRoleType(strings.TrimSpace(r)))
			}

			token, expires, err := app.Tokens.Issue(subject, name, email, parsed)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]string{
				"token":     token,
				"expiresAt": domain.FormatTime(expires),
			})
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "Token subject (required)")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringSliceVar(&roles, "role", []string{string(domain.RoleEmployee)}, "Roles granted (admin, manager, employee, api_service)")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}
