package commands

import (
	"github.com/spf13/cobra"

	"github.com/doeshing/kidchat/internal/app"
	"github.com/doeshing/kidchat/internal/application/session"
	"github.com/doeshing/kidchat/internal/infrastructure/cli/helpers"
)

// NewGuardianCommand creates the guardian command with set/change subcommands
func NewGuardianCommand(container *app.Container, console *helpers.Console) *cobra.Command {
	guardianCmd := &cobra.Command{
		Use:   "guardian",
		Short: "Manage the guardian password",
	}

	guardianCmd.AddCommand(
		newGuardianSetCommand(container, console),
		newGuardianChangeCommand(container, console),
	)

	return guardianCmd
}

// newGuardianSetCommand sets the first guardian password
func newGuardianSetCommand(container *app.Container, console *helpers.Console) *cobra.Command {
	return &cobra.Command{
		Use:   "set",
		Short: "Set the guardian password (first time only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openSession(cmd.Context(), container)
			if err != nil {
				return err
			}
			password, err := console.ReadNewPassword("New guardian password: ")
			if err != nil {
				return err
			}
			out := container.Engine.Apply(cmd.Context(), st, session.SetPassword{Password: password})
			return helpers.Report(cmd.OutOrStdout(), out)
		},
	}
}

// newGuardianChangeCommand replaces the guardian password
func newGuardianChangeCommand(container *app.Container, console *helpers.Console) *cobra.Command {
	return &cobra.Command{
		Use:   "change",
		Short: "Change the guardian password",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openSession(cmd.Context(), container)
			if err != nil {
				return err
			}
			current, err := console.ReadPassword("Current guardian password: ")
			if err != nil {
				return err
			}
			next, err := console.ReadNewPassword("New guardian password: ")
			if err != nil {
				return err
			}
			out := container.Engine.Apply(cmd.Context(), st, session.ChangePassword{Current: current, New: next})
			return helpers.Report(cmd.OutOrStdout(), out)
		},
	}
}
