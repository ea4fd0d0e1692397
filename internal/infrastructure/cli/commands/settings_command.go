package commands

import (
	"github.com/spf13/cobra"

	"github.com/doeshing/kidchat/internal/app"
	"github.com/doeshing/kidchat/internal/application/session"
	"github.com/doeshing/kidchat/internal/infrastructure/cli/helpers"
)

// NewSettingsCommand creates the settings command with lock/unlock subcommands
func NewSettingsCommand(container *app.Container, console *helpers.Console) *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Lock or unlock guardian settings",
	}

	settingsCmd.AddCommand(
		&cobra.Command{
			Use:   "unlock",
			Short: "Unlock keyword and time limit editing until the next lock",
			RunE: func(cmd *cobra.Command, args []string) error {
				st, err := openSession(cmd.Context(), container)
				if err != nil {
					return err
				}
				password, err := console.ReadPassword("Guardian password: ")
				if err != nil {
					return err
				}
				out := container.Engine.Apply(cmd.Context(), st, session.UnlockSettings{Password: password})
				return helpers.Report(cmd.OutOrStdout(), out)
			},
		},
		&cobra.Command{
			Use:   "lock",
			Short: "Lock keyword and time limit editing",
			RunE: func(cmd *cobra.Command, args []string) error {
				st, err := openSession(cmd.Context(), container)
				if err != nil {
					return err
				}
				out := container.Engine.Apply(cmd.Context(), st, session.LockSettings{})
				return helpers.Report(cmd.OutOrStdout(), out)
			},
		},
	)

	return settingsCmd
}
