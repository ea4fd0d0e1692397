package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doeshing/kidchat/internal/app"
	"github.com/doeshing/kidchat/internal/application/session"
	"github.com/doeshing/kidchat/internal/infrastructure/cli/helpers"
)

// NewStatusCommand creates the status command
func NewStatusCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show guardian settings and today's time budget",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openSession(cmd.Context(), container)
			if err != nil {
				return err
			}
			out := container.Engine.Apply(cmd.Context(), st, session.Status{})
			helpers.PrintWarnings(cmd.OutOrStdout(), out.Warnings)
			terms := container.Filter.Normalize(st.Record.BannedTerms)
			fmt.Fprint(cmd.OutOrStdout(), helpers.DescribeStatus(container.DeviceID, st.Record, out.Usage, terms))
			fmt.Fprintf(cmd.OutOrStdout(), "Model:            %s\n", container.Model.Name)
			return nil
		},
	}
}
