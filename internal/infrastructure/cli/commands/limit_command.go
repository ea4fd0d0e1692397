package commands

import (
	"errors"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/doeshing/kidchat/internal/app"
	"github.com/doeshing/kidchat/internal/application/session"
	"github.com/doeshing/kidchat/internal/infrastructure/cli/helpers"
)

// NewLimitCommand creates the limit command with set/enable/disable/reset subcommands
func NewLimitCommand(container *app.Container, console *helpers.Console) *cobra.Command {
	limitCmd := &cobra.Command{
		Use:   "limit",
		Short: "Manage the daily time limit",
	}

	limitCmd.AddCommand(
		&cobra.Command{
			Use:   "set <minutes>",
			Short: "Set the daily limit in minutes and turn it on",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				minutes, err := strconv.Atoi(args[0])
				if err != nil || minutes <= 0 {
					return errors.New(ErrMinutesRequired)
				}
				return applyLimit(cmd, container, console, func(int) session.Event {
					return session.SetTimeLimit{Active: true, Minutes: minutes}
				})
			},
		},
		&cobra.Command{
			Use:   "enable",
			Short: "Turn the daily limit on",
			RunE: func(cmd *cobra.Command, args []string) error {
				return applyLimit(cmd, container, console, func(current int) session.Event {
					return session.SetTimeLimit{Active: true, Minutes: current}
				})
			},
		},
		&cobra.Command{
			Use:   "disable",
			Short: "Turn the daily limit off",
			RunE: func(cmd *cobra.Command, args []string) error {
				return applyLimit(cmd, container, console, func(current int) session.Event {
					return session.SetTimeLimit{Active: false, Minutes: current}
				})
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Reset today's usage to zero",
			RunE: func(cmd *cobra.Command, args []string) error {
				return applyLimit(cmd, container, console, func(int) session.Event {
					return session.ResetTimer{}
				})
			},
		},
	)

	return limitCmd
}

func applyLimit(cmd *cobra.Command, container *app.Container, console *helpers.Console, build func(current int) session.Event) error {
	st, err := openSession(cmd.Context(), container)
	if err != nil {
		return err
	}
	ev := build(st.Record.TimeLimitMinutes)
	out := helpers.ApplyPrivileged(cmd.Context(), container.Engine, st, console, ev)
	return helpers.Report(cmd.OutOrStdout(), out)
}
