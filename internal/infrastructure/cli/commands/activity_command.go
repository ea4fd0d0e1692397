package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/doeshing/kidchat/internal/app"
	"github.com/doeshing/kidchat/internal/domain"
	"github.com/doeshing/kidchat/internal/infrastructure/cli/helpers"
)

// NewActivityCommand creates the activity command with all subcommands
func NewActivityCommand(container *app.Container, console *helpers.Console) *cobra.Command {
	activityCmd := &cobra.Command{
		Use:   "activity",
		Short: "Inspect the guardian activity log",
	}

	activityCmd.AddCommand(
		newActivityListCommand(container, console),
		newActivityExportCommand(container, console),
		newActivityClearCommand(container, console),
	)

	return activityCmd
}

// newActivityListCommand creates the 'activity list' subcommand
func newActivityListCommand(container *app.Container, console *helpers.Console) *cobra.Command {
	var limit int
	var kind string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent activity entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireGuardian(cmd, container, console); err != nil {
				return err
			}
			return listActivity(cmd.OutOrStdout(), container, limit, domain.ActivityKind(kind))
		},
	}

	cmd.Flags().IntVar(&limit, "limit", DefaultActivityLimit, "Max entries to show")
	cmd.Flags().StringVar(&kind, "kind", "", "Only show one kind (e.g. filtered, revealed, limit_reached)")
	return cmd
}

// newActivityExportCommand creates the 'activity export' subcommand
func newActivityExportCommand(container *app.Container, console *helpers.Console) *cobra.Command {
	return &cobra.Command{
		Use:   "export <path>",
		Short: "Export the activity log to a JSONL file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireGuardian(cmd, container, console); err != nil {
				return err
			}
			if err := container.Activity.ExportJSON(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported activity to %s\n", args[0])
			return nil
		},
	}
}

// newActivityClearCommand creates the 'activity clear' subcommand
func newActivityClearCommand(container *app.Container, console *helpers.Console) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every activity entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireGuardian(cmd, container, console); err != nil {
				return err
			}
			if !force && !helpers.PromptForYesNo(console, "Delete every activity entry?", false) {
				fmt.Fprintln(cmd.OutOrStdout(), MsgActivityKept)
				return nil
			}
			if err := container.Activity.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), MsgActivityCleared)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func requireGuardian(cmd *cobra.Command, container *app.Container, console *helpers.Console) error {
	st, err := openSession(cmd.Context(), container)
	if err != nil {
		return err
	}
	ok, err := helpers.VerifyGuardian(st, container.Credentials.Verify, console)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New(ErrWrongPassword)
	}
	return nil
}

func listActivity(out io.Writer, container *app.Container, limit int, kind domain.ActivityKind) error {
	entries, err := container.Activity.Entries(limit, kind)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, MsgNoActivityRecorded)
		return nil
	}
	for _, entry := range entries {
		line := fmt.Sprintf("%s  %-18s %s", entry.Timestamp.Local().Format(domain.TimestampFormat), entry.Kind, entry.Detail)
		fmt.Fprintln(out, line)
	}
	return nil
}
