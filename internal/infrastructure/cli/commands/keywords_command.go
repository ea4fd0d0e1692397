package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/kidchat/internal/app"
	"github.com/doeshing/kidchat/internal/application/session"
	"github.com/doeshing/kidchat/internal/infrastructure/cli/helpers"
)

// NewKeywordsCommand creates the keywords command with show/set subcommands
func NewKeywordsCommand(container *app.Container, console *helpers.Console) *cobra.Command {
	keywordsCmd := &cobra.Command{
		Use:   "keywords",
		Short: "Manage banned keywords",
	}

	keywordsCmd.AddCommand(
		newKeywordsShowCommand(container, console),
		newKeywordsSetCommand(container, console),
	)

	return keywordsCmd
}

// newKeywordsShowCommand lists the normalized banned terms; guardian only
func newKeywordsShowCommand(container *app.Container, console *helpers.Console) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show banned keywords (asks for the guardian password when set)",
		RunE: func(cmd *cobra.Command, args []string) error {
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
			terms := container.Filter.Normalize(st.Record.BannedTerms)
			out := cmd.OutOrStdout()
			if len(terms) == 0 {
				fmt.Fprintln(out, MsgNoBannedKeywords)
				return nil
			}
			for _, term := range terms {
				fmt.Fprintf(out, "- %s\n", term)
			}
			return nil
		},
	}
}

// newKeywordsSetCommand replaces the banned keyword list
func newKeywordsSetCommand(container *app.Container, console *helpers.Console) *cobra.Command {
	var clearAll bool

	cmd := &cobra.Command{
		Use:   "set <keyword, keyword, ...>",
		Short: "Replace the banned keyword list",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := strings.TrimSpace(strings.Join(args, " "))
			if raw == "" && !clearAll {
				return errors.New(ErrKeywordsRequired)
			}
			st, err := openSession(cmd.Context(), container)
			if err != nil {
				return err
			}
			out := helpers.ApplyPrivileged(cmd.Context(), container.Engine, st, console, session.SetBannedTerms{Raw: raw})
			return helpers.Report(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().BoolVar(&clearAll, "clear", false, "Remove every banned keyword")
	return cmd
}
