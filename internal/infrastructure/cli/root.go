package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/doeshing/kidchat/internal/app"
	"github.com/doeshing/kidchat/internal/infrastructure/cli/commands"
	"github.com/doeshing/kidchat/internal/infrastructure/cli/helpers"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
	In      io.Reader
	Out     io.Writer
	// Spinner output; nil disables it.
	SpinnerOut io.Writer
	// Container options applied on top of the flags (tests inject a clock here).
	App app.Options
}

// NewRootCmd wires the cobra root command. The container is built after flag
// parsing so --config, --model and --verbose take effect.
func NewRootCmd(opts Options) *cobra.Command {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	console := helpers.NewConsole(opts.In, opts.Out)
	container := &app.Container{}

	var (
		verbose    bool
		configPath string
		model      string
	)

	root := &cobra.Command{
		Use:   "kidchat",
		Short: "kidchat - a chat assistant with guardian controls",
		Long:  "kidchat is a terminal chat assistant with a guardian password, banned keyword filtering and a daily time limit.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations["skipContainer"] == "true" {
				return nil
			}
			appOpts := opts.App
			appOpts.Verbose = opts.Verbose || verbose
			if configPath != "" {
				appOpts.ConfigPath = configPath
			}
			if model != "" {
				appOpts.Model = model
			}
			built, err := app.BuildContainer(cmd.Context(), appOpts)
			if err != nil {
				return err
			}
			*container = *built
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if container.Engine == nil {
				return nil
			}
			return container.Close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return NewREPL(container, console, opts.SpinnerOut).Run(cmd.Context())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(opts.Out)
	root.CompletionOptions.DisableDefaultCmd = true

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.kidchat/config.yaml, or $KIDCHAT_CONFIG)")
	root.PersistentFlags().StringVarP(&model, "model", "m", "", "Override model name (default from config)")

	chatCmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat",
		RunE: func(cmd *cobra.Command, args []string) error {
			return NewREPL(container, console, opts.SpinnerOut).Run(cmd.Context())
		},
	}

	versionCmd := commands.NewVersionCommand()
	versionCmd.Annotations = map[string]string{"skipContainer": "true"}

	root.AddCommand(
		chatCmd,
		commands.NewStatusCommand(container),
		commands.NewGuardianCommand(container, console),
		commands.NewSettingsCommand(container, console),
		commands.NewKeywordsCommand(container, console),
		commands.NewLimitCommand(container, console),
		commands.NewActivityCommand(container, console),
		commands.NewDoctorCommand(container),
		versionCmd,
	)
	return root
}
