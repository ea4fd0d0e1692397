package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/kidchat/internal/app"
	"github.com/doeshing/kidchat/internal/application/doctor"
	"github.com/doeshing/kidchat/internal/domain"
	"github.com/doeshing/kidchat/internal/infrastructure/cli/helpers"
)

// NewDoctorCommand creates the doctor command
func NewDoctorCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose config, storage and model setup",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctorDiagnostics(cmd, cmd.OutOrStdout(), container)
		},
	}
}

// runDoctorDiagnostics runs environment diagnostics
func runDoctorDiagnostics(cmd *cobra.Command, out io.Writer, container *app.Container) error {
	if container == nil || container.Engine == nil {
		return errors.New(ErrContainerUnavailable)
	}
	svc := &doctor.Service{
		ConfigProvider: container.ConfigLoader,
		Store:          container.Store,
		Activity:       container.Activity,
		Filter:         container.Filter,
		Generator:      container.Engine.Generator,
		DeviceID:       container.DeviceID,
		Model:          container.Model,
	}
	report, err := svc.Run(cmd.Context())

	// Display report even if there were errors
	displayDoctorReport(out, report)

	if err != nil {
		return fmt.Errorf("diagnostics completed with errors: %w", err)
	}
	if report.Failed() {
		return errors.New(ErrDoctorFailed)
	}
	return nil
}

// displayDoctorReport displays the health check report
func displayDoctorReport(out io.Writer, report domain.HealthReport) {
	for _, check := range report.Checks {
		label := fmt.Sprintf("[%s]", strings.ToUpper(string(check.Status)))
		switch check.Status {
		case domain.HealthOK:
			label = helpers.SuccessStyle.Render(label)
		case domain.HealthWarn:
			label = helpers.WarnStyle.Render(label)
		default:
			label = helpers.ErrorStyle.Render(label)
		}
		fmt.Fprintf(out, "%s %s - %s\n", label, check.Name, check.Details)
	}
}
