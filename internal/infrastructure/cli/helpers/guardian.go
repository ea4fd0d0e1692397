package helpers

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/doeshing/kidchat/internal/application/session"
	"github.com/doeshing/kidchat/internal/domain"
)

// Applier is the part of session.Engine the helpers need.
type Applier interface {
	Apply(ctx context.Context, st *session.State, ev session.Event) session.Outcome
}

// ApplyPrivileged applies ev, which needs unlocked settings. A locked record is
// unlocked with the guardian password first and locked again afterwards.
func ApplyPrivileged(ctx context.Context, engine Applier, st *session.State, console *Console, ev session.Event) session.Outcome {
	if !st.Record.KeywordsLocked {
		return engine.Apply(ctx, st, ev)
	}
	password, err := console.ReadPassword("Guardian password: ")
	if err != nil {
		return session.Outcome{Err: err, Message: err.Error()}
	}
	unlocked := engine.Apply(ctx, st, session.UnlockSettings{Password: password})
	if !unlocked.Accepted {
		return unlocked
	}
	out := engine.Apply(ctx, st, ev)
	relocked := engine.Apply(ctx, st, session.LockSettings{})
	out.Warnings = append(out.Warnings, unlocked.Warnings...)
	out.Warnings = append(out.Warnings, relocked.Warnings...)
	if !relocked.Accepted && relocked.Err != nil {
		out.Warnings = append(out.Warnings, "settings not re-locked: "+relocked.Err.Error())
	}
	return out
}

// VerifyGuardian asks for the password when one is set. It reports false after a wrong password.
func VerifyGuardian(st *session.State, verify func(*domain.DeviceRecord, string) bool, console *Console) (bool, error) {
	if !st.Record.HasCredential() {
		return true, nil
	}
	password, err := console.ReadPassword("Guardian password: ")
	if err != nil {
		return false, err
	}
	return verify(&st.Record, password), nil
}

// Report prints an outcome and turns a rejection into an error.
func Report(out io.Writer, outcome session.Outcome) error {
	PrintWarnings(out, outcome.Warnings)
	if !outcome.Accepted {
		if outcome.Err != nil {
			return outcome.Err
		}
		return fmt.Errorf("%s rejected", outcome.Event)
	}
	if outcome.Message != "" {
		fmt.Fprintln(out, SuccessStyle.Render(outcome.Message))
	}
	return nil
}

// DescribeStatus renders the guardian-facing summary of a device record.
func DescribeStatus(deviceID string, rec domain.DeviceRecord, usage domain.Usage, terms []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", TitleStyle.Render("kidchat status"))
	fmt.Fprintf(&b, "Device:           %s\n", deviceID)
	fmt.Fprintf(&b, "Guardian password: %s\n", yesNo(rec.HasCredential(), "set", "not set"))
	fmt.Fprintf(&b, "Settings:         %s\n", yesNo(rec.KeywordsLocked, "locked", "unlocked"))
	fmt.Fprintf(&b, "Banned keywords:  %d\n", len(terms))
	fmt.Fprintf(&b, "Time limit:       %s\n", DescribeUsage(rec, usage))
	return b.String()
}

// DescribeUsage is the one-line budget summary.
func DescribeUsage(rec domain.DeviceRecord, usage domain.Usage) string {
	switch usage.State() {
	case domain.BudgetInactive:
		return fmt.Sprintf("off (%d minutes when enabled)", rec.TimeLimitMinutes)
	case domain.BudgetActiveExceeded:
		return fmt.Sprintf("reached (%s of %d minutes used)", usage.Used().Round(time.Second), rec.TimeLimitMinutes)
	default:
		return fmt.Sprintf("%s left of %d minutes", usage.Remaining().Round(time.Second), rec.TimeLimitMinutes)
	}
}

func yesNo(v bool, yes, no string) string {
	if v {
		return yes
	}
	return no
}
