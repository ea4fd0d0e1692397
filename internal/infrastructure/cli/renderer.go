package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/doeshing/kidchat/internal/application/session"
	"github.com/doeshing/kidchat/internal/domain"
	"github.com/doeshing/kidchat/internal/infrastructure/cli/helpers"
)

const revealHint = "A guardian can type /reveal to show this reply."

// Renderer prints transcript messages and outcomes.
type Renderer struct {
	out io.Writer
}

// NewRenderer builds a renderer on out.
func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out}
}

// Banner prints the REPL greeting.
func (r *Renderer) Banner(model, usage string) {
	fmt.Fprintln(r.out, helpers.TitleStyle.Render("kidchat")+helpers.MutedStyle.Render("  model: "+model))
	fmt.Fprintln(r.out, helpers.MutedStyle.Render("Time limit: "+usage))
	fmt.Fprintln(r.out, helpers.MutedStyle.Render("Type /help for commands."))
}

// Message prints one transcript message as a viewer should see it.
func (r *Renderer) Message(msg domain.ChatMessage) {
	switch msg.Role {
	case domain.RoleUser:
		fmt.Fprintf(r.out, "%s %s\n", helpers.UserStyle.Render("You:"), msg.Content)
	default:
		label := helpers.AssistantStyle.Render("Assistant:")
		if msg.IsFiltered && !msg.IsRevealed {
			fmt.Fprintf(r.out, "%s %s\n", label, helpers.FilteredStyle.Render(msg.Displayed()))
			fmt.Fprintln(r.out, helpers.MutedStyle.Render(revealHint))
			return
		}
		fmt.Fprintf(r.out, "%s %s\n", label, msg.Displayed())
	}
}

// Outcome prints warnings and, for rejections, the error.
func (r *Renderer) Outcome(out session.Outcome) {
	helpers.PrintWarnings(r.out, out.Warnings)
	if !out.Accepted && out.Err != nil {
		fmt.Fprintln(r.out, helpers.ErrorStyle.Render(out.Err.Error()))
	}
}

// Info prints a plain notice.
func (r *Renderer) Info(text string) {
	fmt.Fprintln(r.out, helpers.SuccessStyle.Render(text))
}

// Help lists the slash commands.
func (r *Renderer) Help() {
	lines := []string{
		"/reveal   show the latest filtered reply (guardian password required)",
		"/status   show today's remaining time",
		"/help     show this help",
		"/quit     leave the chat",
	}
	fmt.Fprintln(r.out, helpers.MutedStyle.Render(strings.Join(lines, "\n")))
}
