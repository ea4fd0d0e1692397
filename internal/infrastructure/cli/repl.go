package cli

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/doeshing/kidchat/internal/app"
	"github.com/doeshing/kidchat/internal/application/session"
	"github.com/doeshing/kidchat/internal/infrastructure/cli/helpers"
)

// REPL is the interactive chat loop. Every line becomes one engine event.
type REPL struct {
	container *app.Container
	console   *helpers.Console
	renderer  *Renderer
	spinner   *Spinner
}

// NewREPL builds a REPL. A nil spinnerOut disables the spinner.
func NewREPL(container *app.Container, console *helpers.Console, spinnerOut io.Writer) *REPL {
	r := &REPL{
		container: container,
		console:   console,
		renderer:  NewRenderer(console.Out()),
	}
	if spinnerOut != nil {
		r.spinner = NewSpinner(spinnerOut, "thinking...")
	}
	return r
}

// Run reads lines until /quit, end of input or ctx is done.
func (r *REPL) Run(ctx context.Context) error {
	st, err := r.container.OpenSession(ctx)
	if err != nil {
		return err
	}
	engine := r.container.Engine

	status := engine.Apply(ctx, st, session.Status{})
	r.renderer.Outcome(status)
	r.renderer.Banner(r.container.Model.Name, helpers.DescribeUsage(st.Record, status.Usage))

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		line, err := r.console.ReadLine("> ")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch {
		case line == "/quit" || line == "/exit":
			return nil
		case line == "/help":
			r.renderer.Help()
		case line == "/status":
			out := engine.Apply(ctx, st, session.Status{})
			r.renderer.Outcome(out)
			r.renderer.Info(helpers.DescribeUsage(st.Record, out.Usage))
		case line == "/reveal":
			r.reveal(ctx, st)
		case strings.HasPrefix(line, "/"):
			r.renderer.Info("Unknown command " + line + ". Type /help.")
		default:
			r.send(ctx, st, line)
		}
	}
}

func (r *REPL) send(ctx context.Context, st *session.State, prompt string) {
	if r.spinner != nil {
		r.spinner.Start()
	}
	// Fragments are not echoed: the reply is shown only after filtering.
	out := r.container.Engine.Apply(ctx, st, session.SendPrompt{Prompt: prompt})
	if r.spinner != nil {
		r.spinner.Stop()
	}
	if out.MessageIndex >= 0 {
		r.renderer.Message(st.Transcript.Messages[out.MessageIndex])
	}
	r.renderer.Outcome(out)
}

func (r *REPL) reveal(ctx context.Context, st *session.State) {
	password, err := r.console.ReadPassword("Guardian password: ")
	if err != nil {
		r.renderer.Outcome(session.Outcome{Err: err})
		return
	}
	out := r.container.Engine.Apply(ctx, st, session.Reveal{Index: -1, Password: password})
	if out.Accepted && out.MessageIndex >= 0 {
		r.renderer.Message(st.Transcript.Messages[out.MessageIndex])
	}
	r.renderer.Outcome(out)
}
