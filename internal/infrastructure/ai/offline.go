package ai

import (
	"context"
	"iter"
	"strings"

	"github.com/doeshing/kidchat/internal/domain"
	"github.com/doeshing/kidchat/internal/ports"
)

// offlineProvider answers locally when no model endpoint or API key is configured.
type offlineProvider struct {
	reason string
}

func newOfflineProvider(reason string) ports.Generator {
	return &offlineProvider{reason: reason}
}

func (p *offlineProvider) Name() string {
	return "offline"
}

// Generate streams a canned reply word by word.
func (p *offlineProvider) Generate(ctx context.Context, history []domain.PromptMessage) iter.Seq2[string, error] {
	reply := guessReply(lastUserMessage(history), p.reason)
	return func(yield func(string, error) bool) {
		for _, word := range strings.SplitAfter(reply, " ") {
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}
			if !yield(word, nil) {
				return
			}
		}
	}
}

func lastUserMessage(history []domain.PromptMessage) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == string(domain.RoleUser) {
			return history[i].Content
		}
	}
	return ""
}

func guessReply(prompt, reason string) string {
	prompt = strings.ToLower(prompt)
	var reply string
	switch {
	case isGreeting(prompt):
		reply = "Hello! I'm running offline right now, but I'm happy to chat."
	case strings.Contains(prompt, "?"):
		reply = "That's a great question. I can't look it up while offline, so try asking a grown-up or check again later."
	default:
		reply = "I'm running offline, so I can only give short answers for now."
	}
	if reason != "" {
		reply += " (" + reason + ")"
	}
	return reply
}

func isGreeting(prompt string) bool {
	words := strings.Fields(strings.Trim(prompt, "!.? "))
	if len(words) == 0 {
		return false
	}
	switch strings.Trim(words[0], "!,.") {
	case "hi", "hello", "hey":
		return true
	}
	return false
}

var _ ports.Generator = (*offlineProvider)(nil)
