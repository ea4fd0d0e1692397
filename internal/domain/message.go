package domain

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ChatMessage is one turn of the transient, per-run conversation.
type ChatMessage struct {
	Role            Role
	Content         string
	IsFiltered      bool
	OriginalContent *string
	IsRevealed      bool
}

// Displayed returns what a viewer should see for the message.
func (m ChatMessage) Displayed() string {
	if m.IsFiltered && m.IsRevealed && m.OriginalContent != nil {
		return *m.OriginalContent
	}
	return m.Content
}

// RevealEligible reports whether the message can still be revealed.
func (m ChatMessage) RevealEligible() bool {
	return m.Role == RoleAssistant && m.IsFiltered && !m.IsRevealed && m.OriginalContent != nil
}

// Transcript is the ordered message history of one run. Messages are never removed.
type Transcript struct {
	Messages []ChatMessage
}

// Append adds a message and returns its index.
func (t *Transcript) Append(msg ChatMessage) int {
	t.Messages = append(t.Messages, msg)
	return len(t.Messages) - 1
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	return len(t.Messages)
}

// LastIndex returns the index of the latest message, or -1 when empty.
func (t *Transcript) LastIndex() int {
	return len(t.Messages) - 1
}

// ModelHistory returns the messages that may be sent back to the model.
// Filtered replies are withheld unless revealed, in which case the original is sent.
func (t *Transcript) ModelHistory() []PromptMessage {
	history := make([]PromptMessage, 0, len(t.Messages))
	for _, msg := range t.Messages {
		if msg.Role == RoleAssistant && msg.IsFiltered && !msg.IsRevealed {
			continue
		}
		history = append(history, PromptMessage{Role: string(msg.Role), Content: msg.Displayed()})
	}
	return history
}
