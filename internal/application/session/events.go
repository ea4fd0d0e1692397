package session

// Event is one user action fed to Engine.Apply.
type Event interface {
	eventName() string
}

// SetPassword sets the first guardian password.
type SetPassword struct{ Password string }

// ChangePassword replaces the guardian password.
type ChangePassword struct{ Current, New string }

// UnlockSettings opens guardian-gated settings for editing.
type UnlockSettings struct{ Password string }

// LockSettings closes guardian-gated settings.
type LockSettings struct{}

// SetBannedTerms replaces the comma-separated banned term list.
type SetBannedTerms struct{ Raw string }

// SetTimeLimit changes the daily budget.
type SetTimeLimit struct {
	Active  bool
	Minutes int
}

// ResetTimer zeroes today's usage.
type ResetTimer struct{}

// SendPrompt runs one conversation turn. OnChunk, when set, receives raw
// fragments before filtering; leave it nil to show only the filtered reply.
type SendPrompt struct {
	Prompt  string
	OnChunk func(string)
}

// Reveal discloses a filtered reply. An Index below zero targets the latest message.
type Reveal struct {
	Index    int
	Password string
}

// Status only re-evaluates the budget.
type Status struct{}

func (SetPassword) eventName() string    { return "set_password" }
func (ChangePassword) eventName() string { return "change_password" }
func (UnlockSettings) eventName() string { return "unlock_settings" }
func (LockSettings) eventName() string   { return "lock_settings" }
func (SetBannedTerms) eventName() string { return "set_banned_terms" }
func (SetTimeLimit) eventName() string   { return "set_time_limit" }
func (ResetTimer) eventName() string     { return "reset_timer" }
func (SendPrompt) eventName() string     { return "send_prompt" }
func (Reveal) eventName() string         { return "reveal" }
func (Status) eventName() string         { return "status" }
