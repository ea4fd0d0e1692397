package commands

// Defaults
const (
	DefaultActivityLimit = 20
)

// Error messages
const (
	ErrContainerUnavailable = "application not initialised"
	ErrWrongPassword        = "incorrect guardian password"
	ErrMinutesRequired      = "minutes must be a positive whole number"
	ErrKeywordsRequired     = "provide a comma-separated keyword list, or --clear"
	ErrDoctorFailed         = "one or more checks failed"
)

// Success messages
const (
	MsgNoActivityRecorded = "No activity recorded yet."
	MsgNoBannedKeywords   = "No banned keywords set."
	MsgActivityCleared    = "Activity log cleared."
	MsgActivityKept       = "Activity log left unchanged."
)
