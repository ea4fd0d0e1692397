package domain

import "time"

// ActivityKind classifies guardian-facing activity log entries.
type ActivityKind string

const (
	ActivityFiltered          ActivityKind = "filtered"
	ActivityRevealed          ActivityKind = "revealed"
	ActivityRevealDenied      ActivityKind = "reveal_denied"
	ActivityLimitReached      ActivityKind = "limit_reached"
	ActivityLimitCleared      ActivityKind = "limit_cleared"
	ActivityTimerReset        ActivityKind = "timer_reset"
	ActivityLimitUpdated      ActivityKind = "limit_updated"
	ActivityCredentialSet     ActivityKind = "credential_set"
	ActivityCredentialChanged ActivityKind = "credential_changed"
	ActivitySettingsUnlocked  ActivityKind = "settings_unlocked"
	ActivitySettingsLocked    ActivityKind = "settings_locked"
	ActivityKeywordsUpdated   ActivityKind = "keywords_updated"
	ActivityUpstreamFailure   ActivityKind = "upstream_failure"
)

// ActivityEntry is one line of the guardian activity log.
// It never carries the original text of a filtered reply.
type ActivityEntry struct {
	Timestamp time.Time    `json:"timestamp"`
	DeviceID  string       `json:"device_id"`
	Kind      ActivityKind `json:"kind"`
	Detail    string       `json:"detail"`
}
