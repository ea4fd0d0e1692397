package domain

import (
	"fmt"
	"math"
	"time"
)

// HasCredential reports whether a guardian password has been set.
func (r *DeviceRecord) HasCredential() bool {
	return r.CredentialHash != nil && *r.CredentialHash != ""
}

// SettingsEditable reports whether guardian-gated settings may currently be changed.
func (r *DeviceRecord) SettingsEditable() bool {
	return !r.KeywordsLocked
}

// SetBannedTerms replaces the raw comma-separated banned term list.
// It is a no-op returning ErrInvalidState while settings are locked.
func (r *DeviceRecord) SetBannedTerms(raw string) error {
	if !r.SettingsEditable() {
		return fmt.Errorf("%w: settings are locked", ErrInvalidState)
	}
	r.BannedTerms = raw
	return nil
}

// HasOpenSession reports whether an uncommitted usage interval is open.
func (r *DeviceRecord) HasOpenSession() bool {
	return r.ActiveSessionStart != nil
}

// OpenSession starts a new usage interval at now.
func (r *DeviceRecord) OpenSession(now time.Time) {
	start := now
	r.ActiveSessionStart = &start
}

// CloseSession drops the open usage interval without committing it.
func (r *DeviceRecord) CloseSession() {
	r.ActiveSessionStart = nil
}

// LimitSeconds returns the daily budget in seconds.
func (r *DeviceRecord) LimitSeconds() float64 {
	return float64(r.TimeLimitMinutes) * 60
}

// Repair brings a decoded record back within its invariants and reports
// whether anything had to change. present tells which JSON keys were found.
func (r *DeviceRecord) Repair(now time.Time, present map[string]bool) bool {
	changed := false
	if r.CredentialHash != nil && *r.CredentialHash == "" {
		r.CredentialHash = nil
		changed = true
	}
	if !present["keywords_locked"] {
		r.KeywordsLocked = r.HasCredential()
		changed = true
	}
	if r.TimeLimitMinutes <= 0 {
		r.TimeLimitMinutes = DefaultTimeLimitMinutes
		changed = true
	}
	if r.TimeUsedTodaySeconds < 0 || math.IsNaN(r.TimeUsedTodaySeconds) || math.IsInf(r.TimeUsedTodaySeconds, 0) {
		r.TimeUsedTodaySeconds = 0
		changed = true
	}
	if _, err := time.ParseInLocation(DateFormat, r.DateForTimeUsed, now.Location()); err != nil {
		r.DateForTimeUsed = DateOf(now)
		changed = true
	}
	if r.ActiveSessionStart != nil && r.ActiveSessionStart.IsZero() {
		r.ActiveSessionStart = nil
		changed = true
	}
	for _, key := range recordKeys {
		if !present[key] && key != "keywords_locked" {
			changed = true
		}
	}
	return changed
}

var recordKeys = []string{
	"credential_hash",
	"banned_terms",
	"keywords_locked",
	"time_limit_active",
	"time_limit_minutes",
	"time_used_today_seconds",
	"date_for_time_used",
	"active_session_start_time",
	"time_exceeded_flag",
}

// RecordKeys lists the JSON keys of a persisted DeviceRecord.
func RecordKeys() []string {
	out := make([]string, len(recordKeys))
	copy(out, recordKeys)
	return out
}
