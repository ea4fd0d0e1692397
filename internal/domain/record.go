package domain

import "time"

// DeviceRecord is the persisted per-device guardian state.
type DeviceRecord struct {
	DeviceID string `json:"-"`

	CredentialHash *string `json:"credential_hash"`
	BannedTerms    string  `json:"banned_terms"`
	KeywordsLocked bool    `json:"keywords_locked"`

	TimeLimitActive      bool       `json:"time_limit_active"`
	TimeLimitMinutes     int        `json:"time_limit_minutes"`
	TimeUsedTodaySeconds float64    `json:"time_used_today_seconds"`
	DateForTimeUsed      string     `json:"date_for_time_used"`
	ActiveSessionStart   *time.Time `json:"active_session_start_time"`
	TimeExceededFlag     bool       `json:"time_exceeded_flag"`
}

// NewDeviceRecord returns the default record for a device seen for the first time.
func NewDeviceRecord(deviceID string, now time.Time) DeviceRecord {
	return DeviceRecord{
		DeviceID:         deviceID,
		TimeLimitMinutes: DefaultTimeLimitMinutes,
		DateForTimeUsed:  DateOf(now),
	}
}

// DateOf formats the local calendar date of t as used by DateForTimeUsed.
func DateOf(t time.Time) string {
	return t.Format(DateFormat)
}
