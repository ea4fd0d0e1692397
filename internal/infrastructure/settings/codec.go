// Package settings persists device records.
//
// Two backends share one validating codec: a JSON file per device and a SQLite
// table keyed by device id. Decoding is field by field so one corrupt value
// falls back to its default instead of discarding the whole record.
package settings

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/doeshing/kidchat/internal/domain"
)

// sessionLayouts are the accepted encodings of active_session_start_time.
// Naive timestamps are read in the local zone.
var sessionLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// Decode turns a stored payload into a repaired record. The bool reports whether
// the record had to be repaired and should be written back.
func Decode(deviceID string, payload []byte, now time.Time) (domain.DeviceRecord, bool, error) {
	rec := domain.NewDeviceRecord(deviceID, now)
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return rec, true, fmt.Errorf("decode device record: %w", err)
	}

	present := make(map[string]bool, len(raw))
	field := func(key string, dst interface{}) {
		value, ok := raw[key]
		if !ok {
			return
		}
		if err := json.Unmarshal(value, dst); err == nil {
			present[key] = true
		}
	}

	var hash *string
	field("credential_hash", &hash)
	rec.CredentialHash = hash
	field("banned_terms", &rec.BannedTerms)
	field("keywords_locked", &rec.KeywordsLocked)
	field("time_limit_active", &rec.TimeLimitActive)
	field("time_limit_minutes", &rec.TimeLimitMinutes)
	field("time_used_today_seconds", &rec.TimeUsedTodaySeconds)
	field("date_for_time_used", &rec.DateForTimeUsed)
	field("time_exceeded_flag", &rec.TimeExceededFlag)

	var start *string
	field("active_session_start_time", &start)
	if start != nil {
		if t, ok := parseSessionStart(*start, now.Location()); ok {
			rec.ActiveSessionStart = &t
		} else {
			delete(present, "active_session_start_time")
		}
	}

	changed := rec.Repair(now, present)
	return rec, changed, nil
}

// Encode renders a record in its persisted form.
func Encode(rec domain.DeviceRecord) ([]byte, error) {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode device record: %w", err)
	}
	return data, nil
}

func parseSessionStart(value string, loc *time.Location) (time.Time, bool) {
	for _, layout := range sessionLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
