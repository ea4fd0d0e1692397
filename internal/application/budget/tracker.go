// Package budget implements the daily time budget state machine.
//
// A record holds committed usage for one calendar day plus at most one open,
// uncommitted interval starting at ActiveSessionStart. Every function takes the
// current time explicitly and never reads a clock. Elapsed time is clamped at zero
// so a clock moving backwards can never reduce committed usage.
package budget

import (
	"fmt"
	"time"

	"github.com/doeshing/kidchat/internal/domain"
)

// Transition describes an edge of the exceeded flag seen by Evaluate.
type Transition int

const (
	NoTransition Transition = iota
	LimitReached
	LimitCleared
)

// Evaluation is the result of one budget cycle.
type Evaluation struct {
	Usage      domain.Usage
	Changed    bool
	Transition Transition
}

// Commit adds the time elapsed since start to used and returns now as the next start.
// Calling it repeatedly accounts each interval exactly once.
func Commit(used float64, start, now time.Time) (float64, time.Time) {
	return used + elapsed(start, now), now
}

// CommitOpen rolls the open session of rec forward to now. It reports whether a session was open.
func CommitOpen(rec *domain.DeviceRecord, now time.Time) bool {
	if !rec.HasOpenSession() {
		return false
	}
	used, start := Commit(rec.TimeUsedTodaySeconds, *rec.ActiveSessionStart, now)
	rec.TimeUsedTodaySeconds = used
	rec.OpenSession(start)
	return true
}

// ReconcileDailyReset starts a new day when the record's date is not the date of now.
// Time of an open session is committed into the old day first and discarded with it.
func ReconcileDailyReset(rec *domain.DeviceRecord, now time.Time) bool {
	today := domain.DateOf(now)
	if rec.DateForTimeUsed == today {
		return false
	}
	CommitOpen(rec, now)
	rec.TimeUsedTodaySeconds = 0
	rec.DateForTimeUsed = today
	if rec.TimeLimitActive {
		rec.OpenSession(now)
	} else {
		rec.CloseSession()
	}
	return true
}

// ReconcileActivation keeps an open session exactly while the limit is active.
// Turning the limit off commits the open session before closing it.
func ReconcileActivation(rec *domain.DeviceRecord, now time.Time) bool {
	switch {
	case rec.TimeLimitActive && !rec.HasOpenSession():
		rec.OpenSession(now)
		return true
	case !rec.TimeLimitActive && rec.HasOpenSession():
		CommitOpen(rec, now)
		rec.CloseSession()
		return true
	default:
		return false
	}
}

// LiveUsage computes today's usage including the open session. It never mutates rec.
func LiveUsage(rec *domain.DeviceRecord, now time.Time) domain.Usage {
	total := rec.TimeUsedTodaySeconds
	if rec.TimeLimitActive && rec.HasOpenSession() {
		total += elapsed(*rec.ActiveSessionStart, now)
	}
	limit := rec.LimitSeconds()
	return domain.Usage{
		UsedSeconds:  total,
		LimitSeconds: limit,
		Exceeded:     rec.TimeLimitActive && total >= limit,
		Active:       rec.TimeLimitActive,
	}
}

// ResetUsage zeroes today's usage and restarts the session when the limit is active.
func ResetUsage(rec *domain.DeviceRecord, now time.Time) {
	rec.TimeUsedTodaySeconds = 0
	if rec.TimeLimitActive {
		rec.OpenSession(now)
	} else {
		rec.CloseSession()
	}
	rec.TimeExceededFlag = false
}

// SetLimit changes the limit settings through ReconcileActivation so a toggle
// neither loses nor double-counts time.
func SetLimit(rec *domain.DeviceRecord, active bool, minutes int, now time.Time) error {
	if minutes <= 0 {
		return fmt.Errorf("%w: time limit must be at least one minute", domain.ErrEmptyInput)
	}
	CommitOpen(rec, now)
	rec.TimeLimitActive = active
	rec.TimeLimitMinutes = minutes
	ReconcileActivation(rec, now)
	return nil
}

// Evaluate runs one cycle: daily reset, activation edge, live status. When the
// exceeded status differs from the cached flag the session is committed and the
// flag updated, so uncommitted drift is bounded by one cycle. Changed tells the
// caller to persist rec.
func Evaluate(rec *domain.DeviceRecord, now time.Time) Evaluation {
	changed := ReconcileDailyReset(rec, now)
	if ReconcileActivation(rec, now) {
		changed = true
	}

	usage := LiveUsage(rec, now)
	transition := NoTransition
	if usage.Exceeded != rec.TimeExceededFlag {
		CommitOpen(rec, now)
		rec.TimeExceededFlag = usage.Exceeded
		changed = true
		transition = LimitCleared
		if usage.Exceeded {
			transition = LimitReached
		}
	}
	return Evaluation{Usage: usage, Changed: changed, Transition: transition}
}

func elapsed(start, now time.Time) float64 {
	d := now.Sub(start).Seconds()
	if d < 0 {
		return 0
	}
	return d
}
