package domain

import "time"

// BudgetState is derived from a record and a live usage computation; it is never stored.
type BudgetState string

const (
	BudgetInactive       BudgetState = "inactive"
	BudgetActiveRunning  BudgetState = "active"
	BudgetActiveExceeded BudgetState = "exceeded"
)

// Usage is the live, read-only view of today's time budget.
type Usage struct {
	UsedSeconds  float64
	LimitSeconds float64
	Exceeded     bool
	Active       bool
}

// State returns the derived budget state.
func (u Usage) State() BudgetState {
	switch {
	case !u.Active:
		return BudgetInactive
	case u.Exceeded:
		return BudgetActiveExceeded
	default:
		return BudgetActiveRunning
	}
}

// Used returns the usage as a duration.
func (u Usage) Used() time.Duration {
	return time.Duration(u.UsedSeconds * float64(time.Second))
}

// Remaining returns the budget left today, clamped at zero.
func (u Usage) Remaining() time.Duration {
	left := u.LimitSeconds - u.UsedSeconds
	if left < 0 {
		left = 0
	}
	return time.Duration(left * float64(time.Second))
}
