package budget

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/kidchat/internal/domain"
)

var t0 = time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)

func activeRecord(minutes int, start time.Time) *domain.DeviceRecord {
	rec := domain.NewDeviceRecord("dev", start)
	rec.TimeLimitActive = true
	rec.TimeLimitMinutes = minutes
	rec.OpenSession(start)
	return &rec
}

func TestCommitAccountsEachIntervalOnce(t *testing.T) {
	used, start := Commit(0, t0, t0.Add(30*time.Second))
	assert.InDelta(t, 30, used, 0.001)
	assert.Equal(t, t0.Add(30*time.Second), start)

	used, start = Commit(used, start, t0.Add(90*time.Second))
	assert.InDelta(t, 90, used, 0.001, "second commit adds only the delta since the first")
	assert.Equal(t, t0.Add(90*time.Second), start)
}

func TestCommitClampsBackwardClock(t *testing.T) {
	used, start := Commit(100, t0, t0.Add(-time.Minute))
	assert.InDelta(t, 100, used, 0.001)
	assert.Equal(t, t0.Add(-time.Minute), start)
}

func TestLiveUsageReportsExceeded(t *testing.T) {
	rec := activeRecord(1, t0)
	usage := LiveUsage(rec, t0.Add(61*time.Second))
	assert.True(t, usage.Exceeded)
	assert.InDelta(t, 61, usage.UsedSeconds, 0.001)
	assert.InDelta(t, 60, usage.LimitSeconds, 0.001)
	assert.Equal(t, domain.BudgetActiveExceeded, usage.State())
	assert.Zero(t, usage.Remaining())

	assert.Equal(t, t0, *rec.ActiveSessionStart, "live usage is read-only")
	assert.Zero(t, rec.TimeUsedTodaySeconds)
}

func TestLiveUsageInactiveIgnoresSession(t *testing.T) {
	rec := activeRecord(1, t0)
	rec.TimeLimitActive = false
	rec.TimeUsedTodaySeconds = 10
	usage := LiveUsage(rec, t0.Add(time.Hour))
	assert.False(t, usage.Exceeded)
	assert.InDelta(t, 10, usage.UsedSeconds, 0.001)
	assert.Equal(t, domain.BudgetInactive, usage.State())
}

func TestLiveUsageClampsBackwardClock(t *testing.T) {
	rec := activeRecord(30, t0)
	rec.TimeUsedTodaySeconds = 42
	usage := LiveUsage(rec, t0.Add(-time.Hour))
	assert.InDelta(t, 42, usage.UsedSeconds, 0.001)
	assert.Equal(t, 29*time.Minute+18*time.Second, usage.Remaining())
}

func TestReconcileDailyResetIsIdempotentWithinADay(t *testing.T) {
	rec := activeRecord(30, t0)
	rec.DateForTimeUsed = "2024-05-09"
	now := t0.Add(time.Minute)

	require.True(t, ReconcileDailyReset(rec, now))
	snapshot := *rec
	assert.False(t, ReconcileDailyReset(rec, now))
	assert.Equal(t, snapshot, *rec)
}

func TestReconcileDailyResetAcrossMidnight(t *testing.T) {
	yesterday := time.Date(2024, 5, 9, 23, 59, 0, 0, time.UTC)
	now := time.Date(2024, 5, 10, 0, 1, 0, 0, time.UTC)
	rec := activeRecord(30, yesterday)
	rec.DateForTimeUsed = "2024-05-09"
	rec.TimeUsedTodaySeconds = 500

	require.True(t, ReconcileDailyReset(rec, now))
	assert.Zero(t, rec.TimeUsedTodaySeconds)
	assert.Equal(t, "2024-05-10", rec.DateForTimeUsed)
	require.NotNil(t, rec.ActiveSessionStart)
	assert.Equal(t, now, *rec.ActiveSessionStart)
}

func TestReconcileDailyResetInactiveClosesSession(t *testing.T) {
	rec := domain.NewDeviceRecord("dev", t0)
	rec.DateForTimeUsed = "2024-05-01"
	rec.TimeUsedTodaySeconds = 12

	require.True(t, ReconcileDailyReset(&rec, t0))
	assert.Nil(t, rec.ActiveSessionStart)
	assert.Zero(t, rec.TimeUsedTodaySeconds)
}

func TestReconcileActivation(t *testing.T) {
	rec := domain.NewDeviceRecord("dev", t0)
	assert.False(t, ReconcileActivation(&rec, t0))

	rec.TimeLimitActive = true
	require.True(t, ReconcileActivation(&rec, t0))
	require.NotNil(t, rec.ActiveSessionStart)
	assert.False(t, ReconcileActivation(&rec, t0.Add(time.Minute)))

	rec.TimeLimitActive = false
	require.True(t, ReconcileActivation(&rec, t0.Add(2*time.Minute)))
	assert.Nil(t, rec.ActiveSessionStart)
	assert.InDelta(t, 120, rec.TimeUsedTodaySeconds, 0.001, "closing commits the open session")
}

func TestToggleWithoutElapsedTimeAddsNothing(t *testing.T) {
	rec := domain.NewDeviceRecord("dev", t0)
	rec.TimeUsedTodaySeconds = 77

	require.NoError(t, SetLimit(&rec, true, 30, t0))
	require.NoError(t, SetLimit(&rec, false, 30, t0))
	assert.InDelta(t, 77, rec.TimeUsedTodaySeconds, 0.0001)
	assert.Nil(t, rec.ActiveSessionStart)
}

func TestSetLimitRejectsNonPositiveMinutes(t *testing.T) {
	rec := domain.NewDeviceRecord("dev", t0)
	require.ErrorIs(t, SetLimit(&rec, true, 0, t0), domain.ErrEmptyInput)
	assert.False(t, rec.TimeLimitActive)
}

func TestResetUsage(t *testing.T) {
	rec := activeRecord(1, t0)
	rec.TimeUsedTodaySeconds = 300
	rec.TimeExceededFlag = true

	ResetUsage(rec, t0.Add(time.Hour))
	assert.Zero(t, rec.TimeUsedTodaySeconds)
	assert.False(t, rec.TimeExceededFlag)
	assert.Equal(t, t0.Add(time.Hour), *rec.ActiveSessionStart)
}

func TestEvaluateEdgeTriggersCommit(t *testing.T) {
	rec := activeRecord(1, t0)

	eval := Evaluate(rec, t0.Add(30*time.Second))
	assert.Equal(t, NoTransition, eval.Transition)
	assert.False(t, eval.Changed)
	assert.Zero(t, rec.TimeUsedTodaySeconds)

	eval = Evaluate(rec, t0.Add(61*time.Second))
	assert.Equal(t, LimitReached, eval.Transition)
	assert.True(t, eval.Changed)
	assert.True(t, rec.TimeExceededFlag)
	assert.InDelta(t, 61, rec.TimeUsedTodaySeconds, 0.001, "crossing the boundary commits the session")
	assert.Equal(t, t0.Add(61*time.Second), *rec.ActiveSessionStart)

	eval = Evaluate(rec, t0.Add(90*time.Second))
	assert.Equal(t, NoTransition, eval.Transition)
	assert.True(t, eval.Usage.Exceeded)

	ResetUsage(rec, t0.Add(2*time.Minute))
	eval = Evaluate(rec, t0.Add(2*time.Minute))
	assert.Equal(t, NoTransition, eval.Transition)
	assert.False(t, eval.Usage.Exceeded)
}

func TestEvaluateClearsFlagWhenLimitRaised(t *testing.T) {
	rec := activeRecord(1, t0)
	Evaluate(rec, t0.Add(2*time.Minute))
	require.True(t, rec.TimeExceededFlag)

	require.NoError(t, SetLimit(rec, true, 10, t0.Add(3*time.Minute)))
	eval := Evaluate(rec, t0.Add(3*time.Minute))
	assert.Equal(t, LimitCleared, eval.Transition)
	assert.False(t, rec.TimeExceededFlag)
	assert.InDelta(t, 180, eval.Usage.UsedSeconds, 0.001)
}

func TestEvaluateOpensSessionForActiveRecord(t *testing.T) {
	rec := domain.NewDeviceRecord("dev", t0)
	rec.TimeLimitActive = true

	eval := Evaluate(&rec, t0)
	assert.True(t, eval.Changed)
	require.NotNil(t, rec.ActiveSessionStart)
	assert.Equal(t, domain.BudgetActiveRunning, eval.Usage.State())
}
