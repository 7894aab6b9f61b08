package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunContextRetryBudgetIsPerUnit(t *testing.T) {
	run := NewRunContext(1)

	require.True(t, run.CanRetry("a"))
	run.RecordRetry("a")
	require.False(t, run.CanRetry("a"))
	// Another unit's budget is untouched.
	require.True(t, run.CanRetry("b"))
}

func TestRunContextZeroLimitDisablesRetries(t *testing.T) {
	run := NewRunContext(0)
	require.False(t, run.CanRetry("a"))

	run = NewRunContext(-3)
	require.False(t, run.CanRetry("a"))
}

func TestRunContextFirstAbortReasonWins(t *testing.T) {
	run := NewRunContext(1)
	run.Abort("first")
	run.Abort("second")

	require.True(t, run.Aborted())
	require.Equal(t, "first", run.AbortReason())
}

func TestRunContextServerErrorStreakHighWaterMark(t *testing.T) {
	run := NewRunContext(0)
	run.RecordServerError()
	run.RecordServerError()
	run.RecordServerError()
	run.ResetServerErrors()
	run.RecordServerError()

	require.Equal(t, 3, run.MaxServerErrorStreak())
}
