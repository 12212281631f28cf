package periodlock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubCutoff struct {
	cutoff *time.Time
	err    error
}

func (s stubCutoff) AccountingCutoff(context.Context, int64) (*time.Time, error) {
	return s.cutoff, s.err
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAllowed(t *testing.T) {
	cutoff := date(2024, time.March, 31)

	require.True(t, Allowed(nil, date(2020, time.January, 1)), "nil cutoff imposes no restriction")
	require.True(t, Allowed(&cutoff, cutoff), "the cutoff day itself is allowed")
	require.True(t, Allowed(&cutoff, date(2024, time.April, 1)))
	require.False(t, Allowed(&cutoff, date(2024, time.March, 30)))
}

func TestAllowedIgnoresTimeOfDay(t *testing.T) {
	cutoff := time.Date(2024, time.March, 31, 23, 59, 0, 0, time.UTC)
	target := time.Date(2024, time.March, 31, 0, 1, 0, 0, time.UTC)
	require.True(t, Allowed(&cutoff, target))
}

func TestEnsureCreate(t *testing.T) {
	cutoff := date(2024, time.March, 31)
	guard := NewGuard(stubCutoff{cutoff: &cutoff})

	require.NoError(t, guard.EnsureCreate(context.Background(), 1, date(2024, time.April, 2)))
	require.ErrorIs(t, guard.EnsureCreate(context.Background(), 1, date(2024, time.March, 30)), ErrPeriodLocked)
}

func TestEnsureUpdateChecksStoredDateFirst(t *testing.T) {
	cutoff := date(2024, time.March, 31)
	guard := NewGuard(stubCutoff{cutoff: &cutoff})

	// Locked stored date rejects the edit even when the new date is allowed.
	err := guard.EnsureUpdate(context.Background(), 1, date(2024, time.February, 1), date(2024, time.April, 1))
	require.ErrorIs(t, err, ErrPeriodLocked)

	// Allowed stored date but locked new date rejects too.
	err = guard.EnsureUpdate(context.Background(), 1, date(2024, time.April, 1), date(2024, time.February, 1))
	require.ErrorIs(t, err, ErrPeriodLocked)

	// Both allowed.
	err = guard.EnsureUpdate(context.Background(), 1, date(2024, time.April, 1), date(2024, time.April, 5))
	require.NoError(t, err)
}

func TestEnsureToggleUsesStoredDateOnly(t *testing.T) {
	cutoff := date(2024, time.March, 31)
	guard := NewGuard(stubCutoff{cutoff: &cutoff})

	require.NoError(t, guard.EnsureToggle(context.Background(), 1, date(2024, time.March, 31)))
	require.ErrorIs(t, guard.EnsureToggle(context.Background(), 1, date(2024, time.March, 30)), ErrPeriodLocked)
}

func TestGuardPropagatesCutoffError(t *testing.T) {
	guard := NewGuard(stubCutoff{err: errors.New("db down")})
	err := guard.EnsureCreate(context.Background(), 1, date(2024, time.April, 1))
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrPeriodLocked)
}
