// Package periodlock enforces the accounting-period cutoff (Período Contábil):
// no ledger posting may be created, edited or toggled when the relevant date
// falls before the company's cutoff.
package periodlock

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrPeriodLocked indicates the date precedes the accounting-period cutoff.
var ErrPeriodLocked = errors.New("date is within a locked accounting period")

// Allowed reports whether target may be used given the cutoff. A nil cutoff
// imposes no restriction; the cutoff day itself is allowed.
func Allowed(cutoff *time.Time, target time.Time) bool {
	if cutoff == nil {
		return true
	}
	return !dateOnly(target).Before(dateOnly(*cutoff))
}

// CutoffSource reads a company's current accounting-period cutoff.
type CutoffSource interface {
	AccountingCutoff(ctx context.Context, companyID int64) (*time.Time, error)
}

// Guard applies the cutoff to the three posting operations.
type Guard struct {
	companies CutoffSource
}

// NewGuard builds a Guard over a cutoff source.
func NewGuard(companies CutoffSource) *Guard {
	return &Guard{companies: companies}
}

// EnsureCreate checks a new posting's date against the cutoff.
func (g *Guard) EnsureCreate(ctx context.Context, companyID int64, date time.Time) error {
	cutoff, err := g.companies.AccountingCutoff(ctx, companyID)
	if err != nil {
		return fmt.Errorf("periodlock: load cutoff: %w", err)
	}
	if !Allowed(cutoff, date) {
		return ErrPeriodLocked
	}
	return nil
}

// EnsureUpdate checks an edit. The stored date is checked before any new
// value is considered, so an already-locked posting cannot be edited even
// into an allowed date; the new date is then checked when it differs.
func (g *Guard) EnsureUpdate(ctx context.Context, companyID int64, stored, next time.Time) error {
	cutoff, err := g.companies.AccountingCutoff(ctx, companyID)
	if err != nil {
		return fmt.Errorf("periodlock: load cutoff: %w", err)
	}
	if !Allowed(cutoff, stored) {
		return ErrPeriodLocked
	}
	if !next.Equal(stored) && !Allowed(cutoff, next) {
		return ErrPeriodLocked
	}
	return nil
}

// EnsureToggle checks a status toggle against the posting's stored date only.
func (g *Guard) EnsureToggle(ctx context.Context, companyID int64, stored time.Time) error {
	cutoff, err := g.companies.AccountingCutoff(ctx, companyID)
	if err != nil {
		return fmt.Errorf("periodlock: load cutoff: %w", err)
	}
	if !Allowed(cutoff, stored) {
		return ErrPeriodLocked
	}
	return nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
