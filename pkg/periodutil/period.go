// Package periodutil is the single source of truth for "YYYY-MM" period
// arithmetic (month-end closing, cash-forecast horizons, daily digest
// windows). spec.md §9 calls out that the source implements this inline
// in several places and asks for one factored-out helper, including
// correct leap-year handling.
package periodutil

import (
	"fmt"
	"time"
)

// Period is a calendar month in UTC, held as its year and month.
type Period struct {
	Year  int
	Month time.Month
}

// Parse parses a "YYYY-MM" string into a Period.
func Parse(s string) (Period, error) {
	var y, m int
	if _, err := fmt.Sscanf(s, "%4d-%2d", &y, &m); err != nil {
		return Period{}, fmt.Errorf("invalid period %q: %w", s, err)
	}
	if m < 1 || m > 12 {
		return Period{}, fmt.Errorf("invalid period %q: month out of range", s)
	}
	return Period{Year: y, Month: time.Month(m)}, nil
}

// String renders the period back as "YYYY-MM".
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// Start returns the first instant of the period, UTC.
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the last instant of the period (23:59:59.999999999 UTC on
// the last day of the month): one nanosecond before the first instant of
// the next month, which accounts for leap years.
func (p Period) End() time.Time {
	firstOfNext := p.Start().AddDate(0, 1, 0)
	return firstOfNext.Add(-time.Nanosecond)
}

// Days returns the number of days in the period.
func (p Period) Days() int {
	firstOfNext := p.Start().AddDate(0, 1, 0)
	return int(firstOfNext.Sub(p.Start()).Hours() / 24)
}

// Next returns the following calendar month.
func (p Period) Next() Period {
	t := p.Start().AddDate(0, 1, 0)
	return Period{Year: t.Year(), Month: t.Month()}
}

// Previous returns the preceding calendar month.
func (p Period) Previous() Period {
	t := p.Start().AddDate(0, -1, 0)
	return Period{Year: t.Year(), Month: t.Month()}
}

// Contains reports whether t falls within the period (inclusive).
func (p Period) Contains(t time.Time) bool {
	t = t.UTC()
	return !t.Before(p.Start()) && !t.After(p.End())
}

// Of returns the Period containing t.
func Of(t time.Time) Period {
	t = t.UTC()
	return Period{Year: t.Year(), Month: t.Month()}
}

// AddMonths shifts the period by n months (n may be negative), used by
// cash-forecast horizon calculations (spec.md §6, GET /api/forecast/cashflow?horizon=N).
func (p Period) AddMonths(n int) Period {
	t := p.Start().AddDate(0, n, 0)
	return Period{Year: t.Year(), Month: t.Month()}
}
