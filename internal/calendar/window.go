// Package calendar holds the date-window arithmetic shared by the record
// sources and the analytics aggregators: "last N days", "last M months"
// and "a given calendar month", plus the month rollover rules.
package calendar

import (
	"errors"
	"fmt"

	"spendlens/internal/core"
)

// ErrInvalidWindow is returned when a window parameter is out of domain.
var ErrInvalidWindow = errors.New("invalid window")

var monthAbbrev = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Window is an inclusive date range [Start, End].
type Window struct {
	Start core.Date
	End   core.Date
}

// Contains reports whether d falls within the window, bounds included.
func (w Window) Contains(d core.Date) bool {
	return !d.Before(w.Start) && !d.After(w.End)
}

func (w Window) String() string {
	return w.Start.String() + ".." + w.End.String()
}

// LastDays returns the n calendar days ending today: [today-(n-1), today].
// today-n itself is excluded.
func LastDays(today core.Date, n int) (Window, error) {
	if n <= 0 {
		return Window{}, fmt.Errorf("%w: days must be positive, got %d", ErrInvalidWindow, n)
	}
	return Window{Start: today.AddDays(-(n - 1)), End: today}, nil
}

// LastMonths returns the window spanning the current month and the m-1
// calendar months before it, ending today.
func LastMonths(today core.Date, m int) (Window, error) {
	if m <= 0 {
		return Window{}, fmt.Errorf("%w: months must be positive, got %d", ErrInvalidWindow, m)
	}
	y, mo := ShiftMonth(today.Year(), today.Month(), -(m - 1))
	return Window{Start: core.NewDate(y, mo, 1), End: today}, nil
}

// Month returns the full calendar month [first, last].
func Month(year, month int) (Window, error) {
	if err := ValidateMonth(year, month); err != nil {
		return Window{}, err
	}
	first := core.NewDate(year, month, 1)
	last := core.Date{Time: first.AddDate(0, 1, -1)}
	return Window{Start: first, End: last}, nil
}

// ValidateMonth checks that year and month identify a calendar month.
func ValidateMonth(year, month int) error {
	if year < 1 {
		return fmt.Errorf("%w: year must be positive, got %d", ErrInvalidWindow, year)
	}
	if month < 1 || month > 12 {
		return fmt.Errorf("%w: month must be between 1 and 12, got %d", ErrInvalidWindow, month)
	}
	return nil
}

// PreviousMonth returns the calendar month before year/month, rolling
// January back to December of the previous year.
func PreviousMonth(year, month int) (int, int) {
	return ShiftMonth(year, month, -1)
}

// ShiftMonth moves year/month by delta months.
func ShiftMonth(year, month, delta int) (int, int) {
	idx := year*12 + (month - 1) + delta
	return FromMonthKey(idx)
}

// MonthKey maps a date to a monotonic integer so that ordering by key is
// chronological across year boundaries.
func MonthKey(d core.Date) int {
	return d.Year()*12 + (d.Month() - 1)
}

// FromMonthKey is the inverse of MonthKey.
func FromMonthKey(key int) (year, month int) {
	return key / 12, key%12 + 1
}

// MonthLabel renders a display label such as "Jan 2024". It is for
// presentation only and never used for ordering.
func MonthLabel(year, month int) string {
	if month < 1 || month > 12 {
		return fmt.Sprintf("%d-%02d", year, month)
	}
	return fmt.Sprintf("%s %d", monthAbbrev[month-1], year)
}
