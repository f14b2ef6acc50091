package analytics

import (
	"fmt"
	"strings"
)

// ReportType selects one of the four reporting views.
type ReportType string

const (
	ReportCategories ReportType = "categories"
	ReportTrends     ReportType = "trends"
	ReportMonthly    ReportType = "monthly"
	ReportSummary    ReportType = "summary"
)

const (
	DefaultTrendDays = 30
	DefaultMonths    = 6

	// Upper bounds keep a single request from scanning unbounded history.
	MaxTrendDays = 366 * 5
	MaxMonths    = 12 * 10
)

// ParseReportType rejects anything but the four known report types.
func ParseReportType(s string) (ReportType, error) {
	switch t := ReportType(strings.TrimSpace(s)); t {
	case ReportCategories, ReportTrends, ReportMonthly, ReportSummary:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownReport, s)
	}
}

func (t ReportType) String() string {
	return string(t)
}

// Params holds the optional window parameters of a report request. A nil
// field means "not supplied"; supplied values are validated, never
// coerced to a default.
type Params struct {
	Year   *int
	Month  *int
	Days   *int
	Months *int
}

// Validate checks every supplied parameter before any aggregation runs.
func (p Params) Validate() error {
	if p.Days != nil && (*p.Days <= 0 || *p.Days > MaxTrendDays) {
		return fmt.Errorf("%w: days must be between 1 and %d, got %d", ErrInvalidParameter, MaxTrendDays, *p.Days)
	}
	if p.Months != nil && (*p.Months <= 0 || *p.Months > MaxMonths) {
		return fmt.Errorf("%w: months must be between 1 and %d, got %d", ErrInvalidParameter, MaxMonths, *p.Months)
	}
	if p.Year != nil && *p.Year <= 0 {
		return fmt.Errorf("%w: year must be positive, got %d", ErrInvalidParameter, *p.Year)
	}
	if p.Month != nil && (*p.Month < 1 || *p.Month > 12) {
		return fmt.Errorf("%w: month must be between 1 and 12, got %d", ErrInvalidParameter, *p.Month)
	}
	if (p.Year == nil) != (p.Month == nil) {
		return fmt.Errorf("%w: year and month must be given together", ErrInvalidParameter)
	}
	return nil
}

// TrendDays returns the trend window length, defaulting to 30.
func (p Params) TrendDays() int {
	if p.Days == nil {
		return DefaultTrendDays
	}
	return *p.Days
}

// MonthsBack returns the monthly window length, defaulting to 6.
func (p Params) MonthsBack() int {
	if p.Months == nil {
		return DefaultMonths
	}
	return *p.Months
}

// HasMonth reports whether the request targets a single calendar month.
func (p Params) HasMonth() bool {
	return p.Year != nil && p.Month != nil
}
