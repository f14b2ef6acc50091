package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"spendlens/internal/calendar"
	"spendlens/internal/core"
	"spendlens/internal/source"
)

// Clock returns the current instant; its location decides what "today" is.
type Clock func() time.Time

// Engine queries the record source for the window a report needs and runs
// the matching aggregator. It keeps no state between requests.
type Engine struct {
	expenses   source.ExpenseReader
	categories source.CategoryReader
	clock      Clock
}

func NewEngine(expenses source.ExpenseReader, categories source.CategoryReader, clock Clock) *Engine {
	if clock == nil {
		clock = time.Now
	}
	return &Engine{
		expenses:   expenses,
		categories: categories,
		clock:      clock,
	}
}

// Today returns the calendar date the engine considers current.
func (e *Engine) Today() core.Date {
	return core.DateOf(e.clock())
}

// Report dispatches on the report type and returns the JSON-ready result.
func (e *Engine) Report(ctx context.Context, userID string, t ReportType, p Params) (any, error) {
	switch t {
	case ReportCategories:
		return e.Categories(ctx, userID, p)
	case ReportTrends:
		return e.Trends(ctx, userID, p)
	case ReportMonthly:
		return e.Monthly(ctx, userID, p)
	case ReportSummary:
		return e.Summary(ctx, userID)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownReport, string(t))
	}
}

// Categories returns the category breakdown for one calendar month when
// year and month are given, otherwise over all records.
func (e *Engine) Categories(ctx context.Context, userID string, p Params) ([]CategoryAggregate, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	var window *calendar.Window
	if p.HasMonth() {
		w, err := calendar.Month(*p.Year, *p.Month)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidParameter, err)
		}
		window = &w
	}

	var (
		records    []core.ExpenseRecord
		categories []core.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = e.listExpenses(gctx, userID, window)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = e.listCategories(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if window != nil {
		records = within(records, *window)
	}
	categories, err := e.refreshCategories(ctx, userID, categories, records)
	if err != nil {
		return nil, err
	}

	out, err := CategoryBreakdown(records, categories)
	if err != nil {
		slog.ErrorContext(ctx, "Category breakdown failed", "user_id", userID, "error", err)
		return nil, err
	}
	slog.DebugContext(ctx, "Category report computed", "user_id", userID, "records", len(records), "buckets", len(out))
	return out, nil
}

// Trends returns the daily totals of the last N days (default 30).
func (e *Engine) Trends(ctx context.Context, userID string, p Params) ([]DailyAggregate, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	w, err := calendar.LastDays(e.Today(), p.TrendDays())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParameter, err)
	}
	records, err := e.listExpenses(ctx, userID, &w)
	if err != nil {
		return nil, err
	}
	out := DailyTrend(within(records, w))
	slog.DebugContext(ctx, "Trend report computed", "user_id", userID, "window", w.String(), "days", len(out))
	return out, nil
}

// Monthly returns per-month totals of the last M months (default 6).
func (e *Engine) Monthly(ctx context.Context, userID string, p Params) ([]MonthlyAggregate, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	w, err := calendar.LastMonths(e.Today(), p.MonthsBack())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParameter, err)
	}
	records, err := e.listExpenses(ctx, userID, &w)
	if err != nil {
		return nil, err
	}
	out := MonthlyComparison(within(records, w))
	slog.DebugContext(ctx, "Monthly report computed", "user_id", userID, "window", w.String(), "months", len(out))
	return out, nil
}

// Summary issues the current-month, previous-month and all-time queries
// concurrently. If any of them fails the summary fails as a whole.
func (e *Engine) Summary(ctx context.Context, userID string) (SummaryReport, error) {
	today := e.Today()
	cur, err := calendar.Month(today.Year(), today.Month())
	if err != nil {
		return SummaryReport{}, fmt.Errorf("%w: %w", ErrInvalidParameter, err)
	}
	py, pm := calendar.PreviousMonth(today.Year(), today.Month())
	prev, err := calendar.Month(py, pm)
	if err != nil {
		return SummaryReport{}, fmt.Errorf("%w: %w", ErrInvalidParameter, err)
	}

	var current, previous, all []core.ExpenseRecord
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = e.listExpenses(gctx, userID, &cur)
		return err
	})
	g.Go(func() error {
		var err error
		previous, err = e.listExpenses(gctx, userID, &prev)
		return err
	})
	g.Go(func() error {
		var err error
		all, err = e.listExpenses(gctx, userID, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return SummaryReport{}, err
	}

	report := Summarize(within(current, cur), within(previous, prev), all)
	slog.DebugContext(ctx, "Summary report computed",
		"user_id", userID,
		"current_cents", report.CurrentMonth.Total.Cents,
		"previous_cents", report.PreviousMonth.Total.Cents,
		"change_percent", report.MonthlyChangePercent)
	return report, nil
}

func (e *Engine) listExpenses(ctx context.Context, userID string, w *calendar.Window) ([]core.ExpenseRecord, error) {
	records, err := e.expenses.ListExpenses(ctx, userID, w)
	if err != nil {
		return nil, fmt.Errorf("%w: list expenses: %w", ErrUpstreamQuery, err)
	}
	return records, nil
}

// refreshCategories re-reads a cached category list that misses one of
// the records' categories.
func (e *Engine) refreshCategories(ctx context.Context, userID string, categories []core.Category, records []core.ExpenseRecord) ([]core.Category, error) {
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.CategoryID)
	}
	out, err := source.RefreshIfMissing(ctx, e.categories, userID, categories, ids...)
	if err != nil {
		return nil, fmt.Errorf("%w: list categories: %w", ErrUpstreamQuery, err)
	}
	return out, nil
}

func (e *Engine) listCategories(ctx context.Context, userID string) ([]core.Category, error) {
	categories, err := e.categories.ListCategories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list categories: %w", ErrUpstreamQuery, err)
	}
	return categories, nil
}
