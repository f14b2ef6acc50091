// Package analytics turns a flat list of expense records into the reporting
// views the dashboard consumes: category breakdown, daily trend, monthly
// comparison and period-over-period summary.
//
// The aggregators are pure functions of their input. They hold no state
// between calls and are safe to call concurrently.
package analytics

import (
	"spendlens/internal/calendar"
	"spendlens/internal/core"
)

type (
	CategoryAggregate struct {
		Name   string     `json:"name"`
		Color  string     `json:"color"`
		Icon   string     `json:"icon,omitempty"`
		Amount core.Money `json:"amount"`
		Count  int        `json:"count"`
	}

	DailyAggregate struct {
		Date   string     `json:"date"` // YYYY-MM-DD
		Amount core.Money `json:"amount"`
		Count  int        `json:"count"`
	}

	MonthlyAggregate struct {
		Month       string     `json:"month"` // display label, e.g. "Jan 2024"
		Year        int        `json:"year"`
		MonthNumber int        `json:"monthNumber"`
		Amount      core.Money `json:"amount"`
		Count       int        `json:"count"`
	}

	PeriodTotals struct {
		Total core.Money `json:"total"`
		Count int        `json:"count"`
	}

	SummaryReport struct {
		CurrentMonth         PeriodTotals `json:"currentMonth"`
		PreviousMonth        PeriodTotals `json:"previousMonth"`
		TotalSpent           core.Money   `json:"totalSpent"`
		TotalTransactions    int          `json:"totalTransactions"`
		MonthlyChangePercent float64      `json:"monthlyChange"`
	}
)

// tally accumulates one bucket.
type tally struct {
	amount core.Money
	count  int
}

func (t tally) add(r core.ExpenseRecord) tally {
	return tally{amount: t.amount.Add(r.Amount), count: t.count + 1}
}

// bucketize folds records into tallies keyed by keyOf. Records with equal
// keys always land in the same bucket regardless of input order.
func bucketize[K comparable](records []core.ExpenseRecord, keyOf func(core.ExpenseRecord) K) map[K]tally {
	buckets := make(map[K]tally)
	for _, r := range records {
		k := keyOf(r)
		buckets[k] = buckets[k].add(r)
	}
	return buckets
}

// within keeps the records whose date falls in w.
func within(records []core.ExpenseRecord, w calendar.Window) []core.ExpenseRecord {
	out := make([]core.ExpenseRecord, 0, len(records))
	for _, r := range records {
		if w.Contains(r.Date) {
			out = append(out, r)
		}
	}
	return out
}
