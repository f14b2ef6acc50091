package analytics

import (
	"github.com/shopspring/decimal"

	"spendlens/internal/core"
)

var hundred = decimal.NewFromInt(100)

// Totals sums a record set.
func Totals(records []core.ExpenseRecord) PeriodTotals {
	var t tally
	for _, r := range records {
		t = t.add(r)
	}
	return PeriodTotals{Total: t.amount, Count: t.count}
}

// Summarize combines the three pre-filtered record sets into a report.
func Summarize(current, previous, all []core.ExpenseRecord) SummaryReport {
	cur := Totals(current)
	prev := Totals(previous)
	overall := Totals(all)
	return SummaryReport{
		CurrentMonth:         cur,
		PreviousMonth:        prev,
		TotalSpent:           overall.Total,
		TotalTransactions:    overall.Count,
		MonthlyChangePercent: ChangePercent(cur.Total, prev.Total),
	}
}

// ChangePercent is (current-previous)/previous*100 rounded to two decimals.
// A zero previous total yields 0: no change is reported rather than an
// infinite increase.
func ChangePercent(current, previous core.Money) float64 {
	if previous.Cents == 0 {
		return 0
	}
	diff := decimal.NewFromInt(current.Cents - previous.Cents)
	pct := diff.Mul(hundred).Div(decimal.NewFromInt(previous.Cents)).Round(2)
	f, _ := pct.Float64()
	return f
}
