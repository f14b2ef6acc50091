package analytics

import (
	"sort"

	"spendlens/internal/calendar"
	"spendlens/internal/core"
)

// MonthlyComparison sums records per calendar month, ordered by month
// ascending. Months without records are omitted.
func MonthlyComparison(records []core.ExpenseRecord) []MonthlyAggregate {
	buckets := bucketize(records, func(r core.ExpenseRecord) int {
		return calendar.MonthKey(r.Date)
	})

	keys := make([]int, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	out := make([]MonthlyAggregate, 0, len(keys))
	for _, k := range keys {
		year, month := calendar.FromMonthKey(k)
		t := buckets[k]
		out = append(out, MonthlyAggregate{
			Month:       calendar.MonthLabel(year, month),
			Year:        year,
			MonthNumber: month,
			Amount:      t.amount,
			Count:       t.count,
		})
	}
	return out
}
